// Package git wraps the git command line. Push and pull-request operations are
// simulated unless dry-run has been disabled in settings.
package git

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fpt/go-testpilot/internal/config"
	"github.com/fpt/go-testpilot/internal/repository"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
	"github.com/pkg/errors"
)

var logger = pkgLogger.NewComponentLogger("git")

// Messages returned by AddAll
const (
	MsgStaged      = "All changes staged successfully."
	MsgStageFailed = "Failed to stage files."
)

// ErrInvalidRef is returned for a remote or branch name git would read as an option
var ErrInvalidRef = errors.New("invalid ref")

// checkRef rejects names starting with "-" so caller input can never become a
// git option such as --no-dry-run or --receive-pack
func checkRef(kind, value string) error {
	if strings.HasPrefix(strings.TrimSpace(value), "-") {
		return errors.Wrapf(ErrInvalidRef, "%s %q must not start with '-'", kind, value)
	}
	return nil
}

// Client runs git commands in the configured repository directory
type Client struct {
	commands repository.CommandRunner
	settings config.GitSettings
}

// NewClient creates a git client
func NewClient(commands repository.CommandRunner, settings config.GitSettings) *Client {
	return &Client{commands: commands, settings: settings}
}

// Settings returns the git defaults this client uses
func (c *Client) Settings() config.GitSettings {
	return c.settings
}

func (c *Client) git(ctx context.Context, args ...string) repository.ProcessResult {
	result := c.commands.Run(ctx, c.settings.RepoDir, c.settings.Executable, args...)
	result.Stdout = strings.TrimSpace(result.Stdout)
	result.Stderr = strings.TrimSpace(result.Stderr)
	return result
}

// dryRun resolves the effective mode. A call may ask for dry-run but cannot
// turn it off when settings keep it on.
func (c *Client) dryRun(requested *bool) bool {
	if c.settings.IsDryRun() {
		return true
	}
	return requested != nil && *requested
}

// Status returns the short working tree status
func (c *Client) Status(ctx context.Context) repository.ProcessResult {
	return c.git(ctx, "status", "--short")
}

// AddResult is the outcome of staging all changes
type AddResult struct {
	Message string `json:"message"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

// AddAll stages every change (ignored files stay out via .gitignore) and
// reports the resulting short status
func (c *Client) AddAll(ctx context.Context) AddResult {
	add := c.git(ctx, "add", "--all")
	if !add.Success() {
		stderr := add.Stderr
		if stderr == "" {
			stderr = fmt.Sprintf("%s exited with code %d", add.CommandLine(), add.ExitCode)
		}
		return AddResult{Message: MsgStageFailed, Stderr: stderr}
	}

	status := c.Status(ctx)
	return AddResult{Message: MsgStaged, Stdout: status.Stdout, Stderr: status.Stderr}
}

// Commit commits the staged changes; an empty message uses the configured default
func (c *Client) Commit(ctx context.Context, message string) repository.ProcessResult {
	if strings.TrimSpace(message) == "" {
		message = c.settings.CommitMessage
	}
	return c.git(ctx, "commit", "-m", message)
}

// PushOptions overrides the configured remote and branch for one push
type PushOptions struct {
	Remote string
	Branch string
	DryRun *bool
}

// PushResult is the outcome of a push
type PushResult struct {
	repository.ProcessResult
	DryRun bool   `json:"dry_run"`
	Error  string `json:"error,omitempty"`
}

// Push pushes a branch. In dry-run mode only `git push --dry-run` is issued.
// Remote and branch always follow "--".
func (c *Client) Push(ctx context.Context, opts PushOptions) PushResult {
	remote := firstNonEmpty(opts.Remote, c.settings.Remote)
	branch := firstNonEmpty(opts.Branch, c.settings.Branch)
	dryRun := c.dryRun(opts.DryRun)

	for _, err := range []error{checkRef("remote", remote), checkRef("branch", branch)} {
		if err != nil {
			return PushResult{DryRun: dryRun, Error: err.Error()}
		}
	}

	args := []string{"push"}
	if dryRun {
		args = append(args, "--dry-run")
	} else {
		logger.WarnWithIcon("🚀", "Pushing for real", "remote", remote, "branch", branch)
	}
	args = append(args, "--", remote, branch)

	return PushResult{ProcessResult: c.git(ctx, args...), DryRun: dryRun}
}

// PullRequestOptions overrides the configured pull request fields
type PullRequestOptions struct {
	Base   string
	Title  string
	Body   string
	DryRun *bool
}

// PullRequestResult is the outcome of a (simulated) pull request
type PullRequestResult struct {
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
	Branch  string `json:"branch,omitempty"`
	Base    string `json:"base,omitempty"`
	DryRun  bool   `json:"dry_run"`
	Error   string `json:"error,omitempty"`
}

// PullRequest opens a pull request from the current branch. In dry-run mode it
// only builds the compare URL; nothing leaves the machine.
func (c *Client) PullRequest(ctx context.Context, opts PullRequestOptions) PullRequestResult {
	base := firstNonEmpty(opts.Base, c.settings.BaseBranch)
	result := PullRequestResult{Base: base, DryRun: c.dryRun(opts.DryRun)}
	if err := checkRef("base", base); err != nil {
		result.Error = err.Error()
		return result
	}

	head := c.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if !head.Success() || head.Stdout == "" {
		result.Error = firstNonEmpty(head.Stderr, "could not determine the current branch")
		return result
	}
	result.Branch = head.Stdout

	if !result.DryRun {
		return c.createPullRequest(ctx, opts, result)
	}

	repoURL, err := c.RepositoryURL(ctx)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.URL = CompareURL(repoURL, base, result.Branch)
	result.Message = fmt.Sprintf("Simulated pull request created for branch '%s' targeting '%s'.", result.Branch, base)
	return result
}

func (c *Client) createPullRequest(ctx context.Context, opts PullRequestOptions, result PullRequestResult) PullRequestResult {
	title := firstNonEmpty(opts.Title, c.settings.PRTitle)
	body := firstNonEmpty(opts.Body, c.settings.PRBody)

	logger.WarnWithIcon("🚀", "Creating pull request", "base", result.Base, "head", result.Branch)
	created := c.commands.Run(ctx, c.settings.RepoDir, c.settings.PRCommand,
		"pr", "create", "--base", result.Base, "--head", result.Branch, "--title", title, "--body", body)
	if !created.Success() {
		result.Error = firstNonEmpty(strings.TrimSpace(created.Stderr),
			fmt.Sprintf("%s exited with code %d", c.settings.PRCommand, created.ExitCode))
		return result
	}

	lines := strings.Split(strings.TrimSpace(created.Stdout), "\n")
	result.URL = strings.TrimSpace(lines[len(lines)-1])
	result.Message = fmt.Sprintf("Pull request created for branch '%s' targeting '%s'.", result.Branch, result.Base)
	return result
}

// RepositoryURL returns the web URL of the repository, from settings or derived
// from the configured remote
func (c *Client) RepositoryURL(ctx context.Context) (string, error) {
	if c.settings.RepositoryURL != "" {
		return strings.TrimSuffix(c.settings.RepositoryURL, "/"), nil
	}

	remote := c.git(ctx, "remote", "get-url", c.settings.Remote)
	if !remote.Success() || remote.Stdout == "" {
		return "", errors.Errorf("could not determine repository URL for remote %q: %s", c.settings.Remote, remote.Stderr)
	}
	return WebURL(remote.Stdout)
}

// WebURL converts a git remote URL (https, ssh or scp-like) into the
// repository's https web URL, dropping credentials and the .git suffix
func WebURL(remote string) (string, error) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", errors.New("empty remote URL")
	}

	// scp-like syntax: git@github.com:owner/repo.git
	if !strings.Contains(remote, "://") {
		hostPart, path, ok := strings.Cut(remote, ":")
		if !ok {
			return "", errors.Errorf("unsupported remote URL %q", remote)
		}
		if at := strings.LastIndex(hostPart, "@"); at >= 0 {
			hostPart = hostPart[at+1:]
		}
		return "https://" + hostPart + "/" + trimRepoPath(path), nil
	}

	u, err := url.Parse(remote)
	if err != nil {
		return "", errors.Wrapf(err, "invalid remote URL %q", remote)
	}
	if u.Hostname() == "" {
		return "", errors.Errorf("remote URL %q has no host", remote)
	}

	host := u.Hostname()
	if u.Scheme == "https" || u.Scheme == "http" {
		host = u.Host
	}
	return "https://" + host + "/" + trimRepoPath(u.Path), nil
}

func trimRepoPath(path string) string {
	path = strings.Trim(path, "/")
	return strings.TrimSuffix(path, ".git")
}

// CompareURL builds the web compare URL used to open a pull request
func CompareURL(repoURL, base, branch string) string {
	return fmt.Sprintf("%s/compare/%s...%s?expand=1", strings.TrimSuffix(repoURL, "/"), base, branch)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
