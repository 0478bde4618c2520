package tool

import (
	"context"

	"github.com/fpt/go-testpilot/internal/git"
	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/message"
)

// GitToolManager exposes the git wrapper. Push and pull request stay simulated
// while git.dry_run is on, whatever the call asks for.
type GitToolManager struct {
	toolRegistry
	client *git.Client
}

// NewGitToolManager creates a git tool manager
func NewGitToolManager(client *git.Client) domain.ToolManager {
	m := &GitToolManager{
		toolRegistry: newToolRegistry(),
		client:       client,
	}

	m.registerGitTools()
	return m
}

func (m *GitToolManager) registerGitTools() {
	dryRunArgument := message.ToolArgument{
		Name:        "dry_run",
		Description: "Request a simulated run. Ignored when false while dry-run is enabled in settings.",
		Required:    false,
		Type:        "boolean",
	}

	m.RegisterTool("git_status", "Return the short git status: staged, unstaged and untracked files",
		[]message.ToolArgument{},
		m.handleStatus)

	m.RegisterTool("git_add_all", "Stage all changes except ignored files and build artifacts",
		[]message.ToolArgument{},
		m.handleAddAll)

	m.RegisterTool("git_commit", "Commit all staged changes with the given message",
		[]message.ToolArgument{
			{Name: "message", Description: "Commit message. Defaults to the configured commit message.", Required: false, Type: "string"},
		},
		m.handleCommit)

	m.RegisterTool("git_push", "Push a branch to a remote (git push --dry-run unless dry-run is disabled in settings)",
		[]message.ToolArgument{
			{Name: "remote", Description: "Remote name. Defaults to the configured remote.", Required: false, Type: "string"},
			{Name: "branch", Description: "Branch name. Defaults to the configured branch.", Required: false, Type: "string"},
			dryRunArgument,
		},
		m.handlePush)

	m.RegisterTool("git_pull_request", "Open a pull request from the current branch; in dry-run mode only the compare URL is returned",
		[]message.ToolArgument{
			{Name: "base", Description: "Target branch. Defaults to the configured base branch.", Required: false, Type: "string"},
			{Name: "title", Description: "Pull request title", Required: false, Type: "string"},
			{Name: "body", Description: "Pull request body", Required: false, Type: "string"},
			dryRunArgument,
		},
		m.handlePullRequest)
}

// dryRunArg returns the requested dry-run flag, nil when not given
func dryRunArg(args message.ToolArgumentValues) *bool {
	value, present := args.Bool("dry_run")
	if !present {
		return nil
	}
	return &value
}

func (m *GitToolManager) handleStatus(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return message.NewToolResultJSON(m.client.Status(ctx)), nil
}

func (m *GitToolManager) handleAddAll(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return message.NewToolResultJSON(m.client.AddAll(ctx)), nil
}

func (m *GitToolManager) handleCommit(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	return message.NewToolResultJSON(m.client.Commit(ctx, args.String("message", ""))), nil
}

func (m *GitToolManager) handlePush(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	result := m.client.Push(ctx, git.PushOptions{
		Remote: args.String("remote", ""),
		Branch: args.String("branch", ""),
		DryRun: dryRunArg(args),
	})
	return message.NewToolResultJSON(result), nil
}

func (m *GitToolManager) handlePullRequest(ctx context.Context, args message.ToolArgumentValues) (message.ToolResult, error) {
	result := m.client.PullRequest(ctx, git.PullRequestOptions{
		Base:   args.String("base", ""),
		Title:  args.String("title", ""),
		Body:   args.String("body", ""),
		DryRun: dryRunArg(args),
	})
	return message.NewToolResultJSON(result), nil
}
