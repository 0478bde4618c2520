package app

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fpt/go-testpilot/internal/build"
	"github.com/fpt/go-testpilot/internal/config"
	"github.com/fpt/go-testpilot/internal/git"
	"github.com/fpt/go-testpilot/internal/infra"
	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/fpt/go-testpilot/internal/scan"
	"github.com/fpt/go-testpilot/internal/testgen"
	"github.com/fpt/go-testpilot/internal/tool"
	"github.com/fpt/go-testpilot/internal/workflow"
	"github.com/fpt/go-testpilot/pkg/agent/domain"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("app")

// Toolkit owns every tool manager and hands out the subset a profile selects
type Toolkit struct {
	settings   *config.Settings
	workingDir string
	guard      *infra.PathGuard
	git        *git.Client
	profiles   infra.ProfileMap

	math     domain.ToolManager
	build    domain.ToolManager
	gitTools domain.ToolManager
	testgen  domain.ToolManager
	review   domain.ToolManager
	workflow domain.ToolManager
}

// NewToolkit wires the tool managers against real processes
func NewToolkit(settings *config.Settings, workingDir string, progressOut io.Writer) (*Toolkit, error) {
	return NewToolkitWithRunner(settings, workingDir, infra.NewExecCommandRunner(), progressOut)
}

// NewToolkitWithRunner wires the tool managers with the given command runner
func NewToolkitWithRunner(settings *config.Settings, workingDir string, commands repository.CommandRunner, progressOut io.Writer) (*Toolkit, error) {
	guard := infra.NewPathGuard(settings.FileSystem, workingDir)

	runner, err := build.NewRunner(commands, settings.Build, settings.Coverage)
	if err != nil {
		return nil, err
	}

	gitSettings := settings.Git
	if !filepath.IsAbs(gitSettings.RepoDir) {
		gitSettings.RepoDir = filepath.Join(guard.WorkingDir(), gitSettings.RepoDir)
	}
	gitClient := git.NewClient(commands, gitSettings)

	writer := testgen.NewWriter(settings.Generate.Dir, settings.Generate.Package)
	improver := workflow.NewImprover(runner, writer, gitClient)

	var additional []string
	if settings.ProfilesPath != "" {
		additional = append(additional, settings.ProfilesPath)
	}
	profiles, err := infra.LoadProfiles(additional...)
	if err != nil {
		return nil, err
	}

	project := settings.Project.Path
	return &Toolkit{
		settings:   settings,
		workingDir: guard.WorkingDir(),
		guard:      guard,
		git:        gitClient,
		profiles:   profiles,
		math:       tool.NewMathToolManager(),
		build:      tool.NewBuildToolManager(runner, writer, guard, project),
		gitTools:   tool.NewGitToolManager(gitClient),
		testgen:    tool.NewTestgenToolManager(guard),
		review:     tool.NewReviewToolManager(scan.NewScanner(settings.Scan), guard),
		workflow:   tool.NewWorkflowToolManager(improver, guard, project, progressOut),
	}, nil
}

// WorkingDir returns the directory tool paths are resolved against
func (t *Toolkit) WorkingDir() string { return t.workingDir }

// Settings returns the settings the toolkit was built from
func (t *Toolkit) Settings() *config.Settings { return t.settings }

// Profiles returns the loaded tool profiles
func (t *Toolkit) Profiles() infra.ProfileMap { return t.profiles }

// ToolManager returns the tools selected by the named profile
func (t *Toolkit) ToolManager(profile string) (*tool.CompositeToolManager, error) {
	p, ok := t.profiles.GetProfile(profile)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", profile, strings.Join(t.profiles.GetAvailableProfiles(), ", "))
	}

	scope := p.GetToolScope()
	var managers []domain.ToolManager
	if scope.UseMath {
		managers = append(managers, t.math)
	}
	if scope.UseBuild {
		managers = append(managers, t.build)
	}
	if scope.UseGit {
		managers = append(managers, t.gitTools)
	}
	if scope.UseTestgen {
		managers = append(managers, t.testgen)
	}
	if scope.UseReview {
		managers = append(managers, t.review)
	}
	if scope.UseWorkflow {
		managers = append(managers, t.workflow)
	}

	composite := tool.NewCompositeToolManager(managers...).Without(scope.Exclude...)
	logger.DebugWithIcon("🧰", "Tools selected", "profile", p.Name(), "tools", len(composite.GetTools()))
	return composite, nil
}

// GitDryRun reports whether push and pull request are simulated
func (t *Toolkit) GitDryRun() bool {
	return t.git.Settings().IsDryRun()
}
