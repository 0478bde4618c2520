package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fpt/go-testpilot/internal/app"
	"github.com/fpt/go-testpilot/internal/config"
	"github.com/fpt/go-testpilot/internal/mcp"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
	"github.com/fpt/go-testpilot/pkg/message"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func printUsage() {
	fmt.Println("testpilot - test and coverage automation for Maven projects")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  testpilot                                   # Interactive mode")
	fmt.Println("  testpilot <tool> [key=value ...]            # Run one tool and print its JSON result")
	fmt.Println("  testpilot -serve stdio                      # MCP server on stdin/stdout")
	fmt.Println("  testpilot -serve sse -addr 127.0.0.1:8000   # MCP server over SSE")
	fmt.Println("  testpilot -schema                           # Print JSON Schemas of tool results")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  testpilot run_maven_tests project_path=java_agent")
	fmt.Println("  testpilot suggest_tests")
	fmt.Println("  testpilot spec_based_tester java_file=java_agent/src/main/java/Calc.java")
	fmt.Println("  testpilot git_push                          # git push --dry-run unless disabled in settings")
	fmt.Println("  testpilot -p analyze code_review_agent java_dir=java_agent/src")
	fmt.Println()
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var workdir = flag.String("workdir", "", "Working directory tool paths are resolved against")
	var settingsPath = flag.String("settings", "", "Path to settings file (.json, .yaml or .yml)")
	var profile = flag.String("p", "", "Tool profile (default from settings)")
	var profileLong = flag.String("profile", "", "Tool profile (default from settings)")
	var serve = flag.String("serve", "", "Serve tools over MCP: stdio or sse")
	var addr = flag.String("addr", "", "Listen address for -serve sse (default from settings)")
	var schema = flag.Bool("schema", false, "Print JSON Schemas of tool results and exit")
	var verbose = flag.Bool("v", false, "Enable verbose logging (debug level)")
	var verboseLong = flag.Bool("verbose", false, "Enable verbose logging (debug level)")
	var help = flag.Bool("h", false, "Show this help message")
	var helpLong = flag.Bool("help", false, "Show this help message")

	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help || *helpLong {
		flag.Usage()
		return 0
	}

	if *schema {
		if err := app.WriteSchemas(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 1
		}
		return 0
	}

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}

	logLevel := settings.LogLevel
	if *verbose || *verboseLong {
		logLevel = "debug"
	}
	pkgLogger.SetGlobalLogLevel(pkgLogger.ParseLevel(logLevel))
	logger := pkgLogger.NewComponentLogger("main")

	if *serve != "" {
		settings.Server.Transport = *serve
	}
	if *addr != "" {
		settings.Server.Address = *addr
	}
	if p := firstNonEmpty(*profile, *profileLong); p != "" {
		settings.Profile = p
	}

	if err := config.ValidateSettings(settings); err != nil {
		logger.ErrorWithIcon("❌", "Settings validation failed", "error", err)
		return 1
	}

	// Working directory is passed to the tools; the process cwd is left alone
	workingDirectory := *workdir
	if workingDirectory != "" {
		if info, err := os.Stat(workingDirectory); err != nil || !info.IsDir() {
			logger.ErrorWithIcon("❌", "Working directory does not exist", "directory", workingDirectory, "error", err)
			return 1
		}
	} else {
		workingDirectory = "."
	}

	args := flag.Args()
	interactive := len(args) == 0 && *serve == ""

	// Step progress only makes sense for a person watching a terminal
	var toolkit *app.Toolkit
	if interactive {
		toolkit, err = app.NewToolkit(settings, workingDirectory, os.Stderr)
	} else {
		toolkit, err = app.NewToolkit(settings, workingDirectory, nil)
	}
	if err != nil {
		logger.ErrorWithIcon("❌", "Failed to initialize tools", "error", err)
		return 1
	}
	if !toolkit.GitDryRun() {
		logger.WarnWithIcon("⚠️", "git.dry_run is disabled: push and pull requests reach the remote")
	}

	switch {
	case *serve != "":
		tools, err := toolkit.ToolManager(settings.Profile)
		if err != nil {
			logger.ErrorWithIcon("❌", "Failed to select tools", "error", err)
			return 1
		}
		s := mcp.NewServer(settings.Server.Name, version, tools)
		if err := mcp.Serve(ctx, s, settings.Server.Transport, settings.Server.Address); err != nil {
			logger.ErrorWithIcon("❌", "MCP server stopped", "error", err)
			return 1
		}
		return 0

	case len(args) > 0:
		tools, err := toolkit.ToolManager(settings.Profile)
		if err != nil {
			logger.ErrorWithIcon("❌", "Failed to select tools", "error", err)
			return 1
		}
		toolArgs, err := message.ParseKeyValueArgs(args[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 2
		}
		result, err := app.RunTool(ctx, tools, args[0], toolArgs, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			return 2
		}
		if result.IsError() {
			return 1
		}
		return 0

	default:
		session, err := app.NewSession(toolkit, settings.Profile, os.Stdout)
		if err != nil {
			logger.ErrorWithIcon("❌", "Failed to start session", "error", err)
			return 1
		}
		app.StartInteractiveMode(ctx, session)
		return 0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
