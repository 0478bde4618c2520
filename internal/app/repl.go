package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/fpt/go-testpilot/internal/tool"
	"github.com/fpt/go-testpilot/pkg/message"
	"github.com/manifoldco/promptui"
)

// Session is the state of one interactive run
type Session struct {
	toolkit *Toolkit
	tools   *tool.CompositeToolManager
	profile string
	out     io.Writer
}

// NewSession creates an interactive session over the tools of a profile
func NewSession(toolkit *Toolkit, profile string, out io.Writer) (*Session, error) {
	tools, err := toolkit.ToolManager(profile)
	if err != nil {
		return nil, err
	}
	return &Session{toolkit: toolkit, tools: tools, profile: profile, out: out}, nil
}

// SlashCommand represents a command that starts with /
type SlashCommand struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, s *Session) bool // Returns true if should exit
}

// getSlashCommands returns all available slash commands
func getSlashCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:        "help",
			Description: "Show available commands and usage information",
			Handler: func(ctx context.Context, s *Session) bool {
				showInteractiveHelp(s)
				return false
			},
		},
		{
			Name:        "tools",
			Description: "Pick a tool, fill in its arguments and run it",
			Handler: func(ctx context.Context, s *Session) bool {
				s.pickAndRunTool(ctx)
				return false
			},
		},
		{
			Name:        "profile",
			Description: "Switch to another tool profile",
			Handler: func(ctx context.Context, s *Session) bool {
				s.selectProfile()
				return false
			},
		},
		{
			Name:        "status",
			Description: "Show working directory, profile and git mode",
			Handler: func(ctx context.Context, s *Session) bool {
				showStatus(s)
				return false
			},
		},
		{
			Name:        "quit",
			Description: "Exit the interactive session",
			Handler: func(ctx context.Context, s *Session) bool {
				fmt.Fprintln(s.out, "👋 Goodbye!")
				return true
			},
		},
		{
			Name:        "exit",
			Description: "Exit the interactive session (alias for quit)",
			Handler: func(ctx context.Context, s *Session) bool {
				fmt.Fprintln(s.out, "👋 Goodbye!")
				return true
			},
		},
	}
}

// handleSlashCommand processes commands that start with /
// Returns true if the command requests program exit, false otherwise
func handleSlashCommand(ctx context.Context, input string, s *Session) bool {
	// Check if this is just "/" - show command selector
	if strings.TrimSpace(input) == "/" {
		return showCommandSelector(ctx, s)
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	commandName := strings.TrimPrefix(parts[0], "/")
	commands := getSlashCommands()

	for _, cmd := range commands {
		if cmd.Name == commandName {
			return cmd.Handler(ctx, s)
		}
	}

	fmt.Fprintf(s.out, "❌ Unknown command: /%s\n", commandName)
	fmt.Fprintln(s.out, "💡 Available commands:")
	for _, cmd := range commands {
		fmt.Fprintf(s.out, "  /%s - %s\n", cmd.Name, cmd.Description)
	}
	return false
}

// showCommandSelector shows an interactive command selector using promptui
func showCommandSelector(ctx context.Context, s *Session) bool {
	commands := getSlashCommands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Name | cyan }} - {{ .Description | faint }}",
		Inactive: "  {{ .Name | cyan }} - {{ .Description | faint }}",
		Selected: "{{ .Name | red | cyan }}",
	}

	searcher := func(input string, index int) bool {
		command := commands[index]
		name := strings.ReplaceAll(strings.ToLower(command.Name), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			fmt.Fprintln(s.out, "\nCancelled.")
			return false
		}
		fmt.Fprintf(s.out, "Command selection failed: %v\n", err)
		return false
	}
	return commands[i].Handler(ctx, s)
}

// toolItem is what the tool picker lists
type toolItem struct {
	Name        string
	Description string
}

// pickAndRunTool lets the user choose a tool and prompts for each argument
func (s *Session) pickAndRunTool(ctx context.Context) {
	names := message.SortedToolNames(s.tools.GetTools())
	items := make([]toolItem, len(names))
	for i, name := range names {
		t, _ := s.tools.GetTool(name)
		items[i] = toolItem{Name: string(name), Description: t.Description().String()}
	}

	picker := promptui.Select{
		Label: "Choose a tool",
		Items: items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "▸ {{ .Name | cyan }} - {{ .Description | faint }}",
			Inactive: "  {{ .Name | cyan }} - {{ .Description | faint }}",
			Selected: "🔧 {{ .Name | cyan }}",
		},
		Size: 12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(items[index].Name, strings.ToLower(strings.TrimSpace(input)))
		},
	}
	i, _, err := picker.Run()
	if err != nil {
		return
	}

	selected, _ := s.tools.GetTool(message.ToolName(items[i].Name))
	args := message.ToolArgumentValues{}
	for _, arg := range selected.Arguments() {
		label := fmt.Sprintf("%s (%s)", arg.Name, arg.Type)
		if !arg.Required {
			label += " [optional]"
		}
		prompt := promptui.Prompt{Label: label}
		if arg.Required {
			prompt.Validate = func(v string) error {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("%s is required", arg.Name)
				}
				return nil
			}
		}
		value, err := prompt.Run()
		if err != nil {
			return
		}
		if value = strings.TrimSpace(value); value != "" {
			args[arg.Name] = value
		}
	}

	s.runTool(ctx, items[i].Name, args)
}

// selectProfile switches the session to another profile
func (s *Session) selectProfile() {
	names := s.toolkit.Profiles().GetAvailableProfiles()
	prompt := promptui.Select{Label: fmt.Sprintf("Profile (current: %s)", s.profile), Items: names}
	_, name, err := prompt.Run()
	if err != nil {
		return
	}

	tools, err := s.toolkit.ToolManager(name)
	if err != nil {
		fmt.Fprintf(s.out, "❌ %v\n", err)
		return
	}
	s.tools = tools
	s.profile = name
	fmt.Fprintf(s.out, "🧰 Profile %s: %d tools\n", name, len(tools.GetTools()))
}

// confirm asks before a call that would push or open a real pull request
func (s *Session) confirm(name string) bool {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("⚠️  Dry-run is disabled; %s will change the remote. Continue", name),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

// runTool executes one tool with Ctrl+C cancelling the call, not the session
func (s *Session) runTool(ctx context.Context, name string, args message.ToolArgumentValues) {
	if needsConfirmation(name, args, s.toolkit.GitDryRun()) && !s.confirm(name) {
		fmt.Fprintln(s.out, "Cancelled.")
		return
	}

	execCtx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(s.out)
			cancel()
		case <-execCtx.Done():
		}
	}()

	_, err := RunTool(execCtx, s.tools, name, args, s.out)
	wasCanceled := execCtx.Err() == context.Canceled

	signal.Stop(sigChan)
	cancel()

	if err != nil {
		if wasCanceled {
			fmt.Fprintln(s.out, "🔄 Ready for next command.")
		} else {
			fmt.Fprintf(s.out, "❌ Error: %v\n", err)
		}
	}
}

// handleLine dispatches one line of input; it returns true to exit
func (s *Session) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return handleSlashCommand(ctx, line, s)
	}

	name, args, err := ParseCommandLine(line)
	if err != nil {
		fmt.Fprintf(s.out, "❌ %v\n", err)
		return false
	}
	s.runTool(ctx, name, args)
	return false
}

// StartInteractiveMode runs the readline-based REPL
func StartInteractiveMode(ctx context.Context, s *Session) {
	rlCfg := &readline.Config{
		Prompt:              "testpilot> ",
		AutoComplete:        createAutoCompleter(s),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		HistoryLimit:        2000,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Fprintf(s.out, "❌ Failed to initialize interactive mode: %v\n", err)
		fmt.Fprintln(s.out, "💡 Please use one-shot mode instead: testpilot <tool> key=value ...")
		return
	}
	defer rl.Close()

	fmt.Fprintf(s.out, "🧪 testpilot (profile %s, %d tools)\n", s.profile, len(s.tools.GetTools()))
	fmt.Fprintln(s.out, "💬 Type '<tool> key=value ...' to run a tool, '/' for commands.")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		if s.handleLine(ctx, line) {
			break
		}
	}
}

// createAutoCompleter completes slash commands, tool names and argument keys
func createAutoCompleter(s *Session) *readline.PrefixCompleter {
	var pcItems []readline.PrefixCompleterInterface
	for _, cmd := range getSlashCommands() {
		pcItems = append(pcItems, readline.PcItem("/"+cmd.Name))
	}
	pcItems = append(pcItems, readline.PcItem("/"))

	for _, name := range message.SortedToolNames(s.tools.GetTools()) {
		t, _ := s.tools.GetTool(name)
		var argItems []readline.PrefixCompleterInterface
		for _, arg := range t.Arguments() {
			argItems = append(argItems, readline.PcItem(arg.Name+"="))
		}
		pcItems = append(pcItems, readline.PcItem(string(name), argItems...))
	}
	return readline.NewPrefixCompleter(pcItems...)
}

// filterInput filters input runes to handle special keys
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showInteractiveHelp(s *Session) {
	fmt.Fprintln(s.out, "\n📚 Interactive Commands:")
	fmt.Fprintln(s.out, "  /                - Show interactive command selector")
	for _, cmd := range getSlashCommands() {
		fmt.Fprintf(s.out, "  /%-15s - %s\n", cmd.Name, cmd.Description)
	}

	fmt.Fprintln(s.out, "\n🔧 Tools:")
	for _, name := range message.SortedToolNames(s.tools.GetTools()) {
		t, _ := s.tools.GetTool(name)
		var argNames []string
		for _, arg := range t.Arguments() {
			if arg.Required {
				argNames = append(argNames, arg.Name+"=")
			} else {
				argNames = append(argNames, "["+arg.Name+"=]")
			}
		}
		fmt.Fprintf(s.out, "  %-18s %s\n", name, strings.Join(argNames, " "))
	}

	fmt.Fprintln(s.out, "\n💡 Examples:")
	fmt.Fprintln(s.out, "  > run_maven_tests project_path=java_agent")
	fmt.Fprintln(s.out, "  > spec_based_tester java_file=src/main/java/Calc.java")
	fmt.Fprintln(s.out, `  > git_commit message="Add tests for Calc"`)
}

func showStatus(s *Session) {
	mode := "dry-run"
	if !s.toolkit.GitDryRun() {
		mode = "LIVE (push and pull requests reach the remote)"
	}
	fmt.Fprintln(s.out, "\n📊 Session Status:")
	fmt.Fprintf(s.out, "  📁 Working dir: %s\n", s.toolkit.WorkingDir())
	fmt.Fprintf(s.out, "  📦 Project: %s\n", s.toolkit.Settings().Project.Path)
	fmt.Fprintf(s.out, "  🧰 Profile: %s (%d tools)\n", s.profile, len(s.tools.GetTools()))
	fmt.Fprintf(s.out, "  🌿 Git: %s\n", mode)
}
