package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/fpt/go-testpilot/pkg/agent/domain"
	"github.com/fpt/go-testpilot/pkg/message"
	"github.com/pkg/errors"
)

// ErrUnknownTool is returned by RunTool for names the manager does not expose
var ErrUnknownTool = errors.New("unknown tool")

// RunTool calls one tool and writes its JSON result to out. Domain failures
// are part of the result; only an unknown tool or a handler error is returned.
func RunTool(ctx context.Context, tools domain.ToolManager, name string, args message.ToolArgumentValues, out io.Writer) (message.ToolResult, error) {
	if _, ok := tools.GetTool(message.ToolName(name)); !ok {
		return message.ToolResult{}, errors.Wrapf(ErrUnknownTool, "%s", name)
	}

	logger.DebugWithIcon("🔧", "Calling tool", "tool", name, "args", args)
	result, err := tools.CallTool(ctx, message.ToolName(name), args)
	if err != nil {
		return result, errors.Wrapf(err, "tool %s failed", name)
	}

	text := result.Text
	if text == "" {
		text = message.NewToolResultFields(result.Fields).Text
	}
	fmt.Fprintln(out, text)
	return result, nil
}

// ParseCommandLine splits "tool key=value ..." into the tool name and its
// arguments. Values may be quoted with single or double quotes.
func ParseCommandLine(line string) (string, message.ToolArgumentValues, error) {
	words, err := SplitWords(line)
	if err != nil {
		return "", nil, err
	}
	if len(words) == 0 {
		return "", nil, errors.New("empty command")
	}

	args, err := message.ParseKeyValueArgs(words[1:])
	if err != nil {
		return "", nil, err
	}
	return words[0], args, nil
}

// SplitWords splits on whitespace outside quotes. Quotes are removed; a
// backslash escapes the next character inside double quotes and bare words.
func SplitWords(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}

// needsConfirmation reports whether a call would have a real remote effect
func needsConfirmation(name string, args message.ToolArgumentValues, dryRun bool) bool {
	switch name {
	case "git_push", "git_pull_request", "improve_tests":
	default:
		return false
	}
	if dryRun {
		return false
	}
	requested, present := args.Bool("dry_run")
	return !present || !requested
}
