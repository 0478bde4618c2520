// Package scan is a lightweight, regex based review of Java sources. Every
// finding is a heuristic: there is no parser behind it.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/fpt/go-testpilot/internal/config"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("scan")

// Issue labels
const (
	IssueMissingJavadoc = "Missing Javadoc"
	IssueNestedLoop     = "Nested loop detected"
)

var (
	methodWithBody   = regexp.MustCompile(`(public|private|protected)\s+[\w<>]+\s+\w+\s*\([^)]*\)\s*\{`)
	publicMethodDecl = regexp.MustCompile(`public\s+[\w<>]+\s+\w+\s*\(`)
	nestedFor        = regexp.MustCompile(`(?s)for\s*\(.*\)\s*\{[^}]*for\s*\(`)
)

// Issue is one finding
type Issue struct {
	File    string `json:"file"`
	Issue   string `json:"issue"`
	Snippet string `json:"snippet,omitempty"`
	Line    int    `json:"line"`
}

// Result is the outcome of scanning a directory
type Result struct {
	Dir    string  `json:"dir"`
	Issues []Issue `json:"issues"`
	Error  string  `json:"error,omitempty"`
}

// Scanner walks a directory tree and reviews matching files
type Scanner struct {
	extensions      []string
	longMethodLines int
	excludeDirs     []string
}

// NewScanner creates a scanner from settings
func NewScanner(settings config.ScanSettings) *Scanner {
	return &Scanner{
		extensions:      settings.Extensions,
		longMethodLines: settings.LongMethodLines,
		excludeDirs:     settings.ExcludeDirs,
	}
}

// LongMethodIssue is the label used for methods over the line threshold
func (s *Scanner) LongMethodIssue() string {
	return fmt.Sprintf("Long method (>%d lines)", s.longMethodLines)
}

// ScanDir reviews every matching file under dir, in lexical walk order
func (s *Scanner) ScanDir(dir string) Result {
	result := Result{Dir: dir, Issues: []Issue{}}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		result.Error = fmt.Sprintf("Directory not found: %s", dir)
		return result
	}

	files := 0
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != dir && slices.Contains(s.excludeDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.matches(path) {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable file", "path", path, "error", err)
			return nil
		}
		files++
		result.Issues = append(result.Issues, s.ScanSource(path, string(src))...)
		return nil
	})
	if walkErr != nil {
		result.Error = walkErr.Error()
	}

	logger.InfoWithIcon("🔍", "Scan finished", "dir", dir, "files", files, "issues", len(result.Issues))
	return result
}

func (s *Scanner) matches(path string) bool {
	for _, ext := range s.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ScanSource reviews one file's content: long methods first, then missing
// Javadoc, then at most one nested-loop finding
func (s *Scanner) ScanSource(path, src string) []Issue {
	var issues []Issue

	for _, loc := range methodWithBody.FindAllStringIndex(src, -1) {
		open := loc[1]
		end := closingBrace(src, open)
		if strings.Count(src[open:end], "\n") > s.longMethodLines {
			issues = append(issues, Issue{
				File:    path,
				Issue:   s.LongMethodIssue(),
				Snippet: src[loc[0]:loc[1]],
				Line:    lineAt(src, loc[0]),
			})
		}
	}

	for _, loc := range publicMethodDecl.FindAllStringIndex(src, -1) {
		before := strings.TrimRightFunc(src[:loc[0]], unicode.IsSpace)
		if !strings.HasSuffix(before, "*/") {
			issues = append(issues, Issue{
				File:    path,
				Issue:   IssueMissingJavadoc,
				Snippet: src[loc[0]:loc[1]],
				Line:    lineAt(src, loc[0]),
			})
		}
	}

	if loc := nestedFor.FindStringIndex(src); loc != nil {
		issues = append(issues, Issue{File: path, Issue: IssueNestedLoop, Line: lineAt(src, loc[0])})
	}

	return issues
}

// closingBrace returns the index of the brace closing a block whose body
// starts at start, or len(src) when it is never closed. Braces inside string
// and char literals and comments are ignored.
func closingBrace(src string, start int) int {
	depth := 1
	for i := start; i < len(src); i++ {
		switch c := src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '"', '\'':
			i = skipQuoted(src, i, c)
		case '/':
			if i+1 >= len(src) {
				continue
			}
			switch src[i+1] {
			case '/':
				if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
					i += nl
				} else {
					return len(src)
				}
			case '*':
				if end := strings.Index(src[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					return len(src)
				}
			}
		}
	}
	return len(src)
}

// skipQuoted returns the index of the quote closing the literal opened at i
func skipQuoted(src string, i int, quote byte) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j
		case '\n':
			// unterminated on this line; resume after it
			return j
		}
	}
	return len(src)
}

func lineAt(src string, offset int) int {
	return strings.Count(src[:offset], "\n") + 1
}
