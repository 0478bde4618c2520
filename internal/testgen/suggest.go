// Package testgen turns coverage gaps and method signatures into JUnit test
// skeletons. Generation is plain templating; nothing here understands Java.
package testgen

import (
	"fmt"
	"strings"

	"github.com/fpt/go-testpilot/pkg/coverage"
	pkgLogger "github.com/fpt/go-testpilot/pkg/logger"
)

var logger = pkgLogger.NewComponentLogger("testgen")

// TestSuggestion is a test skeleton for one uncovered method
type TestSuggestion struct {
	Class             string `json:"class"`
	Method            string `json:"method"`
	SuggestedTestName string `json:"suggested_test_name"`
	Template          string `json:"template"`
}

// Suggest builds the test skeleton for an uncovered method. The output depends
// only on the input.
func Suggest(m coverage.UncoveredMethod) TestSuggestion {
	simple := SimpleClassName(m.Class)
	testName := "test_" + SanitizeMethodName(m.Method)

	return TestSuggestion{
		Class:             m.Class,
		Method:            m.Method,
		SuggestedTestName: testName,
		Template: fmt.Sprintf("@Test\nvoid %s() {\n    %s\n    // TODO: add assertions\n}",
			testName, invocation(simple, m.Method)),
	}
}

// SuggestAll builds suggestions in input order, skipping error entries
func SuggestAll(methods []coverage.UncoveredMethod) []TestSuggestion {
	suggestions := make([]TestSuggestion, 0, len(methods))
	for _, m := range methods {
		if m.Error != "" || m.Method == "" {
			continue
		}
		suggestions = append(suggestions, Suggest(m))
	}
	return suggestions
}

func invocation(simpleClass, method string) string {
	switch method {
	case "<init>", "<clinit>":
		return fmt.Sprintf("new %s();", simpleClass)
	}
	return fmt.Sprintf("new %s().%s();", simpleClass, method)
}

// SanitizeMethodName turns a bytecode method name into a Java identifier fragment
func SanitizeMethodName(method string) string {
	switch method {
	case "<init>":
		return "constructor"
	case "<clinit>":
		return "static_init"
	}
	r := strings.NewReplacer("<", "", ">", "", "/", "_", "$", "_")
	return r.Replace(method)
}

// SimpleClassName returns the source-level name of a slash separated JVM class
// name: com/acme/Outer$Inner becomes Outer.Inner
func SimpleClassName(class string) string {
	if i := strings.LastIndex(class, "/"); i >= 0 {
		class = class[i+1:]
	}
	return strings.ReplaceAll(class, "$", ".")
}

// ImportName returns the dotted import for the top-level class of a JVM class
// name, or "" for the default package
func ImportName(class string) string {
	if !strings.Contains(class, "/") {
		return ""
	}
	if i := strings.Index(class, "$"); i >= 0 {
		class = class[:i]
	}
	return strings.ReplaceAll(class, "/", ".")
}
