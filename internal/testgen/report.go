package testgen

import (
	"fmt"
	"os"

	"github.com/fpt/go-testpilot/pkg/coverage"
)

// ReportSuggestions lists the uncovered methods of a report and a test
// suggestion for each
type ReportSuggestions struct {
	UncoveredMethods []coverage.UncoveredMethod `json:"uncovered_methods"`
	TestSuggestions  []TestSuggestion           `json:"test_suggestions"`
	Error            string                     `json:"error,omitempty"`
}

// SuggestFromReport reads a JaCoCo XML report. A missing report or a traversal
// failure is reported in Error, never as partial lists.
func SuggestFromReport(reportPath string) ReportSuggestions {
	if _, err := os.Stat(reportPath); err != nil {
		return ReportSuggestions{Error: fmt.Sprintf("JaCoCo report not found at %s", reportPath)}
	}

	uncovered := coverage.FindUncovered(reportPath)
	if len(uncovered) == 1 && uncovered[0].Error != "" {
		return ReportSuggestions{Error: uncovered[0].Error}
	}
	if uncovered == nil {
		uncovered = []coverage.UncoveredMethod{}
	}

	return ReportSuggestions{
		UncoveredMethods: uncovered,
		TestSuggestions:  SuggestAll(uncovered),
	}
}
