package app

import (
	"encoding/json"
	"io"

	"github.com/fpt/go-testpilot/internal/build"
	"github.com/fpt/go-testpilot/internal/git"
	"github.com/fpt/go-testpilot/internal/repository"
	"github.com/fpt/go-testpilot/internal/scan"
	"github.com/fpt/go-testpilot/internal/testgen"
	"github.com/fpt/go-testpilot/internal/tool"
	"github.com/fpt/go-testpilot/internal/workflow"
	"github.com/fpt/go-testpilot/pkg/coverage"
	"github.com/invopop/jsonschema"
)

// resultTypes maps each tool to the type its JSON result is encoded from
var resultTypes = map[string]any{
	"run_maven_tests":   &build.TestRunResult{},
	"parse_coverage":    &coverage.Result{},
	"suggest_tests":     &testgen.ReportSuggestions{},
	"generate_tests":    &tool.GenerateResult{},
	"git_status":        &repository.ProcessResult{},
	"git_add_all":       &git.AddResult{},
	"git_commit":        &repository.ProcessResult{},
	"git_push":          &git.PushResult{},
	"git_pull_request":  &git.PullRequestResult{},
	"spec_based_tester": &testgen.BoundaryResult{},
	"code_review_agent": &scan.Result{},
	"improve_tests":     &workflow.ImproveResult{},
}

// ResultSchemas returns the JSON Schema of every structured tool result
func ResultSchemas() map[string]*jsonschema.Schema {
	reflector := &jsonschema.Reflector{ExpandedStruct: true}

	schemas := make(map[string]*jsonschema.Schema, len(resultTypes))
	for name, v := range resultTypes {
		schemas[name] = reflector.Reflect(v)
	}
	return schemas
}

// WriteSchemas prints the result schemas as one JSON object keyed by tool name
func WriteSchemas(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(ResultSchemas())
}
