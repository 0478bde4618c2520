package testgen

import (
	"testing"

	"github.com/fpt/go-testpilot/pkg/coverage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	got := Suggest(coverage.UncoveredMethod{Package: "com/acme", Class: "com/acme/Calc", Method: "divide"})

	want := TestSuggestion{
		Class:             "com/acme/Calc",
		Method:            "divide",
		SuggestedTestName: "test_divide",
		Template:          "@Test\nvoid test_divide() {\n    new Calc().divide();\n    // TODO: add assertions\n}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Suggest() mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggest_Idempotent(t *testing.T) {
	m := coverage.UncoveredMethod{Package: "com/acme", Class: "com/acme/Calc$Inner", Method: "lambda$run$0"}
	assert.Equal(t, Suggest(m), Suggest(m))
}

func TestSuggest_Constructors(t *testing.T) {
	ctor := Suggest(coverage.UncoveredMethod{Class: "com/acme/Calc", Method: "<init>"})
	assert.Equal(t, "test_constructor", ctor.SuggestedTestName)
	assert.Contains(t, ctor.Template, "    new Calc();\n")

	static := Suggest(coverage.UncoveredMethod{Class: "Calc", Method: "<clinit>"})
	assert.Equal(t, "test_static_init", static.SuggestedTestName)
}

func TestSuggestAll(t *testing.T) {
	methods := []coverage.UncoveredMethod{
		{Class: "a/B", Method: "one"},
		{Error: "failed to parse JaCoCo XML"},
		{Class: "a/B", Method: "two"},
	}

	got := SuggestAll(methods)

	assert.Len(t, got, 2)
	assert.Equal(t, "test_one", got[0].SuggestedTestName)
	assert.Equal(t, "test_two", got[1].SuggestedTestName)
	assert.Empty(t, SuggestAll(nil))
}

func TestSanitizeMethodName(t *testing.T) {
	tests := map[string]string{
		"<init>":       "constructor",
		"<clinit>":     "static_init",
		"compute":      "compute",
		"lambda$run$0": "lambda_run_0",
		"a/b":          "a_b",
		"<weird>":      "weird",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeMethodName(in), in)
	}
}

func TestClassNames(t *testing.T) {
	assert.Equal(t, "Calc", SimpleClassName("com/acme/Calc"))
	assert.Equal(t, "Outer.Inner", SimpleClassName("com/acme/Outer$Inner"))
	assert.Equal(t, "Calc", SimpleClassName("Calc"))

	assert.Equal(t, "com.acme.Calc", ImportName("com/acme/Calc"))
	assert.Equal(t, "com.acme.Outer", ImportName("com/acme/Outer$Inner"))
	assert.Equal(t, "", ImportName("Calc"))
}
