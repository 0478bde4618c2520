package coverage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUncoveredMethods_SampleReport(t *testing.T) {
	report, err := ParseXML(strings.NewReader(sampleReport))
	require.NoError(t, err)

	want := []UncoveredMethod{{Package: "com/acme", Class: "com/acme/Calc", Method: "divide"}}
	if diff := cmp.Diff(want, report.UncoveredMethods()); diff != "" {
		t.Errorf("uncovered mismatch (-want +got):\n%s", diff)
	}
}

func TestUncoveredMethods_OneCoveredOneUncovered(t *testing.T) {
	report, err := ParseXML(strings.NewReader(`<report name="r">
  <package name="p">
    <class name="p/A">
      <method name="covered"><counter type="INSTRUCTION" missed="0" covered="10"/></method>
      <method name="uncovered"><counter type="INSTRUCTION" missed="5" covered="0"/></method>
    </class>
  </package>
</report>`))
	require.NoError(t, err)

	got := report.UncoveredMethods()
	require.Len(t, got, 1)
	assert.Equal(t, "uncovered", got[0].Method)
	assert.Equal(t, "p/A", got[0].Class)
	assert.Equal(t, "p", got[0].Package)
}

func TestUncoveredMethods_Rules(t *testing.T) {
	report, err := ParseXML(strings.NewReader(`<report name="r">
  <package name="p">
    <class name="p/A">
      <method name="partial"><counter type="INSTRUCTION" missed="9" covered="1"/></method>
      <method name="empty"><counter type="INSTRUCTION" missed="0" covered="0"/></method>
      <method name="noInstructionCounter"><counter type="LINE" missed="3" covered="0"/></method>
      <method name="first"><counter type="INSTRUCTION" missed="2" covered="0"/></method>
    </class>
    <class name="p/B">
      <method name="second"><counter type="INSTRUCTION" missed="4" covered="0"/></method>
    </class>
  </package>
  <package name="q">
    <class name="q/C">
      <method name="third"><counter type="INSTRUCTION" missed="1" covered="0"/></method>
    </class>
  </package>
</report>`))
	require.NoError(t, err)

	want := []UncoveredMethod{
		{Package: "p", Class: "p/A", Method: "first"},
		{Package: "p", Class: "p/B", Method: "second"},
		{Package: "q", Class: "q/C", Method: "third"},
	}
	if diff := cmp.Diff(want, report.UncoveredMethods()); diff != "" {
		t.Errorf("uncovered mismatch (-want +got):\n%s", diff)
	}
}

func TestFindUncovered_Errors(t *testing.T) {
	t.Run("malformed report yields single error entry", func(t *testing.T) {
		got := FindUncovered(writeFile(t, "jacoco.xml", `<report><package name="p"><class`))
		require.Len(t, got, 1)
		assert.NotEmpty(t, got[0].Error)
		assert.Empty(t, got[0].Method)
	})

	t.Run("missing report yields single error entry", func(t *testing.T) {
		got := FindUncovered(filepath.Join(t.TempDir(), "nope.xml"))
		require.Len(t, got, 1)
		assert.Contains(t, got[0].Error, "coverage report not found")
	})
}
