package coverage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<!DOCTYPE report PUBLIC "-//JACOCO//DTD Report 1.1//EN" "report.dtd">
<report name="java_agent">
  <sessioninfo id="host-1" start="1700000000000" dump="1700000001000"/>
  <package name="com/acme">
    <class name="com/acme/Calc" sourcefilename="Calc.java">
      <method name="&lt;init&gt;" desc="()V" line="3">
        <counter type="INSTRUCTION" missed="0" covered="3"/>
      </method>
      <method name="add" desc="(II)I" line="5">
        <counter type="INSTRUCTION" missed="0" covered="10"/>
        <counter type="LINE" missed="0" covered="1"/>
      </method>
      <method name="divide" desc="(II)I" line="9">
        <counter type="INSTRUCTION" missed="5" covered="0"/>
        <counter type="LINE" missed="2" covered="0"/>
      </method>
      <counter type="INSTRUCTION" missed="5" covered="13"/>
    </class>
    <sourcefile name="Calc.java">
      <line nr="5" mi="0" ci="4" mb="0" cb="0"/>
    </sourcefile>
    <counter type="INSTRUCTION" missed="5" covered="13"/>
  </package>
  <counter type="INSTRUCTION" missed="20" covered="80"/>
  <counter type="BRANCH" missed="1" covered="3"/>
  <counter type="LINE" missed="2" covered="6"/>
  <counter type="COMPLEXITY" missed="2" covered="4"/>
  <counter type="METHOD" missed="1" covered="2"/>
  <counter type="CLASS" missed="0" covered="1"/>
</report>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCounterPercent(t *testing.T) {
	tests := []struct {
		name    string
		counter Counter
		want    float64
	}{
		{"eighty percent", Counter{Covered: 80, Missed: 20}, 80},
		{"nothing counted", Counter{}, 0},
		{"fully covered", Counter{Covered: 10}, 100},
		{"fully missed", Counter{Missed: 7}, 0},
		{"rounded to two decimals", Counter{Covered: 1, Missed: 2}, 33.33},
		{"rounds half up", Counter{Covered: 2, Missed: 1}, 66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.counter.Percent()
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestCounterPercent_StaysInRange(t *testing.T) {
	for covered := 0; covered <= 40; covered += 3 {
		for missed := 0; missed <= 40; missed += 7 {
			p := Counter{Covered: covered, Missed: missed}.Percent()
			if p < 0 || p > 100 {
				t.Fatalf("percent %v out of range for covered=%d missed=%d", p, covered, missed)
			}
		}
	}
}

func TestParseFile_XML(t *testing.T) {
	path := writeFile(t, "jacoco.xml", sampleReport)

	result := ParseFile(path)
	require.Empty(t, result.Error)
	require.True(t, result.Available)

	want := map[Metric]float64{
		MetricInstructions: 80,
		MetricBranches:     75,
		MetricLines:        75,
		MetricMethods:      66.67,
		MetricClasses:      100,
	}
	for metric, expected := range want {
		got, ok := result.Coverage.Value(metric)
		require.True(t, ok, "metric %s should be available", metric)
		assert.Equal(t, expected, got, "metric %s", metric)
	}
	assert.Equal(t, Round2((80+75+75+66.67+100)/5), result.Percent)
}

func TestParseFile_InstructionsOnly(t *testing.T) {
	path := writeFile(t, "jacoco.xml", `<report name="r"><counter type="INSTRUCTION" missed="20" covered="80"/></report>`)

	result := ParseFile(path)
	require.True(t, result.Available)
	assert.Equal(t, 80.00, result.Percent)

	_, ok := result.Coverage.Value(MetricBranches)
	assert.False(t, ok, "branches should be unavailable")
}

func TestParseFile_MissingReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target", "site", "jacoco", "jacoco.xml")

	result := ParseFile(path)
	assert.False(t, result.Available)
	assert.Empty(t, result.Error)
	assert.Equal(t, 0.0, result.Percent)
	assert.Len(t, result.Coverage, len(Metrics))
	for _, m := range Metrics {
		assert.Nil(t, result.Coverage[m], "metric %s should be nil", m)
	}
}

func TestParseFile_Malformed(t *testing.T) {
	tests := map[string]string{
		"truncated":     `<report name="r"><counter type="INSTRUCTION" missed="1"`,
		"wrong root":    `<html><body>not a report</body></html>`,
		"bad number":    `<report><counter type="LINE" missed="x" covered="1"/></report>`,
		"empty content": ``,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			result := ParseFile(writeFile(t, "jacoco.xml", content))
			assert.False(t, result.Available)
			assert.Contains(t, result.Error, "failed to parse JaCoCo XML")
		})
	}
}

func TestParseFile_UnknownCountersKeepZeroValue(t *testing.T) {
	path := writeFile(t, "jacoco.xml", `<report name="r"><counter type="COMPLEXITY" missed="1" covered="1"/><counter type="MYSTERY" missed="1" covered="1"/></report>`)

	result := ParseFile(path)
	require.True(t, result.Available)
	if diff := cmp.Diff(EmptyCoverage(), result.Coverage); diff != "" {
		t.Errorf("coverage mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0.0, result.Percent)
}

func TestTotalCounters_FallsBackToPackages(t *testing.T) {
	report, err := ParseXML(strings.NewReader(`<report name="r">
  <package name="a"><counter type="INSTRUCTION" missed="10" covered="30"/></package>
  <group name="g"><package name="b"><counter type="INSTRUCTION" missed="10" covered="50"/></package></group>
</report>`))
	require.NoError(t, err)

	want := []Counter{{Type: CounterInstruction, Missed: 20, Covered: 80}}
	if diff := cmp.Diff(want, report.TotalCounters()); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}

	v, ok := report.Coverage().Value(MetricInstructions)
	require.True(t, ok)
	assert.Equal(t, 80.0, v)
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, 0.0, Aggregate(EmptyCoverage()))

	cov := EmptyCoverage()
	a, b := 50.0, 75.0
	cov[MetricInstructions] = &a
	cov[MetricLines] = &b
	assert.Equal(t, 62.5, Aggregate(cov))
}
