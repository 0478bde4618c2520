package testgen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	diff "github.com/hexops/gotextdiff"
	myers "github.com/hexops/gotextdiff/myers"
	"github.com/pkg/errors"
)

// GeneratedFile describes one written test class. Diff is the unified diff
// against the replaced content when an existing file changed.
type GeneratedFile struct {
	Path        string `json:"path"`
	Class       string `json:"class"`
	Method      string `json:"method"`
	TestClass   string `json:"test_class"`
	Overwritten bool   `json:"overwritten"`
	Diff        string `json:"diff,omitempty"`
}

// Writer writes one JUnit class per suggestion into a project's test sources.
// Files are overwritten; there is no merge and no backup.
type Writer struct {
	dir         string
	packageName string
}

// NewWriter creates a writer for the given test directory (relative to the
// project root) and Java package
func NewWriter(dir, packageName string) *Writer {
	return &Writer{dir: dir, packageName: packageName}
}

var testClassTemplate = template.Must(template.New("test").Parse(`package {{.Package}};

import org.junit.jupiter.api.Test;
{{- if .Import}}
import {{.Import}};
{{- end}}

public class {{.TestClass}} {

    @Test
    void {{.TestName}}() {
        {{.SimpleClass}} obj = new {{.SimpleClass}}();
        // TODO: improve this test
    }
}
`))

type testClassData struct {
	Package     string
	Import      string
	TestClass   string
	TestName    string
	SimpleClass string
}

// TestClassName is the generated class name for a method
func TestClassName(method string) string {
	return fmt.Sprintf("Generated_%s_Test", SanitizeMethodName(method))
}

// Render produces the Java source for a suggestion
func (w *Writer) Render(s TestSuggestion) (string, error) {
	safe := SanitizeMethodName(s.Method)
	data := testClassData{
		Package:     w.packageName,
		Import:      ImportName(s.Class),
		TestClass:   TestClassName(s.Method),
		TestName:    "test_" + safe,
		SimpleClass: SimpleClassName(s.Class),
	}

	var buf bytes.Buffer
	if err := testClassTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "failed to render test for %s.%s", s.Class, s.Method)
	}
	return buf.String(), nil
}

// Dir returns the directory generated tests go to for a project
func (w *Writer) Dir(projectDir string) string {
	return filepath.Join(projectDir, w.dir)
}

// Write renders and writes every suggestion under projectDir
func (w *Writer) Write(projectDir string, suggestions []TestSuggestion) ([]GeneratedFile, error) {
	dir := w.Dir(projectDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create test directory %s", dir)
	}

	files := make([]GeneratedFile, 0, len(suggestions))
	for _, s := range suggestions {
		content, err := w.Render(s)
		if err != nil {
			return files, err
		}

		testClass := TestClassName(s.Method)
		path := filepath.Join(dir, testClass+".java")
		file := GeneratedFile{Path: path, Class: s.Class, Method: s.Method, TestClass: testClass}

		if old, err := os.ReadFile(path); err == nil {
			file.Overwritten = true
			if string(old) != content {
				file.Diff = UnifiedDiff(filepath.Join(w.dir, testClass+".java"), string(old), content)
			}
		}

		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return files, errors.Wrapf(err, "failed to write %s", path)
		}
		logger.InfoWithIcon("✍️", "Generated test", "path", path, "overwritten", file.Overwritten)
		files = append(files, file)
	}

	return files, nil
}

// UnifiedDiff renders a unified diff between two versions of a file
func UnifiedDiff(name, before, after string) string {
	edits := myers.ComputeEdits("", before, after)
	return fmt.Sprint(diff.ToUnified("a/"+name, "b/"+name, before, edits))
}
