package coverage

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ErrReportNotFound is returned by Load when the report file does not exist
var ErrReportNotFound = errors.New("coverage report not found")

// Result is the outcome of parsing a report for its metric percentages
type Result struct {
	Path      string   `json:"path"`
	Available bool     `json:"available"`
	Coverage  Coverage `json:"coverage"`
	Percent   float64  `json:"coverage_percent"`
	Error     string   `json:"error,omitempty"`
}

// Load reads and decodes a report, choosing the decoder by file extension
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrReportNotFound, "%s", path)
		}
		return nil, errors.Wrap(err, "failed to read coverage report")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ParseHTML(bytes.NewReader(data))
	default:
		return ParseXML(bytes.NewReader(data))
	}
}

// ParseXML decodes a JaCoCo XML report
func ParseXML(r io.Reader) (*Report, error) {
	// jacoco.xml references report.dtd; the DOCTYPE directive is skipped by the decoder
	var report Report
	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return nil, errors.Wrap(err, "failed to parse JaCoCo XML")
	}
	return &report, nil
}

// ParseFile parses the report at path into metric percentages. A missing file
// yields an unavailable result; a malformed one carries the error description.
// Neither case returns a Go error.
func ParseFile(path string) Result {
	result := Result{Path: path, Coverage: EmptyCoverage()}

	report, err := Load(path)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			logger.Debug("coverage report not found", "path", path)
			return result
		}
		logger.WarnWithIcon("⚠️", "Failed to parse coverage report", "path", path, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Available = true
	result.Coverage = report.Coverage()
	result.Percent = Aggregate(result.Coverage)
	return result
}

// Aggregate returns the mean of the available metric percentages rounded to
// two decimals, or 0 when none are available.
func Aggregate(cov Coverage) float64 {
	values := cov.Available()
	if len(values) == 0 {
		return 0
	}
	return Round2(stat.Mean(values, nil))
}
