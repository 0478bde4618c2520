package coverage

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// ErrSummaryRowNotFound is returned when an HTML report has no <tfoot> total row
var ErrSummaryRowNotFound = errors.New("JaCoCo tfoot not found in report")

// "1,234 of 5,678" in the bar columns: missed of total
var barPattern = regexp.MustCompile(`([0-9][0-9,.\s\x{00a0}]*)\s+of\s+([0-9][0-9,.\s\x{00a0}]*)`)

// column labels in the index.html header row
var (
	barColumns = map[string]string{
		"missed instructions": CounterInstruction,
		"missed branches":     CounterBranch,
	}
	totalColumns = map[string]string{
		"cxty":    CounterComplexity,
		"lines":   CounterLine,
		"methods": CounterMethod,
		"classes": CounterClass,
	}
	// default column layout when the header row is missing
	defaultColumns = []string{"element", "missed instructions", "cov.", "missed branches", "cov.",
		"missed", "cxty", "missed", "lines", "missed", "methods", "missed", "classes"}
)

// ParseHTML adapts a JaCoCo index.html report into the canonical Report.
// Only the summary row is read, so the result has report-level counters and no
// packages.
func ParseHTML(r io.Reader) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse JaCoCo HTML")
	}

	totalRow := doc.Find("tfoot tr").First()
	if totalRow.Length() == 0 {
		return nil, ErrSummaryRowNotFound
	}

	headers := headerLabels(doc)
	cells := cellTexts(totalRow.Find("td"))

	report := &Report{Name: strings.TrimSpace(doc.Find("h1").First().Text())}
	for i, label := range headers {
		if i >= len(cells) {
			break
		}
		if counterType, ok := barColumns[label]; ok {
			if c, ok := parseBarCell(counterType, cells[i]); ok {
				report.Counters = append(report.Counters, c)
			}
			continue
		}
		// Cxty/Lines/Methods/Classes hold the total; the column before holds missed
		if counterType, ok := totalColumns[label]; ok && i > 0 {
			total, okTotal := parseCount(cells[i])
			missed, okMissed := parseCount(cells[i-1])
			if okTotal && okMissed && missed <= total {
				report.Counters = append(report.Counters, Counter{Type: counterType, Missed: missed, Covered: total - missed})
			}
		}
	}

	return report, nil
}

func headerLabels(doc *goquery.Document) []string {
	head := doc.Find("thead tr").First().Find("td, th")
	if head.Length() == 0 {
		return defaultColumns
	}
	labels := make([]string, 0, head.Length())
	head.Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.ToLower(strings.TrimSpace(s.Text())))
	})
	return labels
}

func cellTexts(sel *goquery.Selection) []string {
	texts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(s.Text()))
	})
	return texts
}

func parseBarCell(counterType, text string) (Counter, bool) {
	m := barPattern.FindStringSubmatch(text)
	if m == nil {
		return Counter{}, false
	}
	missed, ok1 := parseCount(m[1])
	total, ok2 := parseCount(m[2])
	if !ok1 || !ok2 || missed > total {
		return Counter{}, false
	}
	return Counter{Type: counterType, Missed: missed, Covered: total - missed}, true
}

// parseCount reads a locale-formatted integer ("1,234", "1.234", "1 234")
func parseCount(text string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
