// Package coverage reads JaCoCo coverage reports into a single in-memory
// representation and derives per-metric percentages and uncovered methods
// from it. XML reports are traversed structurally; HTML reports go through an
// adapter that normalizes the summary row into the same counters.
package coverage

import (
	"encoding/xml"
	"math"
	"strings"
)

// Metric is the label of a reported coverage metric
type Metric string

const (
	MetricInstructions Metric = "instructions"
	MetricBranches     Metric = "branches"
	MetricLines        Metric = "lines"
	MetricMethods      Metric = "methods"
	MetricClasses      Metric = "classes"
)

// Metrics lists the reported metrics in report column order
var Metrics = []Metric{MetricInstructions, MetricBranches, MetricLines, MetricMethods, MetricClasses}

// JaCoCo counter types
const (
	CounterInstruction = "INSTRUCTION"
	CounterBranch      = "BRANCH"
	CounterLine        = "LINE"
	CounterComplexity  = "COMPLEXITY"
	CounterMethod      = "METHOD"
	CounterClass       = "CLASS"
)

// MetricForCounter maps a JaCoCo counter type onto a reported metric.
// COMPLEXITY and unknown types are not reported.
func MetricForCounter(counterType string) (Metric, bool) {
	switch strings.ToUpper(counterType) {
	case CounterInstruction:
		return MetricInstructions, true
	case CounterBranch:
		return MetricBranches, true
	case CounterLine:
		return MetricLines, true
	case CounterMethod:
		return MetricMethods, true
	case CounterClass:
		return MetricClasses, true
	}
	return "", false
}

// Counter is one covered/missed pair of a given type
type Counter struct {
	Type    string `xml:"type,attr" json:"type"`
	Missed  int    `xml:"missed,attr" json:"missed"`
	Covered int    `xml:"covered,attr" json:"covered"`
}

// Total returns covered+missed
func (c Counter) Total() int {
	return c.Covered + c.Missed
}

// Percent returns covered/(covered+missed)*100 rounded to two decimals, or 0
// when nothing was counted.
func (c Counter) Percent() float64 {
	total := c.Total()
	if total <= 0 {
		return 0
	}
	return Round2(float64(c.Covered) / float64(total) * 100)
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Coverage maps each metric to its percentage; nil means not available
type Coverage map[Metric]*float64

// EmptyCoverage returns the zero-value mapping with every metric unavailable
func EmptyCoverage() Coverage {
	c := make(Coverage, len(Metrics))
	for _, m := range Metrics {
		c[m] = nil
	}
	return c
}

// Value returns the metric percentage and whether it is available
func (c Coverage) Value(m Metric) (float64, bool) {
	p, ok := c[m]
	if !ok || p == nil {
		return 0, false
	}
	return *p, true
}

// Available returns the available percentages in Metrics order
func (c Coverage) Available() []float64 {
	values := make([]float64, 0, len(Metrics))
	for _, m := range Metrics {
		if v, ok := c.Value(m); ok {
			values = append(values, v)
		}
	}
	return values
}

// Report is the canonical representation of a coverage report
type Report struct {
	XMLName  xml.Name  `xml:"report"`
	Name     string    `xml:"name,attr"`
	Groups   []Group   `xml:"group"`
	Packages []Package `xml:"package"`
	Counters []Counter `xml:"counter"`
}

// Group is a JaCoCo report group (multi-module reports); groups may nest
type Group struct {
	Name     string    `xml:"name,attr"`
	Groups   []Group   `xml:"group"`
	Packages []Package `xml:"package"`
	Counters []Counter `xml:"counter"`
}

// Package is a Java package; names are slash separated (com/acme)
type Package struct {
	Name     string    `xml:"name,attr"`
	Classes  []Class   `xml:"class"`
	Counters []Counter `xml:"counter"`
}

// Class is a Java class; names are slash separated (com/acme/Calc)
type Class struct {
	Name       string    `xml:"name,attr"`
	SourceFile string    `xml:"sourcefilename,attr"`
	Methods    []Method  `xml:"method"`
	Counters   []Counter `xml:"counter"`
}

// Method is a single method with its own counters
type Method struct {
	Name     string    `xml:"name,attr"`
	Desc     string    `xml:"desc,attr"`
	Line     int       `xml:"line,attr"`
	Counters []Counter `xml:"counter"`
}

// Counter returns the counter of the given type
func (m Method) Counter(counterType string) (Counter, bool) {
	return findCounter(m.Counters, counterType)
}

func findCounter(counters []Counter, counterType string) (Counter, bool) {
	for _, c := range counters {
		if strings.EqualFold(c.Type, counterType) {
			return c, true
		}
	}
	return Counter{}, false
}

// AllPackages returns every package in document order, including those in groups
func (r *Report) AllPackages() []Package {
	pkgs := append([]Package(nil), r.Packages...)
	for _, g := range r.Groups {
		pkgs = append(pkgs, g.allPackages()...)
	}
	return pkgs
}

func (g Group) allPackages() []Package {
	pkgs := append([]Package(nil), g.Packages...)
	for _, child := range g.Groups {
		pkgs = append(pkgs, child.allPackages()...)
	}
	return pkgs
}

// TotalCounters returns the report-level counters. When the report carries
// none, package-level counters are summed per type.
func (r *Report) TotalCounters() []Counter {
	if len(r.Counters) > 0 {
		return r.Counters
	}

	sums := map[string]*Counter{}
	var order []string
	for _, pkg := range r.AllPackages() {
		for _, c := range pkg.Counters {
			key := strings.ToUpper(c.Type)
			s, ok := sums[key]
			if !ok {
				s = &Counter{Type: key}
				sums[key] = s
				order = append(order, key)
			}
			s.Missed += c.Missed
			s.Covered += c.Covered
		}
	}

	totals := make([]Counter, 0, len(order))
	for _, key := range order {
		totals = append(totals, *sums[key])
	}
	return totals
}

// Coverage derives the metric mapping from the total counters.
// Unknown counter types leave the zero-value mapping unchanged.
func (r *Report) Coverage() Coverage {
	cov := EmptyCoverage()
	for _, c := range r.TotalCounters() {
		m, ok := MetricForCounter(c.Type)
		if !ok {
			continue
		}
		pct := c.Percent()
		cov[m] = &pct
	}
	return cov
}
