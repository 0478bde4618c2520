package coverage

// UncoveredMethod identifies a method whose instruction counter has zero
// covered and a positive missed count. Error is only set on the single entry
// FindUncovered returns when the report cannot be traversed.
type UncoveredMethod struct {
	Package string `json:"package,omitempty"`
	Class   string `json:"class,omitempty"`
	Method  string `json:"method,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UncoveredMethods walks package, class and method in document order and
// returns one entry per method with covered == 0 and missed > 0.
func (r *Report) UncoveredMethods() []UncoveredMethod {
	var uncovered []UncoveredMethod
	for _, pkg := range r.AllPackages() {
		for _, class := range pkg.Classes {
			for _, method := range class.Methods {
				instr, ok := method.Counter(CounterInstruction)
				if !ok {
					continue
				}
				if instr.Covered == 0 && instr.Missed > 0 {
					uncovered = append(uncovered, UncoveredMethod{
						Package: pkg.Name,
						Class:   class.Name,
						Method:  method.Name,
					})
				}
			}
		}
	}
	return uncovered
}

// FindUncovered loads the report at path and lists its uncovered methods.
// When the report cannot be read or traversed the result is a single entry
// carrying the error description.
func FindUncovered(path string) []UncoveredMethod {
	report, err := Load(path)
	if err != nil {
		return []UncoveredMethod{{Error: err.Error()}}
	}
	return report.UncoveredMethods()
}
