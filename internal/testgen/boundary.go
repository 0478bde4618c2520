package testgen

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gnboorse/centipede"
	"github.com/pkg/errors"
)

// publicMethodPattern is a shallow match of `public <type> <name>(<params>)`.
// Multi-line or generic-heavy signatures can be missed or misparsed.
var publicMethodPattern = regexp.MustCompile(`public\s+[\w<>]+\s+(\w+)\s*\(([^)]*)\)`)

// numericMarkers select parameters whose text mentions a numeric type
var numericMarkers = []string{"int", "double", "float", "long"}

// Boundaries are representative literals for a numeric parameter
type Boundaries struct {
	Type      string `json:"type"`
	Min       string `json:"min"`
	BelowZero string `json:"below_zero"`
	Mid       string `json:"mid"`
	AboveZero string `json:"above_zero"`
	Max       string `json:"max"`
}

// ParameterBoundaries ties a plan to its parameter; Boundaries is nil when the
// parameter type has no plan (arrays, unknown types)
type ParameterBoundaries struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Boundaries *Boundaries `json:"boundaries,omitempty"`
}

// BoundaryTest is the boundary skeleton for one method
type BoundaryTest struct {
	Method     string                `json:"method"`
	Template   string                `json:"template"`
	Boundaries []ParameterBoundaries `json:"boundaries,omitempty"`
}

// BoundaryResult lists boundary skeletons for a source file
type BoundaryResult struct {
	File  string         `json:"file"`
	Tests []BoundaryTest `json:"tests"`
	Error string         `json:"error,omitempty"`
}

// BoundaryTests reads a Java source file and emits one boundary skeleton per
// public method that takes a numeric parameter
func BoundaryTests(ctx context.Context, javaFile string) BoundaryResult {
	info, err := os.Stat(javaFile)
	if err != nil || info.IsDir() {
		return BoundaryResult{File: javaFile, Tests: []BoundaryTest{}, Error: fmt.Sprintf("File not found: %s", javaFile)}
	}

	src, err := os.ReadFile(javaFile)
	if err != nil {
		return BoundaryResult{File: javaFile, Tests: []BoundaryTest{}, Error: err.Error()}
	}

	className := strings.TrimSuffix(filepath.Base(javaFile), ".java")
	tests, err := BoundaryTestsFromSource(ctx, className, string(src))
	result := BoundaryResult{File: javaFile, Tests: tests}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// BoundaryTestsFromSource is BoundaryTests over already loaded source
func BoundaryTestsFromSource(ctx context.Context, className, src string) ([]BoundaryTest, error) {
	tests := []BoundaryTest{}
	plans := make(map[string]*Boundaries)

	for _, match := range publicMethodPattern.FindAllStringSubmatch(src, -1) {
		method, params := match[1], match[2]

		var numeric []ParameterBoundaries
		for _, param := range strings.Split(params, ",") {
			fields := strings.Fields(param)
			if len(fields) == 0 || !mentionsNumeric(param) {
				continue
			}
			pb := ParameterBoundaries{
				Name: fields[len(fields)-1],
				Type: strings.Join(fields[:len(fields)-1], " "),
			}
			if kind, ok := scalarKind(fields[:len(fields)-1]); ok {
				plan, cached := plans[kind]
				if !cached {
					var err error
					plan, err = PlanBoundaries(ctx, kind)
					if err != nil {
						return tests, err
					}
					plans[kind] = plan
				}
				pb.Boundaries = plan
			}
			numeric = append(numeric, pb)
		}
		if len(numeric) == 0 {
			continue
		}

		tests = append(tests, BoundaryTest{
			Method:     method,
			Template:   boundaryTemplate(className, method, numeric),
			Boundaries: numeric,
		})
	}

	return tests, nil
}

func boundaryTemplate(className, method string, params []ParameterBoundaries) string {
	lines := []string{fmt.Sprintf("@Test\nvoid test_%s_boundaries() {", method)}
	for _, p := range params {
		comment := fmt.Sprintf("    // Boundary tests for %s", p.Name)
		if b := p.Boundaries; b != nil {
			comment += fmt.Sprintf(" (%s: MIN=%s, MID=%s, MAX=%s)", b.Type, b.Min, b.Mid, b.Max)
		}
		lines = append(lines, comment)
		for _, suffix := range []string{"_MIN", "_MID", "_MAX"} {
			lines = append(lines, fmt.Sprintf("    new %s().%s(%s%s);", className, method, p.Name, suffix))
		}
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func mentionsNumeric(param string) bool {
	for _, marker := range numericMarkers {
		if strings.Contains(param, marker) {
			return true
		}
	}
	return false
}

// scalarKind maps the type tokens of a parameter to a planned numeric kind
func scalarKind(typeTokens []string) (string, bool) {
	for _, tok := range typeTokens {
		if tok == "final" || strings.HasPrefix(tok, "@") {
			continue
		}
		switch tok {
		case "int", "Integer", "short", "Short", "byte", "Byte":
			return "int", true
		case "long", "Long":
			return "long", true
		case "double", "Double":
			return "double", true
		case "float", "Float":
			return "float", true
		}
		return "", false
	}
	return "", false
}

// Candidate is a Java literal together with its numeric value
type Candidate struct {
	Literal string
	Value   float64
}

// candidatePools lists the literals each numeric kind draws its plan from.
// Order does not matter; the solver places them by value.
var candidatePools = map[string][]Candidate{
	"int": {
		{"0", 0}, {"1", 1}, {"-1", -1},
		{"Integer.MIN_VALUE", math.MinInt32}, {"Integer.MAX_VALUE", math.MaxInt32},
	},
	"long": {
		{"0L", 0}, {"1L", 1}, {"-1L", -1},
		{"Long.MIN_VALUE", math.MinInt64}, {"Long.MAX_VALUE", math.MaxInt64},
	},
	"double": {
		{"0.0", 0}, {"1.0", 1}, {"-1.0", -1}, {"Double.MIN_VALUE", math.SmallestNonzeroFloat64},
		{"-Double.MAX_VALUE", -math.MaxFloat64}, {"Double.MAX_VALUE", math.MaxFloat64},
	},
	"float": {
		{"0.0f", 0}, {"1.0f", 1}, {"-1.0f", -1}, {"Float.MIN_VALUE", math.SmallestNonzeroFloat32},
		{"-Float.MAX_VALUE", -math.MaxFloat32}, {"Float.MAX_VALUE", math.MaxFloat32},
	},
}

const (
	varMin       centipede.VariableName = "MIN"
	varBelowZero centipede.VariableName = "BELOW_ZERO"
	varMid       centipede.VariableName = "MID"
	varAboveZero centipede.VariableName = "ABOVE_ZERO"
	varMax       centipede.VariableName = "MAX"
)

// PlanBoundaries picks representative literals for a numeric kind from its
// built-in candidate pool
func PlanBoundaries(ctx context.Context, kind string) (*Boundaries, error) {
	pool, ok := candidatePools[kind]
	if !ok {
		return nil, errors.Errorf("no boundary literals for type %q", kind)
	}
	return SolveBoundaries(ctx, kind, pool)
}

// SolveBoundaries assigns one candidate to each equivalence class:
// the pool minimum, the negative closest to zero, zero, the positive closest
// to zero and the pool maximum, ordered MIN < BELOW_ZERO < MID < ABOVE_ZERO < MAX.
// It fails when the pool cannot fill every class.
func SolveBoundaries(ctx context.Context, kind string, pool []Candidate) (*Boundaries, error) {
	if len(pool) == 0 {
		return nil, errors.Errorf("no boundary literals for type %q", kind)
	}

	domain := make(centipede.Domain[int], len(pool))
	for i := range pool {
		domain[i] = i
	}
	names := []centipede.VariableName{varMin, varBelowZero, varMid, varAboveZero, varMax}
	vars := make(centipede.Variables[int], 0, len(names))
	for _, name := range names {
		vars = append(vars, centipede.NewVariable(name, domain))
	}

	value := func(i int) float64 { return pool[i].Value }
	closestTo := func(v float64, sign int) bool {
		for _, c := range pool {
			if (sign < 0 && c.Value < 0 && c.Value > v) || (sign > 0 && c.Value > 0 && c.Value < v) {
				return false
			}
		}
		return true
	}

	constraints := centipede.Constraints[int]{
		unary(varMin, func(i int) bool { return slices.IndexFunc(pool, func(c Candidate) bool { return c.Value < value(i) }) < 0 }),
		unary(varMax, func(i int) bool { return slices.IndexFunc(pool, func(c Candidate) bool { return c.Value > value(i) }) < 0 }),
		unary(varMid, func(i int) bool { return value(i) == 0 }),
		unary(varBelowZero, func(i int) bool { return value(i) < 0 && closestTo(value(i), -1) }),
		unary(varAboveZero, func(i int) bool { return value(i) > 0 && closestTo(value(i), 1) }),
	}
	constraints = append(constraints, centipede.AllUnique[int](names...)...)
	for i := 0; i+1 < len(names); i++ {
		constraints = append(constraints, lessThan(pool, names[i], names[i+1]))
	}

	solver := centipede.NewBackTrackingCSPSolver(vars, constraints)
	solved, err := func() (solved bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				solved = false
				err = errors.Errorf("boundary solver panic: %v", r)
			}
		}()
		return solver.Solve(ctx)
	}()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to plan boundaries for %s", kind)
	}
	if !solved {
		return nil, errors.Errorf("no boundary plan for %s", kind)
	}

	solution := solver.State.Vars
	pick := func(name centipede.VariableName) string {
		return pool[solution.Find(name).Value].Literal
	}
	logger.Debug("Planned boundaries", "type", kind)
	return &Boundaries{
		Type:      kind,
		Min:       pick(varMin),
		BelowZero: pick(varBelowZero),
		Mid:       pick(varMid),
		AboveZero: pick(varAboveZero),
		Max:       pick(varMax),
	}, nil
}

func unary(name centipede.VariableName, accept func(int) bool) centipede.Constraint[int] {
	return centipede.Constraint[int]{
		Vars: centipede.VariableNames{name},
		ConstraintFunction: func(variables *centipede.Variables[int]) bool {
			if variables.Find(name).Empty {
				return true
			}
			return accept(variables.Find(name).Value)
		},
	}
}

// lessThan compares the candidate values behind two index variables
func lessThan(pool []Candidate, a, b centipede.VariableName) centipede.Constraint[int] {
	return centipede.Constraint[int]{
		Vars: centipede.VariableNames{a, b},
		ConstraintFunction: func(variables *centipede.Variables[int]) bool {
			if variables.Find(a).Empty || variables.Find(b).Empty {
				return true
			}
			return pool[variables.Find(a).Value].Value < pool[variables.Find(b).Value].Value
		},
	}
}
