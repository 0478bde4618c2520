package coverage

import (
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// Gate is a compiled boolean expression over the metric names,
// e.g. "instructions >= 80 && branches >= 50"
type Gate struct {
	source  string
	program *vm.Program
}

// gateEnv exposes every metric; unavailable ones evaluate as 0
func gateEnv(cov Coverage) map[string]any {
	env := make(map[string]any, len(Metrics)+1)
	for _, m := range Metrics {
		v, _ := cov.Value(m)
		env[string(m)] = v
	}
	env["overall"] = Aggregate(cov)
	return env
}

// CompileGate compiles a gate expression; an empty expression yields a nil gate
func CompileGate(source string) (*Gate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(gateEnv(EmptyCoverage())), expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid coverage gate %q", source)
	}
	return &Gate{source: source, program: program}, nil
}

// String returns the gate source
func (g *Gate) String() string {
	if g == nil {
		return ""
	}
	return g.source
}

// Evaluate reports whether the coverage satisfies the gate. A nil gate always passes.
func (g *Gate) Evaluate(cov Coverage) (bool, error) {
	if g == nil {
		return true, nil
	}
	out, err := expr.Run(g.program, gateEnv(cov))
	if err != nil {
		return false, errors.Wrapf(err, "failed to evaluate coverage gate %q", g.source)
	}
	passed, ok := out.(bool)
	if !ok {
		return false, errors.Errorf("coverage gate %q did not produce a boolean", g.source)
	}
	return passed, nil
}
