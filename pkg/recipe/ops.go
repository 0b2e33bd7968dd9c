package recipe

import (
	"strconv"
	"strings"

	"github.com/matzehuels/relief/pkg/errors"
	"github.com/matzehuels/relief/pkg/heightmap"
	"github.com/matzehuels/relief/pkg/heightmap/transform"
)

// Param describes one operation parameter.
type Param struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
}

// Operation is a registered transform. Arity is the number of grids the
// operation reads: 2 for merge, 1 for everything else.
type Operation struct {
	Name        string  `json:"name"`
	Arity       int     `json:"arity"`
	Params      []Param `json:"params"`
	Description string  `json:"description"`

	check func(Step) error
	apply func(s Step, a, b *heightmap.Grid) (*heightmap.Grid, error)
}

func params(names ...string) []Param {
	ps := make([]Param, len(names))
	for i, n := range names {
		ps[i] = Param{Name: n, Default: defaults[n]}
	}
	return ps
}

func unary(fn func(Step, *heightmap.Grid) *heightmap.Grid) func(Step, *heightmap.Grid, *heightmap.Grid) (*heightmap.Grid, error) {
	return func(s Step, a, _ *heightmap.Grid) (*heightmap.Grid, error) {
		return fn(s, a), nil
	}
}

var registry = []Operation{
	{
		Name:        transform.OpMerge,
		Arity:       2,
		Params:      params(ParamWeight),
		Description: "interpolate two grids: a*weight + b*(1-weight)",
		check:       func(s Step) error { return errors.ValidateWeight(s.weight()) },
		apply: func(s Step, a, b *heightmap.Grid) (*heightmap.Grid, error) {
			return transform.Merge(a, b, s.weight())
		},
	},
	{
		Name:        transform.OpMap,
		Arity:       1,
		Params:      params(ParamMin, ParamMax),
		Description: "rescale values linearly onto [min, max]",
		check:       func(s Step) error { return errors.ValidateTargetRange(s.min(), s.max()) },
		apply: func(s Step, a, _ *heightmap.Grid) (*heightmap.Grid, error) {
			return transform.Map(a, s.min(), s.max())
		},
	},
	{
		Name:        transform.OpCurve,
		Arity:       1,
		Params:      params(ParamPower),
		Description: "raise every value to power",
		apply: unary(func(s Step, g *heightmap.Grid) *heightmap.Grid {
			return transform.Curve(g, s.power())
		}),
	},
	{
		Name:        transform.OpRidge,
		Arity:       1,
		Description: "fold values around the midpoint so both extremes become valleys",
		apply: unary(func(_ Step, g *heightmap.Grid) *heightmap.Grid {
			return transform.Ridge(g)
		}),
	},
	{
		Name:        transform.OpCircularFalloffPercentile,
		Arity:       1,
		Params:      params(ParamStrength),
		Description: "scale values by negated distance from the center",
		apply: unary(func(s Step, g *heightmap.Grid) *heightmap.Grid {
			return transform.CircularFalloffPercentile(g, s.strength())
		}),
	},
	{
		Name:        transform.OpCircularFalloffAbsolute,
		Arity:       1,
		Params:      params(ParamStrength),
		Description: "lower values by distance from the center, floored at the grid minimum",
		apply: unary(func(s Step, g *heightmap.Grid) *heightmap.Grid {
			return transform.CircularFalloffAbsolute(g, s.strength())
		}),
	},
	{
		Name:        transform.OpVerticalFalloffPercentile,
		Arity:       1,
		Params:      params(ParamOffset),
		Description: "replace values with the row distance from the middle row",
		apply: unary(func(s Step, g *heightmap.Grid) *heightmap.Grid {
			return transform.VerticalFalloffPercentile(g, s.offset())
		}),
	},
}

var byName = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, op := range registry {
		m[op.Name] = i
	}
	return m
}()

// Lookup returns the operation registered under name.
func Lookup(name string) (Operation, bool) {
	i, ok := byName[name]
	if !ok {
		return Operation{}, false
	}
	return registry[i], true
}

// Operations returns every registered operation in a stable order.
func Operations() []Operation {
	ops := make([]Operation, len(registry))
	copy(ops, registry)
	return ops
}

func (o Operation) takes(param string) bool {
	for _, p := range o.Params {
		if p.Name == param {
			return true
		}
	}
	return false
}

// Check validates the step's parameters without touching any grid.
func (o Operation) Check(s Step) error {
	for _, name := range s.explicitParams() {
		if !o.takes(name) {
			return errors.New(errors.ErrCodeInvalidRecipe, "operation %s does not take parameter %q", o.Name, name)
		}
	}
	if o.check == nil {
		return nil
	}
	return o.check(s)
}

// Apply runs the operation. b is the second grid for merge and is ignored
// by single-grid operations.
func (o Operation) Apply(s Step, a, b *heightmap.Grid) (*heightmap.Grid, error) {
	if a == nil || (o.Arity == 2 && b == nil) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s needs %d grid(s)", o.Name, o.Arity)
	}
	return o.apply(s, a, b)
}

// Key returns a stable fingerprint of the operation and its effective
// parameters. Steps that differ only in grid names share a key; the grids
// themselves are part of the cache key elsewhere.
func (s Step) Key() string {
	var b strings.Builder
	b.WriteString(s.Op)
	o, ok := Lookup(s.Op)
	if !ok {
		return b.String()
	}
	for _, p := range o.Params {
		v, _ := s.Param(p.Name)
		b.WriteByte(';')
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 32))
	}
	return b.String()
}
