// Package recipe defines named, ordered transform pipelines over heightmaps.
//
// A recipe declares the grids it reads and a list of steps. Each step applies
// one operation from the registry (see [Operations]) to the previous step's
// output, or to a grid named by Source. Merge additionally reads the grid
// named by With. A step's output can be stored under a name with As so that
// later steps can refer back to it.
//
//	name = "island"
//	inputs = ["base", "detail"]
//
//	[[steps]]
//	op = "map"
//	min = 0.0
//	max = 1.0
//
//	[[steps]]
//	op = "merge"
//	with = "detail"
//	weight = 0.7
//
//	[[steps]]
//	op = "circular-falloff-absolute"
//	strength = 1.2
//	as = "island"
//
// Recipes are written in TOML or YAML; the API accepts the same structure as
// JSON. Parsing validates the whole recipe before any grid is touched, so a
// bad parameter in the last step fails fast.
package recipe

import (
	"github.com/matzehuels/relief/pkg/errors"
)

// Recipe is an ordered list of transform steps.
type Recipe struct {
	Name   string   `toml:"name" yaml:"name" json:"name,omitempty"`
	Inputs []string `toml:"inputs" yaml:"inputs" json:"inputs"`
	Steps  []Step   `toml:"steps" yaml:"steps" json:"steps"`
}

// Step is one operation in a recipe. Parameters left unset take the
// defaults listed by [Operations].
type Step struct {
	Op     string `toml:"op" yaml:"op" json:"op"`
	Source string `toml:"source" yaml:"source" json:"source,omitempty"`
	With   string `toml:"with" yaml:"with" json:"with,omitempty"`
	As     string `toml:"as" yaml:"as" json:"as,omitempty"`

	Weight   *float32 `toml:"weight" yaml:"weight" json:"weight,omitempty"`
	Min      *float32 `toml:"min" yaml:"min" json:"min,omitempty"`
	Max      *float32 `toml:"max" yaml:"max" json:"max,omitempty"`
	Power    *float32 `toml:"power" yaml:"power" json:"power,omitempty"`
	Strength *float32 `toml:"strength" yaml:"strength" json:"strength,omitempty"`
	Offset   *int     `toml:"offset" yaml:"offset" json:"offset,omitempty"`
}

// Parameter names and their defaults.
const (
	ParamWeight   = "weight"
	ParamMin      = "min"
	ParamMax      = "max"
	ParamPower    = "power"
	ParamStrength = "strength"
	ParamOffset   = "offset"
)

var defaults = map[string]float64{
	ParamWeight:   0.5,
	ParamMin:      0,
	ParamMax:      1,
	ParamPower:    1,
	ParamStrength: 1,
	ParamOffset:   0,
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (s Step) weight() float32   { return valueOr(s.Weight, float32(defaults[ParamWeight])) }
func (s Step) min() float32      { return valueOr(s.Min, float32(defaults[ParamMin])) }
func (s Step) max() float32      { return valueOr(s.Max, float32(defaults[ParamMax])) }
func (s Step) power() float32    { return valueOr(s.Power, float32(defaults[ParamPower])) }
func (s Step) strength() float32 { return valueOr(s.Strength, float32(defaults[ParamStrength])) }
func (s Step) offset() int       { return valueOr(s.Offset, int(defaults[ParamOffset])) }

// Param returns the effective value of a named parameter, falling back to
// its default. Unknown names return 0 and false.
func (s Step) Param(name string) (float64, bool) {
	switch name {
	case ParamWeight:
		return float64(s.weight()), true
	case ParamMin:
		return float64(s.min()), true
	case ParamMax:
		return float64(s.max()), true
	case ParamPower:
		return float64(s.power()), true
	case ParamStrength:
		return float64(s.strength()), true
	case ParamOffset:
		return float64(s.offset()), true
	}
	return 0, false
}

// SetParam sets a named parameter. Offset is truncated to an integer.
func (s *Step) SetParam(name string, v float64) error {
	f := float32(v)
	switch name {
	case ParamWeight:
		s.Weight = &f
	case ParamMin:
		s.Min = &f
	case ParamMax:
		s.Max = &f
	case ParamPower:
		s.Power = &f
	case ParamStrength:
		s.Strength = &f
	case ParamOffset:
		n := int(v)
		s.Offset = &n
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown parameter %q", name)
	}
	return nil
}

// explicitParams lists the parameters set on the step, in declaration order.
func (s Step) explicitParams() []string {
	var names []string
	if s.Weight != nil {
		names = append(names, ParamWeight)
	}
	if s.Min != nil {
		names = append(names, ParamMin)
	}
	if s.Max != nil {
		names = append(names, ParamMax)
	}
	if s.Power != nil {
		names = append(names, ParamPower)
	}
	if s.Strength != nil {
		names = append(names, ParamStrength)
	}
	if s.Offset != nil {
		names = append(names, ParamOffset)
	}
	return names
}

// NewStep builds a step for op from a parameter map, as supplied by the CLI
// flags or an API request. Parameters the operation does not take are
// rejected with INVALID_INPUT.
func NewStep(op string, params map[string]float64) (Step, error) {
	o, ok := Lookup(op)
	if !ok {
		return Step{}, errors.New(errors.ErrCodeInvalidOperation, "unknown operation %q", op)
	}
	s := Step{Op: op}
	for name, v := range params {
		if !o.takes(name) {
			return Step{}, errors.New(errors.ErrCodeInvalidInput,
				"operation %s does not take parameter %q", op, name)
		}
		if err := s.SetParam(name, v); err != nil {
			return Step{}, err
		}
	}
	return s, nil
}

// WrapStep prefixes err with the step position and operation, keeping its
// error code so callers can still classify it.
func WrapStep(index int, op string, err error) error {
	return errors.Prefix(err, errors.ErrCodeInternal, "step %d (%s)", index, op)
}
