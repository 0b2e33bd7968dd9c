package recipe

import (
	"github.com/matzehuels/relief/pkg/errors"
)

// Validate checks the recipe's structure and every step's parameters.
//
// Grid references are resolved in order: a step may read the declared
// inputs and the names stored by earlier steps through As. Parameter
// checks return the same codes the transforms would, so a recipe that
// validates cannot fail on a weight or range at run time.
func (r *Recipe) Validate() error {
	if r.Name != "" {
		if err := errors.ValidateName(r.Name); err != nil {
			return errors.New(errors.ErrCodeInvalidRecipe, "recipe name: %s", errors.UserMessage(err))
		}
	}
	if len(r.Inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidRecipe, "recipe declares no inputs")
	}
	if len(r.Steps) == 0 {
		return errors.New(errors.ErrCodeInvalidRecipe, "recipe has no steps")
	}

	known := make(map[string]bool, len(r.Inputs))
	for _, in := range r.Inputs {
		if err := errors.ValidateName(in); err != nil {
			return errors.New(errors.ErrCodeInvalidRecipe, "input: %s", errors.UserMessage(err))
		}
		if known[in] {
			return errors.New(errors.ErrCodeInvalidRecipe, "input %q declared twice", in)
		}
		known[in] = true
	}

	for i, s := range r.Steps {
		if err := r.validateStep(s, known); err != nil {
			return WrapStep(i, s.Op, err)
		}
		if s.As != "" {
			known[s.As] = true
		}
	}
	return nil
}

func (r *Recipe) validateStep(s Step, known map[string]bool) error {
	op, ok := Lookup(s.Op)
	if !ok {
		return errors.New(errors.ErrCodeInvalidOperation, "unknown operation %q", s.Op)
	}
	if s.Source != "" && !known[s.Source] {
		return errors.New(errors.ErrCodeInvalidRecipe, "source %q is not an input or an earlier output", s.Source)
	}
	switch {
	case op.Arity == 2 && s.With == "":
		return errors.New(errors.ErrCodeInvalidRecipe, "with is required")
	case op.Arity == 2 && !known[s.With]:
		return errors.New(errors.ErrCodeInvalidRecipe, "with %q is not an input or an earlier output", s.With)
	case op.Arity == 1 && s.With != "":
		return errors.New(errors.ErrCodeInvalidRecipe, "with is only valid for two-grid operations")
	}
	if err := op.Check(s); err != nil {
		return err
	}
	if s.As != "" {
		if err := errors.ValidateName(s.As); err != nil {
			return errors.New(errors.ErrCodeInvalidRecipe, "as: %s", errors.UserMessage(err))
		}
		if known[s.As] {
			return errors.New(errors.ErrCodeInvalidRecipe, "as %q redefines an existing grid", s.As)
		}
	}
	return nil
}

// Source returns the grid name step i reads, or "" when it reads the
// previous step's output. Step 0 defaults to the first declared input.
func (r *Recipe) Source(i int) string {
	if s := r.Steps[i].Source; s != "" {
		return s
	}
	if i == 0 {
		return r.Inputs[0]
	}
	return ""
}
