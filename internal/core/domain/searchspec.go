package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConstraintOp identifies how a hard constraint tests a field.
type ConstraintOp string

// Constraint operators.
const (
	// OpMax is a numeric upper bound: value <= bound.
	OpMax ConstraintOp = "max"

	// OpMin is a numeric lower bound: value >= bound.
	OpMin ConstraintOp = "min"

	// OpRequire requires a boolean field to be true.
	OpRequire ConstraintOp = "require"

	// OpOneOf requires a string field to be one of Values.
	OpOneOf ConstraintOp = "one_of"

	// OpNoneOf requires a string field to be none of Values.
	OpNoneOf ConstraintOp = "none_of"
)

// IsValid returns true if the operator is recognised.
func (op ConstraintOp) IsValid() bool {
	switch op {
	case OpMax, OpMin, OpRequire, OpOneOf, OpNoneOf:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether the operator measures a fractional overshoot.
func (op ConstraintOp) IsNumeric() bool {
	return op == OpMax || op == OpMin
}

// Constraint is one hard requirement of a SearchSpec.
type Constraint struct {
	// Name identifies the constraint in reasons, e.g. "max_price".
	Name string `json:"name"`

	// Field is the listing field (or attribute) tested.
	Field string `json:"field"`

	// Op is the test applied.
	Op ConstraintOp `json:"op"`

	// Bound is the numeric bound for OpMax and OpMin.
	Bound Value `json:"bound"`

	// Values is the allowed or forbidden set for OpOneOf and OpNoneOf.
	Values []string `json:"values,omitempty"`
}

// MaxConstraint builds a numeric upper bound named max_<field>.
func MaxConstraint(field string, bound decimal.Decimal) Constraint {
	return Constraint{Name: "max_" + field, Field: field, Op: OpMax, Bound: NumberValue(bound)}
}

// MinConstraint builds a numeric lower bound named min_<field>.
func MinConstraint(field string, bound decimal.Decimal) Constraint {
	return Constraint{Name: "min_" + field, Field: field, Op: OpMin, Bound: NumberValue(bound)}
}

// RequireConstraint requires field to be true.
func RequireConstraint(field string) Constraint {
	return Constraint{Name: "require_" + field, Field: field, Op: OpRequire}
}

// OneOfConstraint requires field to be one of values.
func OneOfConstraint(field string, values ...string) Constraint {
	return Constraint{Name: field + "_in", Field: field, Op: OpOneOf, Values: values}
}

// NoneOfConstraint forbids field from being any of values.
func NoneOfConstraint(field string, values ...string) Constraint {
	return Constraint{Name: field + "_not_in", Field: field, Op: OpNoneOf, Values: values}
}

// DefaultName returns the conventional name for the constraint.
func (c *Constraint) DefaultName() string {
	switch c.Op {
	case OpMax:
		return "max_" + c.Field
	case OpMin:
		return "min_" + c.Field
	case OpRequire:
		return "require_" + c.Field
	case OpOneOf:
		return c.Field + "_in"
	case OpNoneOf:
		return c.Field + "_not_in"
	default:
		return c.Field
	}
}

// Validate checks the constraint is well formed. Numeric bounds must be
// strictly positive so that the fractional overshoot is always defined.
func (c *Constraint) Validate() error {
	if strings.TrimSpace(c.Field) == "" {
		return fmt.Errorf("constraint field is required: %w", ErrInvalidArgument)
	}
	if !c.Op.IsValid() {
		return fmt.Errorf("constraint %s: unknown op %q: %w", c.Field, c.Op, ErrInvalidArgument)
	}
	switch c.Op {
	case OpMax, OpMin:
		bound, ok := c.Bound.AsNumber()
		if !ok {
			return fmt.Errorf("constraint %s: numeric bound required: %w", c.DefaultName(), ErrInvalidArgument)
		}
		if !bound.IsPositive() {
			return fmt.Errorf("constraint %s: bound must be > 0: %w", c.DefaultName(), ErrInvalidArgument)
		}
	case OpOneOf, OpNoneOf:
		if len(c.Values) == 0 {
			return fmt.Errorf("constraint %s: values required: %w", c.DefaultName(), ErrInvalidArgument)
		}
	}
	return nil
}

// Evaluation is the outcome of testing one constraint against a listing.
type Evaluation struct {
	// Passed is true when the listing satisfies the constraint.
	Passed bool

	// Field is the tested field, when the listing has one.
	Field Field

	// HasField is false when the listing lacks the field entirely.
	HasField bool

	// Measurable is true when a failure has a defined overshoot.
	Measurable bool

	// Actual is the numeric value tested, when measurable.
	Actual decimal.Decimal

	// Overshoot is the non-negative fractional miss, when measurable.
	Overshoot decimal.Decimal
}

// Evaluate tests the constraint against a listing's current values.
//
// A numeric constraint over an absent or null field fails without a
// measurable overshoot. A numeric constraint over a non-numeric value is an
// error: overshoot is undefined for that variant.
func (c *Constraint) Evaluate(l *Listing) (Evaluation, error) {
	f, ok := l.Attribute(c.Field)
	ev := Evaluation{Field: f, HasField: ok}

	switch c.Op {
	case OpMax, OpMin:
		if !ok || f.Value.IsNull() {
			return ev, nil
		}
		actual, isNum := f.Value.AsNumber()
		if !isNum {
			return ev, fmt.Errorf("constraint %s targets %s field %q on listing %s: %w",
				c.Name, f.Value.Kind(), c.Field, l.ID, ErrInvalidArgument)
		}
		bound, _ := c.Bound.AsNumber()
		ev.Actual = actual
		ev.Measurable = true
		if c.Op == OpMax {
			ev.Passed = actual.LessThanOrEqual(bound)
			ev.Overshoot = actual.Sub(bound).Div(bound)
		} else {
			ev.Passed = actual.GreaterThanOrEqual(bound)
			ev.Overshoot = bound.Sub(actual).Div(bound)
		}
		if ev.Passed {
			ev.Overshoot = decimal.Zero
			ev.Measurable = false
		}
		return ev, nil
	case OpRequire:
		b, isBool := f.Value.AsBool()
		ev.Passed = ok && isBool && b
		return ev, nil
	case OpOneOf, OpNoneOf:
		s, isStr := f.Value.AsString()
		member := ok && isStr && containsFold(c.Values, s)
		if c.Op == OpOneOf {
			ev.Passed = member
		} else {
			ev.Passed = !member
		}
		return ev, nil
	default:
		return ev, fmt.Errorf("constraint %s: unknown op %q: %w", c.Name, c.Op, ErrInvalidArgument)
	}
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

// SearchSpec is a set of hard constraints used for near-miss evaluation.
type SearchSpec struct {
	// ID is the unique identifier for the spec (UUID).
	ID string `json:"search_spec_id"`

	// Name is an optional label.
	Name string `json:"name,omitempty"`

	// RawPrompt is the free-text request the spec was parsed from.
	RawPrompt string `json:"raw_prompt,omitempty"`

	// Hard lists the constraints a full match satisfies.
	Hard []Constraint `json:"hard"`

	// CreatedAt is when the spec was stored.
	CreatedAt time.Time `json:"created_at"`
}

// Normalize fills in default constraint names.
func (s *SearchSpec) Normalize() {
	if s.Hard == nil {
		s.Hard = []Constraint{}
	}
	for i := range s.Hard {
		if s.Hard[i].Name == "" {
			s.Hard[i].Name = s.Hard[i].DefaultName()
		}
	}
}

// Validate checks every constraint and that constraint names are unique.
func (s *SearchSpec) Validate() error {
	seen := make(map[string]struct{}, len(s.Hard))
	for i := range s.Hard {
		c := &s.Hard[i]
		if err := c.Validate(); err != nil {
			return err
		}
		name := c.Name
		if name == "" {
			name = c.DefaultName()
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate constraint %q: %w", name, ErrInvalidArgument)
		}
		seen[name] = struct{}{}
	}
	return nil
}
