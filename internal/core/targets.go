package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TargetOverrides holds user-chosen targets keyed by category.
type TargetOverrides map[Category]decimal.Decimal

var (
	ErrTargetOutOfRange = errors.New("target must be between 0 and 1")
	ErrTargetsSum       = errors.New("targets must add up to exactly 100%")
	ErrUnknownCategory  = errors.New("unknown or non-editable category")
	ErrMissingTarget    = errors.New("missing target")
)

var hundred = decimal.NewFromInt(100)

// Validate checks a complete target edit. Every editable category must be
// present and the percentages, rounded to integers, must sum to 100.
func (o TargetOverrides) Validate() error {
	editable := make(map[Category]bool)
	for _, c := range EditableCategories() {
		editable[c] = true
	}
	for c := range o {
		if !editable[c] {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, c)
		}
	}
	sum := decimal.Zero
	for _, c := range EditableCategories() {
		v, ok := o[c]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingTarget, c)
		}
		if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %s=%s", ErrTargetOutOfRange, c, v.String())
		}
		sum = sum.Add(v)
	}
	if !sum.Mul(hundred).Round(0).Equal(hundred) {
		return fmt.Errorf("%w: got %s%%", ErrTargetsSum, sum.Mul(hundred).StringFixed(2))
	}
	return nil
}

// Clone returns an independent copy.
func (o TargetOverrides) Clone() TargetOverrides {
	if o == nil {
		return nil
	}
	out := make(TargetOverrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
