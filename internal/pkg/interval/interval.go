package interval

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrOverlapping = errors.New("interval overlaps an existing active interval")
	ErrEmptyRange  = errors.New("interval max must be greater than min")
	ErrNegativeMin = errors.New("interval min must be non-negative")
)

// Range is a half-open interval [Min, Max). A nil Max means unbounded.
type Range struct {
	Min decimal.Decimal
	Max *decimal.Decimal
}

// Ranged is anything that occupies a Range, e.g. a tax band or a commission tier.
type Ranged interface {
	Span() Range
}

func (r Range) Span() Range { return r }

func (r Range) Validate() error {
	if r.Min.IsNegative() {
		return ErrNegativeMin
	}
	if r.Max != nil && !r.Max.GreaterThan(r.Min) {
		return ErrEmptyRange
	}
	return nil
}

// Contains reports whether v >= Min and (Max is unbounded or v < Max).
func (r Range) Contains(v decimal.Decimal) bool {
	if v.LessThan(r.Min) {
		return false
	}
	return r.Max == nil || v.LessThan(*r.Max)
}

// Overlaps reports whether the two spans share at least one point.
func (r Range) Overlaps(other Range) bool {
	if r.Max != nil && !other.Min.LessThan(*r.Max) {
		return false
	}
	if other.Max != nil && !r.Min.LessThan(*other.Max) {
		return false
	}
	return true
}

// Portion returns the part of v that falls inside the range, zero when v <= Min.
func (r Range) Portion(v decimal.Decimal) decimal.Decimal {
	if !v.GreaterThan(r.Min) {
		return decimal.Zero
	}
	upper := v
	if r.Max != nil && r.Max.LessThan(v) {
		upper = *r.Max
	}
	return upper.Sub(r.Min)
}

func (r Range) String() string {
	if r.Max == nil {
		return fmt.Sprintf("[%s, +inf)", r.Min.String())
	}
	return fmt.Sprintf("[%s, %s)", r.Min.String(), r.Max.String())
}

// Sorted returns a copy of items ordered ascending by Min. Items with equal Min keep their order.
func Sorted[T Ranged](items []T) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return a.Span().Min.Cmp(b.Span().Min)
	})
	return out
}

// Resolve returns the first item, ascending by Min, whose range contains v.
func Resolve[T Ranged](items []T, v decimal.Decimal) (T, bool) {
	for _, item := range Sorted(items) {
		if item.Span().Contains(v) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// FindOverlap returns the first existing item whose span intersects candidate.
func FindOverlap[T Ranged](existing []T, candidate Range) (T, bool) {
	for _, item := range Sorted(existing) {
		if item.Span().Overlaps(candidate) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// CheckDisjoint validates every range and rejects any pair that overlaps.
func CheckDisjoint[T Ranged](items []T) error {
	sorted := Sorted(items)
	for i, item := range sorted {
		span := item.Span()
		if err := span.Validate(); err != nil {
			return fmt.Errorf("%s: %w", span, err)
		}
		if i > 0 {
			prev := sorted[i-1].Span()
			if prev.Overlaps(span) {
				return fmt.Errorf("%w: %s and %s", ErrOverlapping, prev, span)
			}
		}
	}
	return nil
}
