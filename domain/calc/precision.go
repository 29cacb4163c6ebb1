package calc

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

const (
	// FallbackDivisionPrecision is the number of significant digits used for
	// the fractional part of an inexact division when the caller asked for
	// unlimited precision.
	FallbackDivisionPrecision = 64

	// MaxPrecision bounds user supplied precision so that every division
	// finishes in bounded time.
	MaxPrecision = 5000
)

// Context is the precision policy threaded through every operator call.
// Precision is a count of significant digits; 0 means unlimited. Rounding
// is always half-up.
type Context struct {
	Precision uint32
}

// Unlimited is the exact-arithmetic context.
var Unlimited = Context{}

// WithPrecision returns a fixed precision context.
func WithPrecision(digits uint32) Context {
	return Context{Precision: digits}
}

// ResolvePrecision turns an optional user supplied precision into a Context.
// nil and 0 both select unlimited precision.
func ResolvePrecision(precision *int) (Context, error) {
	if precision == nil || *precision == 0 {
		return Unlimited, nil
	}
	if *precision < 0 {
		return Context{}, invalidArgumentf("negative precision")
	}
	if *precision > MaxPrecision {
		return Context{}, invalidArgumentf("precision %d exceeds the maximum of %d digits", *precision, MaxPrecision)
	}
	return WithPrecision(uint32(*precision)), nil
}

// IsUnlimited reports whether the context applies no rounding.
func (c Context) IsUnlimited() bool {
	return c.Precision == 0
}

// divisionPrecision is the precision used for the fractional part of an
// inexact division.
func (c Context) divisionPrecision() uint32 {
	if c.IsUnlimited() {
		return FallbackDivisionPrecision
	}
	return c.Precision
}

// Round returns x rounded to the context. Under unlimited precision x is
// returned as a copy.
func (c Context) Round(x *apd.Decimal) (*apd.Decimal, error) {
	d := new(apd.Decimal)
	if c.IsUnlimited() {
		return d.Set(x), nil
	}
	if _, err := roundingContext(c.Precision).Round(d, x); err != nil {
		return nil, arithmeticf("%v", err)
	}
	return d, nil
}

func (c Context) String() string {
	if c.IsUnlimited() {
		return "unlimited"
	}
	return "precision=" + strconv.FormatUint(uint64(c.Precision), 10)
}

// roundingContext builds an apd context with half-up rounding at the given
// number of significant digits.
func roundingContext(digits uint32) *apd.Context {
	return &apd.Context{
		Precision:   digits,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfUp,
	}
}
