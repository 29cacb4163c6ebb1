package calc

import (
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// ParseDecimal parses a finite decimal in plain or scientific notation.
func ParseDecimal(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, invalidArgumentf("malformed number: %q", s)
	}
	if d.Form != apd.Finite {
		return nil, invalidArgumentf("not a finite number: %q", s)
	}
	return d, nil
}

// ParseDecimals parses every element of ss, failing on the first malformed one.
func ParseDecimals(ss []string) ([]*apd.Decimal, error) {
	out := make([]*apd.Decimal, 0, len(ss))
	for _, s := range ss {
		d, err := ParseDecimal(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FormatDecimals renders decimals with their canonical string form.
func FormatDecimals(ds []*apd.Decimal) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

// The exact helpers size their apd context to the operands so that no
// rounding can happen, independent of how the library treats precision 0.

func exactAdd(x, y *apd.Decimal) (*apd.Decimal, error) {
	prec, err := sumPrecision(x, y)
	if err != nil {
		return nil, err
	}
	d := new(apd.Decimal)
	if _, err := roundingContext(prec).Add(d, x, y); err != nil {
		return nil, arithmeticf("%v", err)
	}
	return d, nil
}

func exactSub(x, y *apd.Decimal) (*apd.Decimal, error) {
	prec, err := sumPrecision(x, y)
	if err != nil {
		return nil, err
	}
	d := new(apd.Decimal)
	if _, err := roundingContext(prec).Sub(d, x, y); err != nil {
		return nil, arithmeticf("%v", err)
	}
	return d, nil
}

func exactMul(x, y *apd.Decimal) (*apd.Decimal, error) {
	prec, err := checkedPrecision(x.NumDigits() + y.NumDigits())
	if err != nil {
		return nil, err
	}
	d := new(apd.Decimal)
	if _, err := roundingContext(prec).Mul(d, x, y); err != nil {
		return nil, arithmeticf("%v", err)
	}
	return d, nil
}

// sumPrecision is the number of digits an exact sum or difference of x and y
// can occupy, carry included.
func sumPrecision(x, y *apd.Decimal) (uint32, error) {
	minExp := min(int64(x.Exponent), int64(y.Exponent))
	maxAdj := max(adjusted(x), adjusted(y))
	return checkedPrecision(maxAdj - minExp + 2)
}

// adjusted is the exponent of the most significant digit.
func adjusted(d *apd.Decimal) int64 {
	return int64(d.Exponent) + d.NumDigits() - 1
}

func checkedPrecision(digits int64) (uint32, error) {
	if digits < 1 {
		return 1, nil
	}
	if digits > math.MaxUint32 {
		return 0, tooLargef("result needs %d digits, too big value", digits)
	}
	return uint32(digits), nil
}
