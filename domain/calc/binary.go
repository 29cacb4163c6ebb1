package calc

import (
	"github.com/cockroachdb/apd/v3"
)

func (o Operator) checkBinaryArity(n int) error {
	if n < 2 {
		return invalidArgumentf("invalid argument list: %s needs at least 2 arguments", o)
	}
	if o.MaxArgs() == 2 && n > 2 {
		return invalidArgumentf("invalid argument list: %s needs exactly 2 arguments", o)
	}
	return nil
}

// applyBinary folds args from the left. Addition, subtraction and
// multiplication are exact until the single final rounding; division rounds
// per step.
func (o Operator) applyBinary(args []*apd.Decimal, ctx Context) (*apd.Decimal, error) {
	if err := o.checkBinaryArity(len(args)); err != nil {
		return nil, err
	}

	acc := new(apd.Decimal).Set(args[0])
	for _, next := range args[1:] {
		var err error
		switch o {
		case OpPlus:
			acc, err = exactAdd(acc, next)
		case OpMinus:
			acc, err = exactSub(acc, next)
		case OpMul:
			acc, err = exactMul(acc, next)
		case OpDiv:
			acc, err = divide(acc, next, ctx)
		}
		if err != nil {
			return nil, err
		}
	}
	if o == OpDiv {
		return acc, nil
	}
	res, err := ctx.Round(acc)
	if err != nil {
		return nil, err
	}
	return normalizeZero(res), nil
}

// divide computes a/b in two stages. The truncated integer quotient and the
// remainder are exact; when the remainder is zero the quotient is returned
// without rounding. Otherwise the fractional part r/b is computed at the
// division precision and added to the quotient before rounding to ctx.
func divide(a, b *apd.Decimal, ctx Context) (*apd.Decimal, error) {
	if b.IsZero() {
		return nil, arithmeticf("Division by zero")
	}

	q, err := integerQuotient(a, b)
	if err != nil {
		return nil, err
	}
	prod, err := exactMul(q, b)
	if err != nil {
		return nil, err
	}
	rem, err := exactSub(a, prod)
	if err != nil {
		return nil, err
	}

	if rem.IsZero() {
		q, err = preferredScale(q, a, b)
		if err != nil {
			return nil, err
		}
		return normalizeZero(q), nil
	}

	frac := new(apd.Decimal)
	cond, err := roundingContext(ctx.divisionPrecision()).Quo(frac, rem, b)
	if err != nil {
		return nil, arithmeticf("%v", err)
	}
	if !cond.Inexact() {
		frac, err = trimExact(frac, int64(rem.Exponent)-int64(b.Exponent))
		if err != nil {
			return nil, err
		}
	}
	sum, err := exactAdd(q, frac)
	if err != nil {
		return nil, err
	}
	res, err := ctx.Round(sum)
	if err != nil {
		return nil, err
	}
	return normalizeZero(res), nil
}

// trimExact drops the padding zeros of an exact quotient, keeping at least
// the digits of the ideal exponent, so 7/2 renders as 3.5.
func trimExact(d *apd.Decimal, ideal int64) (*apd.Decimal, error) {
	reduced, _ := new(apd.Decimal).Reduce(d)
	exp := int64(reduced.Exponent)
	if exp <= ideal || ideal < apd.MinExponent {
		return reduced, nil
	}
	prec, err := checkedPrecision(reduced.NumDigits() + exp - ideal)
	if err != nil {
		return nil, err
	}
	out := new(apd.Decimal)
	if _, err := roundingContext(prec).Quantize(out, reduced, int32(ideal)); err != nil {
		return nil, arithmeticf("%v", err)
	}
	return out, nil
}

// integerQuotient is a/b truncated toward zero, computed without rounding.
func integerQuotient(a, b *apd.Decimal) (*apd.Decimal, error) {
	prec, err := checkedPrecision(adjusted(a) - adjusted(b) + 2)
	if err != nil {
		return nil, err
	}
	q := new(apd.Decimal)
	if _, err := roundingContext(prec).QuoInteger(q, a, b); err != nil {
		return nil, arithmeticf("%v", err)
	}
	q.Negative = a.Negative != b.Negative
	return normalizeZero(q), nil
}

// preferredScale gives an exact quotient the exponent a.Exponent-b.Exponent
// when that keeps fractional digits, so 1.50/0.5 renders as 3.0.
func preferredScale(q, a, b *apd.Decimal) (*apd.Decimal, error) {
	exp := int64(a.Exponent) - int64(b.Exponent)
	if exp >= 0 || exp < apd.MinExponent {
		return q, nil
	}
	prec, err := checkedPrecision(q.NumDigits() - exp)
	if err != nil {
		return nil, err
	}
	d := new(apd.Decimal)
	if _, err := roundingContext(prec).Quantize(d, q, int32(exp)); err != nil {
		return nil, arithmeticf("%v", err)
	}
	return d, nil
}

// normalizeZero drops the sign of a zero result.
func normalizeZero(d *apd.Decimal) *apd.Decimal {
	if d.IsZero() {
		d.Negative = false
	}
	return d
}
