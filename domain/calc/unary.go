package calc

import (
	"github.com/cockroachdb/apd/v3"
)

func (o Operator) applyUnary(args []*apd.Decimal, ctx Context) (*apd.Decimal, error) {
	if len(args) != 1 {
		return nil, invalidArgumentf("invalid argument list: %s is an unary operator", o)
	}
	v := args[0]

	switch o {
	case OpNegate:
		return normalizeZero(new(apd.Decimal).Neg(v)), nil
	case OpAbs:
		return new(apd.Decimal).Abs(v), nil
	case OpSquare:
		sq, err := exactMul(v, v)
		if err != nil {
			return nil, err
		}
		return ctx.Round(sq)
	case OpFactorial:
		return factorialOf(v, ctx)
	default:
		return nil, unknownOperatorf("unsupported operator: %s", o)
	}
}

func factorialOf(v *apd.Decimal, ctx Context) (*apd.Decimal, error) {
	if v.Sign() <= 0 {
		return nil, arithmeticf("factorial is defined only for positive numbers")
	}
	integ, frac := new(apd.Decimal), new(apd.Decimal)
	v.Modf(integ, frac)
	if !frac.IsZero() {
		return nil, arithmeticf("factorial is defined only for integer numbers")
	}
	n, err := integ.Int64()
	if err != nil || n > DefaultFactorial.MaxN() {
		return nil, tooLargef("cannot compute factorial of %s, too big value", v)
	}

	f, err := DefaultFactorial.Compute(n)
	if err != nil {
		return nil, err
	}
	d, _, err := apd.NewFromString(f.String())
	if err != nil {
		return nil, arithmeticf("%v", err)
	}
	return ctx.Round(d)
}
