package calc

import (
	"math"
	"math/big"
)

// DefaultMaxFactorial is the largest n whose factorial the engine computes.
const DefaultMaxFactorial = 450

// DefaultFactorial is the factorial function used by the FACT operator.
var DefaultFactorial = NewFactorial(DefaultMaxFactorial)

// Factorial computes exact factorials up to a ceiling.
type Factorial struct {
	maxN int64
}

// NewFactorial returns a factorial function refusing arguments above maxN.
func NewFactorial(maxN int64) *Factorial {
	return &Factorial{maxN: maxN}
}

// FactorialForDigits returns a factorial function whose ceiling is derived
// from a budget of result digits: the ceiling is the first n at which the
// running estimate 1 + log10(2) + ... + log10(n) exceeds numDigits.
func FactorialForDigits(numDigits int) (*Factorial, error) {
	if numDigits < 1 {
		return nil, invalidArgumentf("digit budget must be positive, got %d", numDigits)
	}
	digits := 1.0
	for i := 2; i <= math.MaxInt16; i++ {
		digits += math.Log10(float64(i))
		if digits > float64(numDigits) {
			return NewFactorial(int64(i)), nil
		}
	}
	return nil, invalidArgumentf("digit budget %d is too big", numDigits)
}

// MaxN is the largest accepted argument.
func (f *Factorial) MaxN() int64 {
	return f.maxN
}

// Compute returns n! for 1 <= n <= MaxN.
func (f *Factorial) Compute(n int64) (*big.Int, error) {
	if n < 1 {
		return nil, invalidArgumentf("factorial is not defined for %d", n)
	}
	if n > f.maxN {
		return nil, tooLargef("cannot compute factorial of %d, too big value", n)
	}
	out := big.NewInt(1)
	for i := int64(2); i <= n; i++ {
		out.Mul(out, big.NewInt(i))
	}
	return out, nil
}
