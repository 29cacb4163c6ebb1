package calc

import "math"

// DefaultMaxFactorizable is the largest number the default factorizer accepts.
const DefaultMaxFactorizable int64 = 1000 * math.MaxInt32

// DefaultFactorizer is the prime factorizer used by the factor service.
var DefaultFactorizer = NewPrimeFactorizer(DefaultMaxFactorizable)

// PrimeFactorizer decomposes positive integers by trial division.
type PrimeFactorizer struct {
	maxN int64
}

// NewPrimeFactorizer returns a factorizer refusing numbers above maxN.
func NewPrimeFactorizer(maxN int64) *PrimeFactorizer {
	return &PrimeFactorizer{maxN: maxN}
}

// MaxN is the largest accepted argument.
func (p *PrimeFactorizer) MaxN() int64 {
	return p.maxN
}

// Factorize returns the prime factors of n in non-decreasing order. The
// factorization of 1 is [1].
func (p *PrimeFactorizer) Factorize(n int64) ([]int64, error) {
	if n < 1 {
		return nil, invalidArgumentf("only positive numbers can be prime-factored")
	}
	if n > p.maxN {
		return nil, tooLargef("prime factorization of %d refused, too big value", n)
	}
	if n < 4 {
		return []int64{n}, nil
	}

	var factors []int64
	rem := n
	for rem%2 == 0 {
		factors = append(factors, 2)
		rem /= 2
	}
	for i := int64(3); rem > 1 && i*i <= rem; i += 2 {
		for rem%i == 0 {
			factors = append(factors, i)
			rem /= i
		}
	}
	if rem > 1 {
		factors = append(factors, rem)
	}
	return factors, nil
}

// IsPrime reports whether a factorization describes a prime (or 1).
func IsPrime(factors []int64) bool {
	return len(factors) == 1
}
