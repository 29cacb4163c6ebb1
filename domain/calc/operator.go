// Package calc is the numeric evaluation engine: operators over
// arbitrary-precision decimals, the precision policy, and the bounded
// factorial and prime factorization functions.
//
// Every function in this package is pure and safe for concurrent use.
package calc

import (
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Category selects which operators a calculator surface exposes.
type Category int

const (
	// CategoryBasic exposes only operators that are not scientific-only.
	CategoryBasic Category = iota + 1
	// CategoryScientific exposes every operator.
	CategoryScientific
)

// ParseCategory converts a surface name to a Category. The empty name is the
// unrestricted surface.
func ParseCategory(name string) (Category, error) {
	switch name {
	case "basic":
		return CategoryBasic, nil
	case "", "scientific":
		return CategoryScientific, nil
	default:
		return 0, invalidArgumentf("unknown calculator category: %s", name)
	}
}

func (c Category) String() string {
	switch c {
	case CategoryBasic:
		return "basic"
	case CategoryScientific:
		return "scientific"
	default:
		return "unknown"
	}
}

// Operator is one of the fixed set of supported operators. Operators are
// stateless values; identity is the variant itself.
type Operator int

// Supported operators.
const (
	OpPlus Operator = iota + 1
	OpMinus
	OpMul
	OpDiv
	OpNegate
	OpAbs
	OpSquare
	OpFactorial
)

// Unbounded is the MaxArgs of operators that accept any number of arguments.
const Unbounded = math.MaxInt

type operatorDef struct {
	symbol         string
	name           string
	minArgs        int
	maxArgs        int
	scientificOnly bool
}

var operatorDefs = map[Operator]operatorDef{
	OpPlus:      {symbol: "+", name: "PLUS", minArgs: 2, maxArgs: Unbounded},
	OpMinus:     {symbol: "-", name: "MINUS", minArgs: 2, maxArgs: 2},
	OpMul:       {symbol: "*", name: "MUL", minArgs: 2, maxArgs: Unbounded},
	OpDiv:       {symbol: "/", name: "DIV", minArgs: 2, maxArgs: 2},
	OpNegate:    {symbol: "+/-", name: "NEGATE", minArgs: 1, maxArgs: 1},
	OpAbs:       {symbol: "|x|", name: "ABS", minArgs: 1, maxArgs: 1},
	OpSquare:    {symbol: "x^2", name: "SQUARE", minArgs: 1, maxArgs: 1, scientificOnly: true},
	OpFactorial: {symbol: "x!", name: "FACT", minArgs: 1, maxArgs: 1, scientificOnly: true},
}

// AllOperators returns every operator, binary ones first.
func AllOperators() []Operator {
	return []Operator{OpPlus, OpMinus, OpMul, OpDiv, OpNegate, OpAbs, OpSquare, OpFactorial}
}

func (o Operator) def() (operatorDef, bool) {
	s, ok := operatorDefs[o]
	return s, ok
}

// Symbol is the mathematical symbol, e.g. "+" or "x!".
func (o Operator) Symbol() string {
	s, _ := o.def()
	return s.symbol
}

// Name is the identifier-safe upper case name, e.g. "PLUS".
func (o Operator) Name() string {
	s, _ := o.def()
	return s.name
}

// MinArgs is the minimum accepted argument count.
func (o Operator) MinArgs() int {
	s, _ := o.def()
	return s.minArgs
}

// MaxArgs is the maximum accepted argument count, Unbounded for associative
// operators.
func (o Operator) MaxArgs() int {
	s, _ := o.def()
	return s.maxArgs
}

// ScientificOnly reports whether the operator is hidden from basic surfaces.
func (o Operator) ScientificOnly() bool {
	s, _ := o.def()
	return s.scientificOnly
}

// IsAvailableIn reports whether the operator may be used in category c.
func (o Operator) IsAvailableIn(c Category) bool {
	return !o.ScientificOnly() || c == CategoryScientific
}

// IsBinary reports whether the operator folds pairs of arguments.
func (o Operator) IsBinary() bool {
	switch o {
	case OpPlus, OpMinus, OpMul, OpDiv:
		return true
	default:
		return false
	}
}

func (o Operator) String() string {
	if name := o.Name(); name != "" {
		return name
	}
	return "Operator(" + strconv.Itoa(int(o)) + ")"
}

// Apply evaluates the operator over args under the precision context.
// Arity violations and nil arguments are InvalidArgument errors; results
// without a mathematical value are Arithmetic errors.
func (o Operator) Apply(args []*apd.Decimal, ctx Context) (*apd.Decimal, error) {
	if _, ok := o.def(); !ok {
		return nil, unknownOperatorf("unsupported operator: %s", o)
	}
	for _, a := range args {
		if a == nil {
			return nil, invalidArgumentf("invalid argument list: %s got a missing argument", o)
		}
		if a.Form != apd.Finite {
			return nil, invalidArgumentf("invalid argument list: %s got a non-finite argument", o)
		}
	}
	if o.IsBinary() {
		return o.applyBinary(args, ctx)
	}
	return o.applyUnary(args, ctx)
}
