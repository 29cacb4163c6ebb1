package calc

import (
	"fmt"
	"strings"
)

// OperatorInfo is the public description of an operator.
type OperatorInfo struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Registry resolves operator names. It is immutable after construction.
type Registry struct {
	ordered []Operator
	byKey   map[string]Operator
}

// NewRegistry builds a registry over ops. Both the symbol and the name of
// every operator are lookup keys, compared case-insensitively; a key shared
// by two operators is rejected.
func NewRegistry(ops ...Operator) (*Registry, error) {
	r := &Registry{
		ordered: make([]Operator, 0, len(ops)),
		byKey:   make(map[string]Operator, 2*len(ops)),
	}
	for _, op := range ops {
		if _, ok := op.def(); !ok {
			return nil, fmt.Errorf("register %s: unknown operator", op)
		}
		for _, key := range []string{op.Symbol(), op.Name()} {
			key = strings.ToLower(key)
			if prev, dup := r.byKey[key]; dup {
				return nil, fmt.Errorf("register %s: key %q already used by %s", op, key, prev)
			}
			r.byKey[key] = op
		}
		r.ordered = append(r.ordered, op)
	}
	return r, nil
}

var defaultRegistry = mustRegistry(AllOperators()...)

func mustRegistry(ops ...Operator) *Registry {
	r, err := NewRegistry(ops...)
	if err != nil {
		panic(err)
	}
	return r
}

// Operators returns the process-wide registry of every supported operator.
func Operators() *Registry {
	return defaultRegistry
}

// Find looks an operator up by symbol or name.
func (r *Registry) Find(name string) (Operator, error) {
	key := strings.ToLower(name)
	if key == "" {
		return 0, unknownOperatorf("operator is missing")
	}
	op, ok := r.byKey[key]
	if !ok {
		return 0, unknownOperatorf("unsupported operator: %s", name)
	}
	return op, nil
}

// FindIn looks an operator up and checks that it is available in category c.
func (r *Registry) FindIn(name string, c Category) (Operator, error) {
	op, err := r.Find(name)
	if err != nil {
		return 0, err
	}
	if !op.IsAvailableIn(c) {
		return 0, unknownOperatorf("operator %s is not available at this endpoint", name)
	}
	return op, nil
}

// List describes the operators available in category c in registration
// order. Names are lower case.
func (r *Registry) List(c Category) []OperatorInfo {
	out := make([]OperatorInfo, 0, len(r.ordered))
	for _, op := range r.ordered {
		if !op.IsAvailableIn(c) {
			continue
		}
		out = append(out, OperatorInfo{Symbol: op.Symbol(), Name: strings.ToLower(op.Name())})
	}
	return out
}

// All returns every registered operator in registration order.
func (r *Registry) All() []Operator {
	out := make([]Operator, len(r.ordered))
	copy(out, r.ordered)
	return out
}
