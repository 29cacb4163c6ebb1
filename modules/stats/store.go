package stats

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/calculator-demo/events"
)

// Store aggregates calculator events in memory.
type Store struct {
	mu             sync.RWMutex
	operators      map[string]*OperatorStats
	factorizations FactorizationStats
	since          time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		operators: make(map[string]*OperatorStats),
		since:     time.Now(),
	}
}

// RecordEvaluation adds one evaluation to the operator's counters.
func (s *Store) RecordEvaluation(ev events.CalculationEvaluatedEvent) {
	key := strings.ToLower(ev.Operator)

	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.operators[key]
	if !ok {
		op = &OperatorStats{Operator: key}
		s.operators[key] = op
	}
	op.Evaluations++
	op.TotalDuration += ev.Duration
	if ev.EvaluatedAt.After(op.LastEvaluated) {
		op.LastEvaluated = ev.EvaluatedAt
	}
	if ev.Failed {
		op.Failures++
		if ev.ErrorKind != "" {
			if op.FailureKinds == nil {
				op.FailureKinds = make(map[string]int64)
			}
			op.FailureKinds[ev.ErrorKind]++
		}
	}
}

// RecordFactorization adds one factorization.
func (s *Store) RecordFactorization(ev events.NumberFactorizedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.factorizations.Total++
	if ev.Cached {
		s.factorizations.Cached++
	}
	if ev.IsPrime {
		s.factorizations.Primes++
	}
	if ev.Number > s.factorizations.Largest {
		s.factorizations.Largest = ev.Number
	}
}

// Snapshot copies the counters. A non-empty operator restricts the operator
// list to that operator.
func (s *Store) Snapshot(operator string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Operators:      make([]OperatorStats, 0, len(s.operators)),
		Factorizations: s.factorizations,
		Since:          s.since,
	}
	filter := strings.ToLower(operator)
	for key, op := range s.operators {
		snap.Evaluations += op.Evaluations
		snap.Failures += op.Failures
		if filter != "" && key != filter {
			continue
		}
		c := *op
		if op.FailureKinds != nil {
			c.FailureKinds = make(map[string]int64, len(op.FailureKinds))
			for k, v := range op.FailureKinds {
				c.FailureKinds[k] = v
			}
		}
		snap.Operators = append(snap.Operators, c)
	}
	sort.Slice(snap.Operators, func(i, j int) bool {
		return snap.Operators[i].Operator < snap.Operators[j].Operator
	})
	return snap
}
