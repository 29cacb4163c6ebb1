package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// CalculationEvaluatedEvent is emitted after every evaluate request that
// resolved an operator, whether or not the operator produced a value.
type CalculationEvaluatedEvent struct {
	CalculationID string        `json:"calculation_id"`
	Operator      string        `json:"operator"`
	Category      string        `json:"category"`
	ArgumentCount int           `json:"argument_count"`
	Precision     uint32        `json:"precision"`
	Failed        bool          `json:"failed"`
	ErrorKind     string        `json:"error_kind,omitempty"`
	Duration      time.Duration `json:"duration"`
	EvaluatedAt   time.Time     `json:"evaluated_at"`
}

// CalculationEvaluatedV1 is the typed event definition for evaluations.
// Subject: events.calculator.v1.calculation-evaluated
var CalculationEvaluatedV1 = helper.EventDefinition[CalculationEvaluatedEvent](
	"calculator", "CalculationEvaluated", "v1",
)

// NumberFactorizedEvent is emitted after a successful prime factorization.
type NumberFactorizedEvent struct {
	CalculationID string    `json:"calculation_id"`
	Number        int64     `json:"number"`
	FactorCount   int       `json:"factor_count"`
	IsPrime       bool      `json:"is_prime"`
	Cached        bool      `json:"cached"`
	FactorizedAt  time.Time `json:"factorized_at"`
}

// NumberFactorizedV1 is the typed event definition for factorizations.
// Subject: events.calculator.v1.number-factorized
var NumberFactorizedV1 = helper.EventDefinition[NumberFactorizedEvent](
	"calculator", "NumberFactorized", "v1",
)
