package stats

import "time"

// OperatorStats counts the evaluations of one operator.
type OperatorStats struct {
	Operator      string           `json:"operator"`
	Evaluations   int64            `json:"evaluations"`
	Failures      int64            `json:"failures"`
	FailureKinds  map[string]int64 `json:"failure_kinds,omitempty"`
	TotalDuration time.Duration    `json:"total_duration"`
	LastEvaluated time.Time        `json:"last_evaluated"`
}

// FactorizationStats counts prime factorizations.
type FactorizationStats struct {
	Total   int64 `json:"total"`
	Cached  int64 `json:"cached"`
	Primes  int64 `json:"primes"`
	Largest int64 `json:"largest"`
}

// Snapshot is a consistent copy of every counter.
type Snapshot struct {
	Evaluations    int64              `json:"evaluations"`
	Failures       int64              `json:"failures"`
	Operators      []OperatorStats    `json:"operators"`
	Factorizations FactorizationStats `json:"factorizations"`
	Since          time.Time          `json:"since"`
}

// GetStatsRequest selects a single operator; empty selects all.
type GetStatsRequest struct {
	Operator string `json:"operator,omitempty"`
}

// GetStatsResponse wraps the snapshot returned by the get-stats service.
type GetStatsResponse struct {
	Stats Snapshot `json:"stats"`
}
