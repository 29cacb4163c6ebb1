package calculator

import "github.com/example/calculator-demo/domain/calc"

// EvaluateRequest asks for one operator applied to a flat argument list.
// Arguments are decimal strings; Precision is a count of significant
// digits where nil and 0 mean unlimited.
type EvaluateRequest struct {
	Operator  string   `json:"operator"`
	Arguments []string `json:"arguments"`
	Precision *int     `json:"precision,omitempty"`
	Category  string   `json:"category,omitempty"`
}

// EvaluateResponse carries either Result or Error. ErrorKind is the wire code
// of the engine error kind so that callers can restore typed errors.
type EvaluateResponse struct {
	ID        string   `json:"id,omitempty"`
	Operator  string   `json:"operator"`
	Arguments []string `json:"arguments"`
	Result    string   `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}

// ListOperatorsRequest selects the surface whose operators are listed.
type ListOperatorsRequest struct {
	Category string `json:"category,omitempty"`
}

// ListOperatorsResponse lists operators in registration order.
type ListOperatorsResponse struct {
	Category  string              `json:"category"`
	Operators []calc.OperatorInfo `json:"operators"`
	Error     string              `json:"error,omitempty"`
	ErrorKind string              `json:"error_kind,omitempty"`
}

// FactorizeRequest carries the raw argument list of a factor call. Exactly
// one positive integer is accepted.
type FactorizeRequest struct {
	Arguments []string `json:"arguments"`
}

// FactorizeResponse carries the prime factors in non-decreasing order.
type FactorizeResponse struct {
	ID        string   `json:"id,omitempty"`
	Arguments []string `json:"arguments"`
	Factors   []string `json:"factors,omitempty"`
	IsPrime   bool     `json:"is_prime"`
	Cached    bool     `json:"cached"`
	Error     string   `json:"error,omitempty"`
	ErrorKind string   `json:"error_kind,omitempty"`
}
