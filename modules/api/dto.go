package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/calculator-demo/domain/calc"
	"github.com/example/calculator-demo/modules/stats"
)

// Accepted JSON keys, canonical key first.
var (
	operatorKeys = []string{"operator", "op"}
	argumentKeys = []string{"arguments", "args", "arg", "argument"}
)

// OperationRequest is the body of a calculation request. Arguments may be
// JSON numbers or strings; numbers keep their literal text so no precision
// is lost before the engine parses them.
type OperationRequest struct {
	Operator  string   `json:"operator"`
	Arguments []string `json:"arguments"`
}

// UnmarshalJSON accepts the key aliases and a single scalar in place of the
// argument array.
func (r *OperationRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := firstField(fields, operatorKeys); ok {
		var op *string
		if err := json.Unmarshal(raw, &op); err != nil {
			return errors.New("operator must be a string")
		}
		if op != nil {
			r.Operator = *op
		}
	}

	if raw, ok := firstField(fields, argumentKeys); ok {
		args, err := decodeArguments(raw)
		if err != nil {
			return err
		}
		r.Arguments = args
	}
	return nil
}

func firstField(fields map[string]json.RawMessage, keys []string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := fields[k]; ok {
			return raw, true
		}
	}
	return nil, false
}

// decodeArguments turns an array, a scalar or null into argument strings.
func decodeArguments(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		args := make([]string, 0, len(val))
		for i, item := range val {
			s, err := argumentText(item)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			args = append(args, s)
		}
		return args, nil
	default:
		s, err := argumentText(val)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

func argumentText(v any) (string, error) {
	switch val := v.(type) {
	case json.Number:
		return val.String(), nil
	case string:
		return val, nil
	default:
		return "", fmt.Errorf("expected a number, got %T", v)
	}
}

// OperationResponse echoes the request with either Result or Error set.
// Results are always strings.
type OperationResponse struct {
	ID        string   `json:"id,omitempty"`
	Operator  string   `json:"operator"`
	Arguments []string `json:"arguments"`
	Result    string   `json:"result,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// OperatorListResponse lists the operators of an endpoint.
type OperatorListResponse struct {
	Category  string              `json:"category"`
	Operators []calc.OperatorInfo `json:"operators"`
}

// FactorizationResponse carries the prime factors as strings.
type FactorizationResponse struct {
	ID        string   `json:"id,omitempty"`
	Operator  string   `json:"operator"`
	Arguments []string `json:"arguments"`
	Result    []string `json:"result,omitempty"`
	IsPrime   bool     `json:"is_prime"`
	Cached    bool     `json:"cached"`
	Error     string   `json:"error,omitempty"`
}

// StatsResponse wraps the usage counters.
type StatsResponse struct {
	Stats stats.Snapshot `json:"stats"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
