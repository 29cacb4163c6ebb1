package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/calculator-demo/domain/calc"
	"github.com/example/calculator-demo/modules/calculator"
	"github.com/example/calculator-demo/modules/stats"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// mockCalculatorPort implements calculator.CalculatorPort for testing.
type mockCalculatorPort struct {
	evaluateFunc      func(ctx context.Context, req calculator.EvaluateRequest) (*calculator.EvaluateResponse, error)
	listOperatorsFunc func(ctx context.Context, category string) (*calculator.ListOperatorsResponse, error)
	factorizeFunc     func(ctx context.Context, req calculator.FactorizeRequest) (*calculator.FactorizeResponse, error)
}

func (m *mockCalculatorPort) Evaluate(ctx context.Context, req calculator.EvaluateRequest) (*calculator.EvaluateResponse, error) {
	if m.evaluateFunc != nil {
		return m.evaluateFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCalculatorPort) ListOperators(ctx context.Context, category string) (*calculator.ListOperatorsResponse, error) {
	if m.listOperatorsFunc != nil {
		return m.listOperatorsFunc(ctx, category)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCalculatorPort) Factorize(ctx context.Context, req calculator.FactorizeRequest) (*calculator.FactorizeResponse, error) {
	if m.factorizeFunc != nil {
		return m.factorizeFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

// mockStatsPort implements stats.StatsPort for testing.
type mockStatsPort struct {
	getStatsFunc func(ctx context.Context, operator string) (*stats.Snapshot, error)
}

func (m *mockStatsPort) GetStats(ctx context.Context, operator string) (*stats.Snapshot, error) {
	if m.getStatsFunc != nil {
		return m.getStatsFunc(ctx, operator)
	}
	return nil, errors.New("not implemented")
}

// engineHandlers wires the handlers to the real calculator engine.
func engineHandlers() *Handlers {
	svc := calculator.NewService(calc.Operators(), calc.DefaultFactorizer, &mockLogger{})
	return NewHandlers(calculator.NewServiceAdapter(svc), &mockStatsPort{}, &mockLogger{})
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RateLimitMax = 0
	return cfg
}

func doRequest(t *testing.T, h *Handlers, cfg Config, method, target, body string) (int, map[string]any) {
	t.Helper()
	app := newApp(cfg, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return resp.StatusCode, out
}

func TestCalculatorRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantResult string
		wantError  string
	}{
		{
			name:       "body operator",
			method:     http.MethodPost,
			target:     "/calculator",
			body:       `{"operator":"+","arguments":[1,2]}`,
			wantStatus: http.StatusOK,
			wantResult: "3",
		},
		{
			name:       "body operator with aliases",
			method:     http.MethodPost,
			target:     "/calculator",
			body:       `{"op":"MUL","args":["12432222212123123123","33432342"]}`,
			wantStatus: http.StatusOK,
			wantResult: "415638304815696798356244066",
		},
		{
			name:       "path operator with precision",
			method:     http.MethodPost,
			target:     "/calculator/plus?precision=3",
			body:       `{"arguments":[1000000000,6]}`,
			wantStatus: http.StatusOK,
			wantResult: "1.00E+9",
		},
		{
			name:       "path operator overrides body",
			method:     http.MethodPost,
			target:     "/calculator/minus",
			body:       `{"operator":"plus","arguments":[10,4]}`,
			wantStatus: http.StatusOK,
			wantResult: "6",
		},
		{
			name:       "division by zero is a result",
			method:     http.MethodPost,
			target:     "/calculator/div",
			body:       `{"arguments":[12,0]}`,
			wantStatus: http.StatusOK,
			wantError:  "Division by zero",
		},
		{
			name:       "factorial of fraction is a result",
			method:     http.MethodPost,
			target:     "/calculator/scientific/fact",
			body:       `{"arguments":[2.5]}`,
			wantStatus: http.StatusOK,
			wantError:  "factorial is defined only for integer numbers",
		},
		{
			name:       "scientific square",
			method:     http.MethodPost,
			target:     "/calculator/scientific/square",
			body:       `{"arguments":[3]}`,
			wantStatus: http.StatusOK,
			wantResult: "9",
		},
		{
			name:       "basic abs",
			method:     http.MethodPost,
			target:     "/calculator/basic",
			body:       `{"operator":"abs","arguments":[-4.5]}`,
			wantStatus: http.StatusOK,
			wantResult: "4.5",
		},
		{
			name:       "unknown operator in path",
			method:     http.MethodPost,
			target:     "/calculator/pow",
			body:       `{"arguments":[2,3]}`,
			wantStatus: http.StatusNotFound,
			wantError:  "unknown_operator",
		},
		{
			name:       "unknown operator in body",
			method:     http.MethodPost,
			target:     "/calculator",
			body:       `{"operator":"pow","arguments":[2,3]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown_operator",
		},
		{
			name:       "missing operator",
			method:     http.MethodPost,
			target:     "/calculator",
			body:       `{"arguments":[2,3]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown_operator",
		},
		{
			name:       "scientific operator on basic path",
			method:     http.MethodPost,
			target:     "/calculator/basic/square",
			body:       `{"arguments":[3]}`,
			wantStatus: http.StatusNotFound,
			wantError:  "unknown_operator",
		},
		{
			name:       "scientific operator in basic body",
			method:     http.MethodPost,
			target:     "/calculator/basic",
			body:       `{"op":"x!","arguments":[3]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown_operator",
		},
		{
			name:       "too many arguments",
			method:     http.MethodPost,
			target:     "/calculator/div",
			body:       `{"arguments":[12,10,5]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_argument",
		},
		{
			name:       "no body",
			method:     http.MethodPost,
			target:     "/calculator/plus",
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_argument",
		},
		{
			name:       "malformed number",
			method:     http.MethodPost,
			target:     "/calculator/plus",
			body:       `{"arguments":["1","two"]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_argument",
		},
		{
			name:       "negative precision",
			method:     http.MethodPost,
			target:     "/calculator/plus?precision=-1",
			body:       `{"arguments":[1,2]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_argument",
		},
		{
			name:       "non-numeric precision",
			method:     http.MethodPost,
			target:     "/calculator/plus?precision=high",
			body:       `{"arguments":[1,2]}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "bad_request",
		},
		{
			name:       "malformed JSON",
			method:     http.MethodPost,
			target:     "/calculator",
			body:       `{"operator":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "bad_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, engineHandlers(), testConfig(), tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, status, "body: %v", body)

			if tt.wantStatus == http.StatusOK {
				if tt.wantResult != "" {
					assert.Equal(t, tt.wantResult, body["result"])
					assert.Nil(t, body["error"])
				} else {
					assert.Equal(t, tt.wantError, body["error"])
					assert.Nil(t, body["result"])
				}
				return
			}
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestListOperatorsRoutes(t *testing.T) {
	tests := []struct {
		target    string
		category  string
		wantCount int
	}{
		{"/calculator", "scientific", 8},
		{"/calculator/basic", "basic", 6},
		{"/calculator/scientific", "scientific", 8},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			status, body := doRequest(t, engineHandlers(), testConfig(), http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.category, body["category"])

			ops, ok := body["operators"].([]any)
			require.True(t, ok)
			assert.Len(t, ops, tt.wantCount)

			first := ops[0].(map[string]any)
			assert.Equal(t, "+", first["symbol"])
			assert.Equal(t, "plus", first["name"])
		})
	}
}

func TestFactorRoute(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantFactors []any
		wantPrime   bool
		wantError   string
	}{
		{name: "composite", body: `{"arguments":[1330]}`, wantStatus: http.StatusOK, wantFactors: []any{"2", "5", "7", "19"}},
		{name: "prime", body: `{"arguments":["221306020009"]}`, wantStatus: http.StatusOK, wantFactors: []any{"17", "3659", "3557803"}},
		{name: "one", body: `{"arguments":[1.0]}`, wantStatus: http.StatusOK, wantFactors: []any{"1"}, wantPrime: true},
		{name: "fraction", body: `{"arguments":[1.2]}`, wantStatus: http.StatusOK, wantError: "only integer number can be factorized to primes"},
		{name: "zero", body: `{"arguments":[0]}`, wantStatus: http.StatusOK, wantError: "only positive number can be factorized to primes"},
		{name: "too big", body: `{"arguments":["9223372036854775807"]}`, wantStatus: http.StatusOK, wantError: "prime factorization of 9223372036854775807 refused, too big value"},
		{name: "no argument", body: `{"arguments":[]}`, wantStatus: http.StatusBadRequest, wantError: "invalid_argument"},
		{name: "two arguments", body: `{"arguments":[4,6]}`, wantStatus: http.StatusBadRequest, wantError: "invalid_argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, engineHandlers(), testConfig(), http.MethodPost, "/calculator/scientific/factor", tt.body)
			assert.Equal(t, tt.wantStatus, status, "body: %v", body)
			assert.Equal(t, tt.wantError, valueOrEmpty(body["error"]))

			if tt.wantFactors != nil {
				assert.Equal(t, "factor", body["operator"])
				assert.Equal(t, tt.wantFactors, body["result"])
				assert.Equal(t, tt.wantPrime, body["is_prime"])
			}
		})
	}
}

func TestServiceFailureIsBadGateway(t *testing.T) {
	failing := &mockCalculatorPort{
		evaluateFunc: func(ctx context.Context, req calculator.EvaluateRequest) (*calculator.EvaluateResponse, error) {
			return nil, errors.New("evaluate service call failed: nats: timeout")
		},
	}
	h := NewHandlers(failing, &mockStatsPort{}, &mockLogger{})

	status, body := doRequest(t, h, testConfig(), http.MethodPost, "/calculator/plus", `{"arguments":[1,2]}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "bad_gateway", body["error"])

	status, _ = doRequest(t, h, testConfig(), http.MethodGet, "/calculator", "")
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestEvaluatePassesRequest(t *testing.T) {
	var got calculator.EvaluateRequest
	port := &mockCalculatorPort{
		evaluateFunc: func(ctx context.Context, req calculator.EvaluateRequest) (*calculator.EvaluateResponse, error) {
			got = req
			return &calculator.EvaluateResponse{Operator: req.Operator, Arguments: req.Arguments, Result: "0"}, nil
		},
	}
	h := NewHandlers(port, &mockStatsPort{}, &mockLogger{})

	status, _ := doRequest(t, h, testConfig(), http.MethodPost, "/calculator/scientific/NEG?precision=12", `{"arg":0.50}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "NEG", got.Operator)
	assert.Equal(t, []string{"0.50"}, got.Arguments)
	assert.Equal(t, "scientific", got.Category)
	require.NotNil(t, got.Precision)
	assert.Equal(t, 12, *got.Precision)
}

func TestStatsRoute(t *testing.T) {
	var gotOperator string
	statsPort := &mockStatsPort{
		getStatsFunc: func(ctx context.Context, operator string) (*stats.Snapshot, error) {
			gotOperator = operator
			return &stats.Snapshot{
				Evaluations: 3,
				Operators:   []stats.OperatorStats{{Operator: "plus", Evaluations: 3}},
			}, nil
		},
	}
	h := NewHandlers(&mockCalculatorPort{}, statsPort, &mockLogger{})

	status, body := doRequest(t, h, testConfig(), http.MethodGet, "/stats?operator=plus", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "plus", gotOperator)

	snap := body["stats"].(map[string]any)
	assert.Equal(t, float64(3), snap["evaluations"])

	status, body = doRequest(t, NewHandlers(&mockCalculatorPort{}, &mockStatsPort{}, &mockLogger{}), testConfig(), http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "bad_gateway", body["error"])
}

func TestHealthRoute(t *testing.T) {
	status, body := doRequest(t, engineHandlers(), testConfig(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "calculator", body["service"])
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitMax = 2
	cfg.RateLimitWindow = time.Minute
	app := newApp(cfg, engineHandlers())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/calculator", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestModuleLifecycle(t *testing.T) {
	m := NewModule(&mockLogger{}, WithPort(0), WithRateLimit(10, time.Second))
	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"calculator", "stats"}, m.Dependencies())
	assert.False(t, m.Health(context.Background()).Healthy)

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculator dependency not set")
	require.NoError(t, m.Stop(context.Background()))
}

func valueOrEmpty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
