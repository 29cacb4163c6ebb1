package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/calculator-demo/domain/calc"
	"github.com/example/calculator-demo/modules/calculator"
	"github.com/example/calculator-demo/modules/stats"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	calculator calculator.CalculatorPort
	stats      stats.StatsPort
	logger     types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(calcPort calculator.CalculatorPort, statsPort stats.StatsPort, logger types.Logger) *Handlers {
	return &Handlers{
		calculator: calcPort,
		stats:      statsPort,
		logger:     logger,
	}
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Service:   "calculator",
		Timestamp: time.Now(),
	})
}

// ListOperators returns the handler for GET on a calculator endpoint.
func (h *Handlers) ListOperators(category string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp, err := h.calculator.ListOperators(c.UserContext(), category)
		if err != nil {
			return h.handleCalculatorError(c, err, false)
		}
		return c.JSON(OperatorListResponse{
			Category:  resp.Category,
			Operators: resp.Operators,
		})
	}
}

// EvaluateBody returns the handler for POST with the operator in the body.
func (h *Handlers) EvaluateBody(category string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseOperation(c)
		if err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
		return h.evaluate(c, category, req, false)
	}
}

// EvaluatePath returns the handler for POST with the operator in the path.
// The path wins over any operator given in the body.
func (h *Handlers) EvaluatePath(category string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseOperation(c)
		if err != nil {
			return badRequest(c, "Invalid request body: "+err.Error())
		}
		req.Operator = c.Params("operator")
		return h.evaluate(c, category, req, true)
	}
}

func (h *Handlers) evaluate(c *fiber.Ctx, category string, req OperationRequest, fromPath bool) error {
	precision, err := parsePrecision(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := h.calculator.Evaluate(c.UserContext(), calculator.EvaluateRequest{
		Operator:  req.Operator,
		Arguments: req.Arguments,
		Precision: precision,
		Category:  category,
	})
	if err != nil {
		return h.handleCalculatorError(c, err, fromPath)
	}

	return c.JSON(OperationResponse{
		ID:        resp.ID,
		Operator:  resp.Operator,
		Arguments: nonNil(resp.Arguments),
		Result:    resp.Result,
		Error:     resp.Error,
	})
}

// Factorize handles POST /calculator/scientific/factor.
func (h *Handlers) Factorize(c *fiber.Ctx) error {
	req, err := parseOperation(c)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	resp, err := h.calculator.Factorize(c.UserContext(), calculator.FactorizeRequest{
		Arguments: req.Arguments,
	})
	if err != nil {
		return h.handleCalculatorError(c, err, false)
	}

	return c.JSON(FactorizationResponse{
		ID:        resp.ID,
		Operator:  "factor",
		Arguments: nonNil(resp.Arguments),
		Result:    resp.Factors,
		IsPrime:   resp.IsPrime,
		Cached:    resp.Cached,
		Error:     resp.Error,
	})
}

// GetStats handles GET /stats.
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	snap, err := h.stats.GetStats(c.UserContext(), c.Query("operator"))
	if err != nil {
		h.logger.Error("Stats service call failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:   "bad_gateway",
			Message: "Statistics are unavailable",
		})
	}
	return c.JSON(StatsResponse{Stats: *snap})
}

// handleCalculatorError maps calculator errors to HTTP responses. An unknown
// operator taken from the URL path is a missing resource; from the body it
// is a bad request.
func (h *Handlers) handleCalculatorError(c *fiber.Ctx, err error, fromPath bool) error {
	var calcErr *calc.Error
	if !errors.As(err, &calcErr) {
		h.logger.Error("Calculator service call failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error:   "bad_gateway",
			Message: "Calculator service is unavailable",
		})
	}

	switch calcErr.Kind {
	case calc.KindUnknownOperator:
		status := fiber.StatusBadRequest
		if fromPath {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(ErrorResponse{
			Error:   calcErr.Kind.String(),
			Message: calcErr.Msg,
		})
	case calc.KindInvalidArgument:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   calcErr.Kind.String(),
			Message: calcErr.Msg,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: calcErr.Msg,
		})
	}
}

// parseOperation decodes the request body. An empty body is an empty request.
func parseOperation(c *fiber.Ctx) (OperationRequest, error) {
	var req OperationRequest
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}
	return req, nil
}

// parsePrecision reads the optional precision query parameter.
func parsePrecision(c *fiber.Ctx) (*int, error) {
	raw := c.Query("precision")
	if raw == "" {
		return nil, nil
	}
	p, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("precision must be an integer, got %q", raw)
	}
	return &p, nil
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
