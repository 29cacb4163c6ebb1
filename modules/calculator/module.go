package calculator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/calculator-demo/domain/calc"
	"github.com/example/calculator-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Service names registered by the module. The framework prefixes them with
// "services.calculator." in the NATS subject.
const (
	ServiceEvaluate      = "evaluate"
	ServiceListOperators = "list-operators"
	ServiceFactorize     = "factorize"
)

// CalculatorModule exposes the calculation engine as request-reply services.
type CalculatorModule struct {
	service *Service
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*CalculatorModule)(nil)
	_ mono.ServiceProviderModule = (*CalculatorModule)(nil)
	_ mono.EventEmitterModule    = (*CalculatorModule)(nil)
	_ mono.HealthCheckableModule = (*CalculatorModule)(nil)
)

// NewModule creates a CalculatorModule backed by the default registry and
// factorizer.
func NewModule(logger types.Logger) *CalculatorModule {
	return &CalculatorModule{
		service: NewService(calc.Operators(), calc.DefaultFactorizer, logger),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *CalculatorModule) Name() string {
	return "calculator"
}

// SetCache enables the factorization cache. Call before Start.
func (m *CalculatorModule) SetCache(c FactorCache) {
	m.service.SetCache(c)
}

// SetEventBus receives the EventBus from the framework.
func (m *CalculatorModule) SetEventBus(bus mono.EventBus) {
	m.service.SetEventBus(bus)
}

// EmitEvents declares the events this module can emit.
func (m *CalculatorModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.CalculationEvaluatedV1.ToBase(),
		events.NumberFactorizedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *CalculatorModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceEvaluate, json.Unmarshal, json.Marshal, m.evaluate,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceEvaluate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListOperators, json.Unmarshal, json.Marshal, m.listOperators,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListOperators, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceFactorize, json.Unmarshal, json.Marshal, m.factorize,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceFactorize, err)
	}

	m.logger.Info("Registered calculator services",
		"services", []string{ServiceEvaluate, ServiceListOperators, ServiceFactorize})
	return nil
}

// Failures are returned inside the response, never as a Go error, because
// the error type does not survive the NATS hop.

func (m *CalculatorModule) evaluate(ctx context.Context, req EvaluateRequest, _ *mono.Msg) (EvaluateResponse, error) {
	return m.service.Evaluate(ctx, req), nil
}

func (m *CalculatorModule) listOperators(ctx context.Context, req ListOperatorsRequest, _ *mono.Msg) (ListOperatorsResponse, error) {
	return m.service.ListOperators(ctx, req), nil
}

func (m *CalculatorModule) factorize(ctx context.Context, req FactorizeRequest, _ *mono.Msg) (FactorizeResponse, error) {
	return m.service.Factorize(ctx, req), nil
}

// Start initializes the calculator module.
func (m *CalculatorModule) Start(_ context.Context) error {
	m.logger.Info("Calculator module started",
		"operators", len(calc.Operators().All()),
		"maxFactorial", calc.DefaultFactorial.MaxN(),
		"maxFactorizable", calc.DefaultFactorizer.MaxN(),
		"cache", m.service.cache != nil)
	return nil
}

// Stop gracefully stops the calculator module.
func (m *CalculatorModule) Stop(_ context.Context) error {
	m.logger.Info("Calculator module stopped")
	return nil
}

// Health reports the engine limits. The module has no external resources.
func (m *CalculatorModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"operators":        len(calc.Operators().All()),
			"max_factorial":    calc.DefaultFactorial.MaxN(),
			"max_factorizable": calc.DefaultFactorizer.MaxN(),
			"cache_enabled":    m.service.cache != nil,
		},
	}
}
