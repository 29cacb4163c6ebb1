package calculator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/calculator-demo/domain/calc"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// CalculatorPort is the interface other modules use to reach the calculator.
//
// Request errors (unknown operator, invalid argument) come back as
// *calc.Error values. Arithmetic failures are a normal outcome and stay in
// the response's Error field. Any other error means the service call itself
// failed.
type CalculatorPort interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error)
	ListOperators(ctx context.Context, category string) (*ListOperatorsResponse, error)
	Factorize(ctx context.Context, req FactorizeRequest) (*FactorizeResponse, error)
}

// calculatorAdapter wraps ServiceContainer for type-safe cross-module calls.
type calculatorAdapter struct {
	container mono.ServiceContainer
}

// NewCalculatorAdapter creates an adapter for the calculator services.
func NewCalculatorAdapter(container mono.ServiceContainer) CalculatorPort {
	if container == nil {
		panic("calculator adapter requires non-nil ServiceContainer")
	}
	return &calculatorAdapter{container: container}
}

// Evaluate calls the evaluate service.
func (a *calculatorAdapter) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	var resp EvaluateResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceEvaluate,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceEvaluate, err)
	}
	if err := requestError(resp.Error, resp.ErrorKind); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOperators calls the list-operators service.
func (a *calculatorAdapter) ListOperators(ctx context.Context, category string) (*ListOperatorsResponse, error) {
	req := ListOperatorsRequest{Category: category}
	var resp ListOperatorsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListOperators,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceListOperators, err)
	}
	if err := requestError(resp.Error, resp.ErrorKind); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Factorize calls the factorize service.
func (a *calculatorAdapter) Factorize(ctx context.Context, req FactorizeRequest) (*FactorizeResponse, error) {
	var resp FactorizeResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceFactorize,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceFactorize, err)
	}
	if err := requestError(resp.Error, resp.ErrorKind); err != nil {
		return nil, err
	}
	return &resp, nil
}

// serviceAdapter calls a Service in-process with the same error contract as
// the bus adapter.
type serviceAdapter struct {
	service *Service
}

// NewServiceAdapter creates a CalculatorPort that bypasses the service
// container.
func NewServiceAdapter(service *Service) CalculatorPort {
	if service == nil {
		panic("service adapter requires non-nil Service")
	}
	return &serviceAdapter{service: service}
}

func (a *serviceAdapter) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	resp := a.service.Evaluate(ctx, req)
	if err := requestError(resp.Error, resp.ErrorKind); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *serviceAdapter) ListOperators(ctx context.Context, category string) (*ListOperatorsResponse, error) {
	resp := a.service.ListOperators(ctx, ListOperatorsRequest{Category: category})
	if err := requestError(resp.Error, resp.ErrorKind); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *serviceAdapter) Factorize(ctx context.Context, req FactorizeRequest) (*FactorizeResponse, error) {
	resp := a.service.Factorize(ctx, req)
	if err := requestError(resp.Error, resp.ErrorKind); err != nil {
		return nil, err
	}
	return &resp, nil
}

// requestError restores a typed error from the wire fields of a response.
// Arithmetic kinds and empty messages yield nil.
func requestError(msg, kind string) error {
	if msg == "" {
		return nil
	}
	k, ok := calc.ParseErrorKind(kind)
	if !ok {
		return fmt.Errorf("calculator: %s", msg)
	}
	if k == calc.KindArithmetic || k == calc.KindComputationTooLarge {
		return nil
	}
	return calc.NewError(k, msg)
}
