package calculator

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/example/calculator-demo/domain/calc"
	"github.com/example/calculator-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// FactorCache stores factorizations between calls. *cache.Cache satisfies it.
type FactorCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Service evaluates calculator requests against the engine.
type Service struct {
	registry   *calc.Registry
	factorizer *calc.PrimeFactorizer
	cache      FactorCache
	sfGroup    singleflight.Group // collapses concurrent misses for one number
	eventBus   mono.EventBus
	logger     types.Logger
}

// NewService creates a calculator service over the given registry and
// factorizer.
func NewService(registry *calc.Registry, factorizer *calc.PrimeFactorizer, logger types.Logger) *Service {
	return &Service{
		registry:   registry,
		factorizer: factorizer,
		logger:     logger,
	}
}

// SetCache enables cache-aside for factorizations. A nil cache disables it.
func (s *Service) SetCache(c FactorCache) {
	s.cache = c
}

// SetEventBus enables event publishing.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.eventBus = bus
}

// Evaluate resolves the operator and applies it. Every failure is reported
// inside the response.
func (s *Service) Evaluate(_ context.Context, req EvaluateRequest) EvaluateResponse {
	resp := EvaluateResponse{
		ID:        uuid.NewString(),
		Operator:  req.Operator,
		Arguments: req.Arguments,
	}

	category, err := calc.ParseCategory(req.Category)
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}
	op, err := s.registry.FindIn(req.Operator, category)
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}
	precision, err := calc.ResolvePrecision(req.Precision)
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}
	args, err := calc.ParseDecimals(req.Arguments)
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}

	start := time.Now()
	value, err := op.Apply(args, precision)
	s.publishEvaluated(events.CalculationEvaluatedEvent{
		CalculationID: resp.ID,
		Operator:      op.Name(),
		Category:      category.String(),
		ArgumentCount: len(args),
		Precision:     precision.Precision,
		Failed:        err != nil,
		ErrorKind:     errorKind(err),
		Duration:      time.Since(start),
		EvaluatedAt:   start,
	})
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		s.logger.Debug("Evaluation failed", "id", resp.ID, "operator", op.Name(), "error", err)
		return resp
	}

	resp.Result = value.String()
	return resp
}

// ListOperators describes the operators of a category.
func (s *Service) ListOperators(_ context.Context, req ListOperatorsRequest) ListOperatorsResponse {
	category, err := calc.ParseCategory(req.Category)
	if err != nil {
		resp := ListOperatorsResponse{Category: req.Category}
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}
	return ListOperatorsResponse{
		Category:  category.String(),
		Operators: s.registry.List(category),
	}
}

// Factorize decomposes the single integer argument into primes, consulting
// the cache first when one is configured.
func (s *Service) Factorize(ctx context.Context, req FactorizeRequest) FactorizeResponse {
	resp := FactorizeResponse{
		ID:        uuid.NewString(),
		Arguments: req.Arguments,
	}

	n, err := factorArgument(req.Arguments)
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}

	factors, cached, err := s.factorize(ctx, n)
	if err != nil {
		resp.Error, resp.ErrorKind = errorFields(err)
		return resp
	}

	resp.Factors = make([]string, len(factors))
	for i, f := range factors {
		resp.Factors[i] = strconv.FormatInt(f, 10)
	}
	resp.IsPrime = calc.IsPrime(factors)
	resp.Cached = cached

	s.publishFactorized(events.NumberFactorizedEvent{
		CalculationID: resp.ID,
		Number:        n,
		FactorCount:   len(factors),
		IsPrime:       resp.IsPrime,
		Cached:        cached,
		FactorizedAt:  time.Now(),
	})
	return resp
}

// factorize is the cache-aside path: cache, then the factorizer behind
// singleflight, then a best-effort cache fill.
func (s *Service) factorize(ctx context.Context, n int64) ([]int64, bool, error) {
	key := strconv.FormatInt(n, 10)

	if s.cache != nil {
		var cached []int64
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Factorization cache read failed", "number", n, "error", err)
		}
		if found {
			return cached, true, nil
		}
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.factorizer.Factorize(n)
	})
	if err != nil {
		return nil, false, err
	}
	factors := val.([]int64)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, factors); err != nil {
			s.logger.Warn("Factorization cache write failed", "number", n, "error", err)
		}
	}
	return factors, false, nil
}

// factorArgument validates the argument list of a factor call. A wrong
// argument count is a request error; a value that cannot be factorized is an
// arithmetic non-result.
func factorArgument(args []string) (int64, error) {
	switch {
	case len(args) == 0:
		return 0, calc.NewError(calc.KindInvalidArgument, "no argument to factorize given")
	case len(args) > 1:
		return 0, calc.NewError(calc.KindInvalidArgument, "only one number can be factorized")
	}

	d, err := calc.ParseDecimal(args[0])
	if err != nil {
		return 0, err
	}
	integ, frac := new(apd.Decimal), new(apd.Decimal)
	d.Modf(integ, frac)
	if !frac.IsZero() {
		return 0, calc.NewError(calc.KindArithmetic, "only integer number can be factorized to primes")
	}
	if d.Sign() <= 0 {
		return 0, calc.NewError(calc.KindArithmetic, "only positive number can be factorized to primes")
	}
	n, err := integ.Int64()
	if err != nil {
		return 0, calc.NewError(calc.KindComputationTooLarge, "prime factorization of "+args[0]+" refused, too big value")
	}
	return n, nil
}

func (s *Service) publishEvaluated(event events.CalculationEvaluatedEvent) {
	if s.eventBus == nil {
		return
	}
	if err := events.CalculationEvaluatedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("Failed to publish CalculationEvaluated event", "id", event.CalculationID, "error", err)
	}
}

func (s *Service) publishFactorized(event events.NumberFactorizedEvent) {
	if s.eventBus == nil {
		return
	}
	if err := events.NumberFactorizedV1.Publish(s.eventBus, event, nil); err != nil {
		s.logger.Warn("Failed to publish NumberFactorized event", "id", event.CalculationID, "error", err)
	}
}

// errorFields splits an engine error into its wire message and kind code.
func errorFields(err error) (string, string) {
	return err.Error(), errorKind(err)
}

func errorKind(err error) string {
	if kind := calc.KindOf(err); kind != 0 {
		return kind.String()
	}
	return ""
}
