// Package stats keeps usage counters fed by calculator events.
package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/calculator-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ServiceGetStats is the request-reply service returning a Snapshot.
const ServiceGetStats = "get-stats"

// StatsModule consumes calculator events and serves the aggregated counters.
type StatsModule struct {
	store  *Store
	logger types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*StatsModule)(nil)
	_ mono.EventConsumerModule   = (*StatsModule)(nil)
	_ mono.ServiceProviderModule = (*StatsModule)(nil)
	_ mono.HealthCheckableModule = (*StatsModule)(nil)
)

// NewModule creates a StatsModule with an empty store.
func NewModule(logger types.Logger) *StatsModule {
	return &StatsModule{
		store:  NewStore(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *StatsModule) Name() string {
	return "stats"
}

// RegisterEventConsumers subscribes to the calculator events.
func (m *StatsModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.CalculationEvaluatedV1, m.handleEvaluated, m); err != nil {
		return fmt.Errorf("failed to register CalculationEvaluated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.NumberFactorizedV1, m.handleFactorized, m); err != nil {
		return fmt.Errorf("failed to register NumberFactorized consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", []string{"CalculationEvaluated", "NumberFactorized"})
	return nil
}

// RegisterServices registers the get-stats service.
func (m *StatsModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetStats, json.Unmarshal, json.Marshal, m.getStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}
	return nil
}

func (m *StatsModule) handleEvaluated(_ context.Context, ev events.CalculationEvaluatedEvent, _ *mono.Msg) error {
	m.store.RecordEvaluation(ev)
	return nil
}

func (m *StatsModule) handleFactorized(_ context.Context, ev events.NumberFactorizedEvent, _ *mono.Msg) error {
	m.store.RecordFactorization(ev)
	return nil
}

func (m *StatsModule) getStats(_ context.Context, req GetStatsRequest, _ *mono.Msg) (GetStatsResponse, error) {
	return GetStatsResponse{Stats: m.store.Snapshot(req.Operator)}, nil
}

// Start starts the module.
func (m *StatsModule) Start(_ context.Context) error {
	m.logger.Info("Stats module started - listening for calculator events")
	return nil
}

// Stop stops the module.
func (m *StatsModule) Stop(_ context.Context) error {
	snap := m.store.Snapshot("")
	m.logger.Info("Stats module stopped",
		"evaluations", snap.Evaluations,
		"factorizations", snap.Factorizations.Total)
	return nil
}

// Health reports the totals seen so far.
func (m *StatsModule) Health(_ context.Context) mono.HealthStatus {
	snap := m.store.Snapshot("")
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"evaluations":    snap.Evaluations,
			"factorizations": snap.Factorizations.Total,
		},
	}
}
