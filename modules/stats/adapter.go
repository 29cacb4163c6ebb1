package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort is the interface other modules use to read the counters.
type StatsPort interface {
	GetStats(ctx context.Context, operator string) (*Snapshot, error)
}

type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates an adapter for the stats services.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	if container == nil {
		panic("stats adapter requires non-nil ServiceContainer")
	}
	return &statsAdapter{container: container}
}

// GetStats calls the get-stats service.
func (a *statsAdapter) GetStats(ctx context.Context, operator string) (*Snapshot, error) {
	req := GetStatsRequest{Operator: operator}
	var resp GetStatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceGetStats, err)
	}
	return &resp.Stats, nil
}
