package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OperationReport is the dashboard view of one tracked operation.
type OperationReport struct {
	OperationStats
	HitRate float64 `json:"hit_rate"`
}

// Snapshot is a read-only view of both cache tiers.
type Snapshot struct {
	TotalKeys    int64                      `json:"total_keys"`
	MemoryUsage  string                     `json:"memory_usage"`
	Operations   map[string]OperationReport `json:"operations"`
	Prefixes     map[string]int64           `json:"prefixes"`
	LocalEntries int                        `json:"local_entries"`
	BreakerState string                     `json:"breaker_state"`
	GeneratedAt  time.Time                  `json:"generated_at"`
}

// Monitor aggregates cache statistics for the admin dashboard.
type Monitor struct {
	hybrid *Hybrid
	logger *zap.Logger
	now    func() time.Time
}

func NewMonitor(hybrid *Hybrid, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{hybrid: hybrid, logger: logger, now: time.Now}
}

// Snapshot gathers key counts, memory usage and hit rates. Probes that fail
// are logged and reported as zero or "unknown"; Snapshot itself never fails.
func (m *Monitor) Snapshot(ctx context.Context) Snapshot {
	kv := m.hybrid.KV()
	snap := Snapshot{
		MemoryUsage:  "unknown",
		Operations:   make(map[string]OperationReport),
		Prefixes:     make(map[string]int64),
		LocalEntries: m.hybrid.Local().Len(),
		BreakerState: kv.BreakerState(),
		GeneratedAt:  m.now(),
	}

	for op, stats := range m.hybrid.Stats().GetAllStats() {
		snap.Operations[op] = OperationReport{OperationStats: stats, HitRate: stats.HitRate()}
	}

	regions := Regions()
	counts := make([]int64, len(regions))

	var g errgroup.Group
	g.Go(func() error {
		n, err := kv.TryDBSize(ctx)
		if err != nil {
			m.logger.Warn("Failed to read cache key count", zap.Error(err))
			return nil
		}
		snap.TotalKeys = n
		return nil
	})
	g.Go(func() error {
		usage, err := kv.TryMemoryUsage(ctx)
		if err != nil {
			m.logger.Warn("Failed to read cache memory usage", zap.Error(err))
			return nil
		}
		snap.MemoryUsage = usage
		return nil
	})
	for i, region := range regions {
		i, region := i, region
		g.Go(func() error {
			n, err := kv.TryCount(ctx, RegionPattern(region))
			if err != nil {
				m.logger.Warn("Failed to count cache region",
					zap.String("region", region), zap.Error(err))
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	_ = g.Wait()

	for i, region := range regions {
		snap.Prefixes[region] = counts[i]
	}
	return snap
}
