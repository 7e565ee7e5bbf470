package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"bluecarbon/admin-console/internal/gateway"
)

// DataSource is the slice of the API gateway the aggregator reads from.
// Because both reads degrade to fallback data, aggregation never fails.
type DataSource interface {
	ListProjects(ctx context.Context) []gateway.Project
	ListVerifications(ctx context.Context) []gateway.Verification
}

// Stats is the aggregate summary the dashboard overview renders
type Stats struct {
	TotalProjects        int       `json:"totalProjects"`
	ApprovedProjects     int       `json:"approvedProjects"`
	PendingVerifications int       `json:"pendingVerifications"`
	TotalCO2             float64   `json:"totalCO2"` // tonnes sequestered
	ComputedAt           time.Time `json:"computedAt"`
}

const statsKey = "dashboard_stats"

// Aggregator computes dashboard stats from the gateway's listings, with a
// short-lived cache in front and a background refresh keeping it warm.
type Aggregator struct {
	source DataSource
	cache  *statsCache
	logger *zap.Logger
}

// NewAggregator creates an aggregator caching stats for ttl.
func NewAggregator(source DataSource, ttl time.Duration, logger *zap.Logger) *Aggregator {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Aggregator{
		source: source,
		cache:  newStatsCache(ttl),
		logger: logger,
	}
}

// Stats returns the current dashboard summary, cached or freshly computed.
func (a *Aggregator) Stats(ctx context.Context) Stats {
	if cached, ok := a.cache.Get(statsKey); ok {
		return cached
	}
	return a.Refresh(ctx)
}

// Refresh recomputes the summary and replaces the cached value. The cron
// refresher calls this so interactive reads usually hit the cache.
func (a *Aggregator) Refresh(ctx context.Context) Stats {
	var (
		wg            sync.WaitGroup
		projects      []gateway.Project
		verifications []gateway.Verification
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		projects = a.source.ListProjects(ctx)
	}()
	go func() {
		defer wg.Done()
		verifications = a.source.ListVerifications(ctx)
	}()
	wg.Wait()

	stats := Stats{
		TotalProjects: len(projects),
		ComputedAt:    time.Now().UTC(),
	}
	for _, p := range projects {
		if p.Status == gateway.ProjectStatusApproved {
			stats.ApprovedProjects++
		}
		stats.TotalCO2 += p.CO2Sequestered
	}
	for _, v := range verifications {
		if v.Status == gateway.VerificationStatusPending {
			stats.PendingVerifications++
		}
	}

	a.cache.Set(statsKey, stats)
	a.logger.Debug("dashboard stats refreshed",
		zap.Int("projects", stats.TotalProjects),
		zap.Float64("total_co2", stats.TotalCO2))
	return stats
}

// Invalidate drops the cached summary so the next read recomputes, e.g.
// after a verification status change.
func (a *Aggregator) Invalidate() {
	a.cache.Invalidate(statsKey)
}
