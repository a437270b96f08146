// Package maintenance consolidates clusters that drift too close together
// over time. The incremental assignment path never merges or retires
// clusters, so without this sweep a namespace slowly accumulates
// near-duplicate topics.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/topix/internal/domain"
)

// DefaultMergeDistance is the cosine distance below which two centroids are
// considered the same topic. Deliberately stricter than the assignment join
// threshold; consolidation must only fold together clusters that have
// genuinely converged.
const DefaultMergeDistance domain.Distance = 0.1

// DefaultInterval is the period between consolidation sweeps.
const DefaultInterval = time.Hour

// Config holds the consolidation schedule and threshold.
type Config struct {
	Interval      time.Duration
	MergeDistance domain.Distance
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MergeDistance <= 0 {
		c.MergeDistance = DefaultMergeDistance
	}
}

// Service runs periodic centroid consolidation across all namespaces.
type Service struct {
	clusters ClusterStore
	cfg      Config

	mergesTotal prometheus.Counter
	logger      *zap.Logger
	stopCh      chan struct{}
}

// New creates a consolidation service.
// mergesTotal counts merged-away clusters, passed explicitly.
func New(clusters ClusterStore, cfg Config, mergesTotal prometheus.Counter, logger *zap.Logger) *Service {
	cfg.ApplyDefaults()
	return &Service{
		clusters:    clusters,
		cfg:         cfg,
		mergesTotal: mergesTotal,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is done or Stop is called.
// Call from a goroutine.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info("Cluster consolidation scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Float64("merge_distance", float64(s.cfg.MergeDistance)),
	)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Cluster consolidation scheduler stopping (context done)")
			return
		case <-s.stopCh:
			s.logger.Info("Cluster consolidation scheduler stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.RunSweep(ctx); err != nil {
				s.logger.Error("Consolidation sweep failed", zap.Error(err))
			}
		}
	}
}

// Stop signals the scheduler to shut down gracefully.
func (s *Service) Stop() {
	select {
	case <-s.stopCh:
		// Already stopped
	default:
		close(s.stopCh)
	}
}

// RunSweep consolidates every namespace once.
func (s *Service) RunSweep(ctx context.Context) error {
	start := time.Now()

	namespaces, err := s.clusters.Namespaces(ctx)
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}

	merged := 0
	for _, ns := range namespaces {
		if ctx.Err() != nil {
			break
		}
		n, err := s.consolidateNamespace(ctx, ns)
		if err != nil {
			s.logger.Warn("Namespace consolidation failed",
				zap.String("namespace", ns), zap.Error(err))
			continue
		}
		merged += n
	}

	s.logger.Info("Consolidation sweep complete",
		zap.Int("namespaces", len(namespaces)),
		zap.Int("merged", merged),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// consolidateNamespace folds together centroid pairs closer than the merge
// distance. The surviving cluster takes the size-weighted mean centroid and
// the combined count; every merge restarts the pairwise scan, same shape as
// the batch builder's merge pass.
func (s *Service) consolidateNamespace(ctx context.Context, ns string) (int, error) {
	clusters, err := s.clusters.List(ctx, ns)
	if err != nil {
		return 0, fmt.Errorf("list clusters: %w", err)
	}

	merged := 0
restart:
	for a := 0; a < len(clusters); a++ {
		for b := a + 1; b < len(clusters); b++ {
			dist := domain.CosineDistance(clusters[a].Centroid(), clusters[b].Centroid())
			if dist >= s.cfg.MergeDistance {
				continue
			}

			combined, err := clusters[a].Merge(clusters[b])
			if err != nil {
				return merged, fmt.Errorf("merge %s into %s: %w",
					clusters[b].ID(), clusters[a].ID(), err)
			}

			if err := s.clusters.Replace(ctx, ns, combined); err != nil {
				return merged, fmt.Errorf("replace cluster %s: %w", combined.ID(), err)
			}
			if err := s.clusters.Delete(ctx, ns, clusters[b].ID()); err != nil {
				return merged, fmt.Errorf("delete cluster %s: %w", clusters[b].ID(), err)
			}

			s.logger.Debug("Merged converged clusters",
				zap.String("namespace", ns),
				zap.String("kept", combined.ID()),
				zap.String("removed", clusters[b].ID()),
				zap.Float64("distance", float64(dist)),
			)
			if s.mergesTotal != nil {
				s.mergesTotal.Inc()
			}
			merged++

			clusters[a] = combined
			clusters = append(clusters[:b], clusters[b+1:]...)
			goto restart
		}
	}

	return merged, nil
}
