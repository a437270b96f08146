package recluster

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/topix/internal/domain"
	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/topix/internal/domain/document"
	"github.com/kailas-cloud/topix/internal/domain/textsim"
)

// Default thresholds for the batch path. Both are token-overlap scores; they
// live on a different scale than the assignment engine's cosine distance and
// must never be checked against one.
const (
	DefaultJoinThreshold  domain.Similarity = 0.5
	DefaultMergeThreshold domain.Similarity = 0.65
)

// DefaultMaxBatch caps one recluster invocation. The merge pass is
// O(k²·m²), so the window has to stay bounded.
const DefaultMaxBatch = 500

// Service partitions a bounded document window into topic clusters. Pure
// computation staged as tokenize → score matrix → greedy partition → merge
// pass; no I/O, deterministic for a fixed input order.
type Service struct {
	joinThreshold  domain.Similarity
	mergeThreshold domain.Similarity
	maxBatch       int

	duration prometheus.Histogram
	logger   *zap.Logger
}

// New creates a batch clustering service.
// duration is a histogram observing seconds per invocation, passed explicitly.
func New(duration prometheus.Histogram, logger *zap.Logger) *Service {
	return &Service{
		joinThreshold:  DefaultJoinThreshold,
		mergeThreshold: DefaultMergeThreshold,
		maxBatch:       DefaultMaxBatch,
		duration:       duration,
		logger:         logger,
	}
}

// WithThresholds overrides the join and merge thresholds.
func (s *Service) WithThresholds(join, merge domain.Similarity) *Service {
	if join > 0 {
		s.joinThreshold = join
	}
	if merge > 0 {
		s.mergeThreshold = merge
	}
	return s
}

// WithMaxBatch overrides the batch size cap.
func (s *Service) WithMaxBatch(n int) *Service {
	if n > 0 {
		s.maxBatch = n
	}
	return s
}

// Recluster partitions the documents into clusters by pairwise text
// similarity. Every document lands in exactly one group. Results are
// transient; persisting them is the caller's concern.
func (s *Service) Recluster(ctx context.Context, ns string, docs []domdoc.Document) ([]domclu.Group, error) {
	if err := domain.ValidateNamespace(ns); err != nil {
		return nil, err
	}
	if len(docs) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d documents, cap is %d",
			domain.ErrBatchTooLarge, len(docs), s.maxBatch)
	}
	if len(docs) == 0 {
		return []domclu.Group{}, nil
	}

	start := time.Now()

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text()
	}

	corpus := textsim.NewCorpus(texts)
	matrix := buildScoreMatrix(texts, corpus)
	partition := greedyPartition(len(docs), matrix, s.joinThreshold)
	partition = mergePass(partition, matrix, s.mergeThreshold)

	groups := make([]domclu.Group, len(partition))
	for g, members := range partition {
		ids := make([]string, len(members))
		for k, i := range members {
			ids[k] = docs[i].ID()
		}
		groups[g] = domclu.NewGroup(fmt.Sprintf("g%d", g+1), ids)
	}

	elapsed := time.Since(start)
	if s.duration != nil {
		s.duration.Observe(elapsed.Seconds())
	}
	s.logger.Info("Batch recluster finished",
		zap.String("namespace", ns),
		zap.Int("documents", len(docs)),
		zap.Int("clusters", len(groups)),
		zap.Duration("elapsed", elapsed),
	)

	return groups, nil
}
