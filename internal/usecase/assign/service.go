package assign

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/topix/internal/domain"
	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/topix/internal/domain/document"
)

// DefaultJoinDistance is the cosine distance below which an embedding joins
// its nearest cluster instead of seeding a new one.
const DefaultJoinDistance domain.Distance = 0.3

const lockStripes = 64

// Assignment is the outcome of placing one embedding.
type Assignment struct {
	ClusterID string
	Created   bool
	Distance  domain.Distance
}

// Service places embeddings into clusters one at a time: nearest-centroid
// lookup, then join-or-create against the distance threshold. A join folds
// the embedding into the centroid as an exact running mean.
type Service struct {
	clusters     ClusterStore
	embedder     Embedder
	joinDistance domain.Distance

	// Striped per-cluster locks. A join is a read-modify-write of the
	// centroid followed by a size increment; interleaving two joins on the
	// same cluster would corrupt the running mean.
	locks [lockStripes]sync.Mutex

	assignsTotal *prometheus.CounterVec
	logger       *zap.Logger
}

// New creates an assignment service.
// assignsTotal is a counter vec with label "outcome" ("joined"/"created"),
// passed explicitly.
func New(clusters ClusterStore, embedder Embedder, assignsTotal *prometheus.CounterVec, logger *zap.Logger) *Service {
	return &Service{
		clusters:     clusters,
		embedder:     embedder,
		joinDistance: DefaultJoinDistance,
		assignsTotal: assignsTotal,
		logger:       logger,
	}
}

// WithJoinDistance overrides the join threshold.
func (s *Service) WithJoinDistance(d domain.Distance) *Service {
	if d > 0 {
		s.joinDistance = d
	}
	return s
}

// AssignDocument places one document into the namespace's cluster set,
// vectorizing its text first unless the caller supplied an embedding.
func (s *Service) AssignDocument(ctx context.Context, ns string, doc domdoc.Document) (Assignment, error) {
	embedding := doc.Embedding()
	if len(embedding) == 0 {
		result, err := s.embedder.Embed(ctx, doc.Text())
		if err != nil {
			return Assignment{}, fmt.Errorf("vectorize document %s: %w: %w",
				doc.ID(), domain.ErrEmbeddingProviderError, err)
		}
		embedding = result.Embedding
	}

	return s.Assign(ctx, ns, embedding)
}

// Assign places one embedding into the namespace's cluster set.
//
// The nearest-centroid lookup runs outside the cluster lock; only the
// centroid update and size increment are serialized per cluster. A lookup
// may therefore observe a centroid mid-stream of another join, which moves
// it by at most one running-mean step.
func (s *Service) Assign(ctx context.Context, ns string, embedding []float32) (Assignment, error) {
	if err := domain.ValidateNamespace(ns); err != nil {
		return Assignment{}, err
	}
	if len(embedding) == 0 {
		return Assignment{}, fmt.Errorf("embedding is required: %w", domain.ErrEmptyDocument)
	}

	id, dist, found, err := s.clusters.FindNearest(ctx, ns, embedding)
	if err != nil {
		return Assignment{}, fmt.Errorf("find nearest cluster: %w", err)
	}

	if found && dist < s.joinDistance {
		if err := s.join(ctx, ns, id, embedding); err != nil {
			return Assignment{}, err
		}
		s.incAssign("joined")
		s.logger.Debug("Embedding joined cluster",
			zap.String("namespace", ns),
			zap.String("cluster_id", id),
			zap.Float64("distance", float64(dist)),
		)
		return Assignment{ClusterID: id, Distance: dist}, nil
	}

	newID, err := s.clusters.Create(ctx, ns, embedding)
	if err != nil {
		return Assignment{}, fmt.Errorf("create cluster: %w", err)
	}
	s.incAssign("created")
	s.logger.Debug("Embedding seeded new cluster",
		zap.String("namespace", ns),
		zap.String("cluster_id", newID),
		zap.Float64("nearest_distance", float64(dist)),
	)
	return Assignment{ClusterID: newID, Created: true, Distance: dist}, nil
}

// GetCluster returns a cluster by id.
func (s *Service) GetCluster(ctx context.Context, ns, id string) (domclu.Cluster, error) {
	if err := domain.ValidateNamespace(ns); err != nil {
		return domclu.Cluster{}, err
	}

	c, err := s.clusters.Get(ctx, ns, id)
	if err != nil {
		return domclu.Cluster{}, fmt.Errorf("get cluster: %w", err)
	}
	return c, nil
}

// ListClusters returns all clusters in a namespace.
func (s *Service) ListClusters(ctx context.Context, ns string) ([]domclu.Cluster, error) {
	if err := domain.ValidateNamespace(ns); err != nil {
		return nil, err
	}

	clusters, err := s.clusters.List(ctx, ns)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	return clusters, nil
}

func (s *Service) join(ctx context.Context, ns, id string, embedding []float32) error {
	mu := s.lockFor(ns, id)
	mu.Lock()
	defer mu.Unlock()

	// Centroid first, with the stored size, then the increment. Reversing
	// the order would weight the new member twice.
	if err := s.clusters.UpdateCentroid(ctx, ns, id, embedding); err != nil {
		return fmt.Errorf("update centroid: %w", err)
	}
	if err := s.clusters.IncrementSize(ctx, ns, id); err != nil {
		return fmt.Errorf("increment cluster size: %w", err)
	}
	return nil
}

func (s *Service) lockFor(ns, id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(ns))
	h.Write([]byte{'/'})
	h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}

func (s *Service) incAssign(outcome string) {
	if s.assignsTotal != nil {
		s.assignsTotal.WithLabelValues(outcome).Inc()
	}
}
