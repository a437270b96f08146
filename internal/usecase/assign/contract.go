package assign

import (
	"context"

	"github.com/kailas-cloud/topix/internal/domain"
	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ClusterStore defines the storage contract for cluster centroids.
type ClusterStore interface {
	FindNearest(ctx context.Context, ns string, embedding []float32) (
		clusterID string, dist domain.Distance, found bool, err error,
	)
	Create(ctx context.Context, ns string, seed []float32) (string, error)
	UpdateCentroid(ctx context.Context, ns, id string, embedding []float32) error
	IncrementSize(ctx context.Context, ns, id string) error
	Get(ctx context.Context, ns, id string) (domclu.Cluster, error)
	List(ctx context.Context, ns string) ([]domclu.Cluster, error)
}
