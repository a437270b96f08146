package maintenance

import (
	"context"

	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
)

// ClusterStore is the subset of cluster storage the consolidation sweep needs.
type ClusterStore interface {
	Namespaces(ctx context.Context) ([]string, error)
	List(ctx context.Context, ns string) ([]domclu.Cluster, error)
	Replace(ctx context.Context, ns string, c domclu.Cluster) error
	Delete(ctx context.Context, ns, id string) error
}
