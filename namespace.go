package topix

import (
	"context"
	"fmt"

	domdoc "github.com/kailas-cloud/topix/internal/domain/document"
	assignuc "github.com/kailas-cloud/topix/internal/usecase/assign"
	recluseruc "github.com/kailas-cloud/topix/internal/usecase/recluster"
)

// NamespaceService exposes clustering operations for a single namespace.
type NamespaceService struct {
	name      string
	assignSvc *assignuc.Service
	batchSvc  *recluseruc.Service
}

// Assign places one document into the namespace's cluster set.
func (n *NamespaceService) Assign(ctx context.Context, doc Document) (Assignment, error) {
	d, err := toInternalDocument(doc)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign: %w", err)
	}

	res, err := n.assignSvc.AssignDocument(ctx, n.name, d)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign: %w", err)
	}
	return Assignment{
		ClusterID: res.ClusterID,
		Created:   res.Created,
		Distance:  float64(res.Distance),
	}, nil
}

// Recluster groups a window of documents from scratch by shared vocabulary.
// Cluster state in the database is not touched.
func (n *NamespaceService) Recluster(ctx context.Context, docs []Document) ([]Group, error) {
	internal := make([]domdoc.Document, len(docs))
	for i, doc := range docs {
		d, err := domdoc.New(doc.ID, doc.Text)
		if err != nil {
			return nil, fmt.Errorf("recluster: document %q: %w", doc.ID, err)
		}
		internal[i] = d
	}

	groups, err := n.batchSvc.Recluster(ctx, n.name, internal)
	if err != nil {
		return nil, fmt.Errorf("recluster: %w", err)
	}

	out := make([]Group, len(groups))
	for i := range groups {
		out[i] = Group{ID: groups[i].ID(), Members: groups[i].Members()}
	}
	return out, nil
}

// Clusters lists all clusters in the namespace, largest first.
func (n *NamespaceService) Clusters(ctx context.Context) ([]Cluster, error) {
	clusters, err := n.assignSvc.ListClusters(ctx, n.name)
	if err != nil {
		return nil, fmt.Errorf("clusters: %w", err)
	}

	out := make([]Cluster, len(clusters))
	for i := range clusters {
		out[i] = Cluster{
			ID:       clusters[i].ID(),
			Size:     clusters[i].Size(),
			Centroid: clusters[i].Centroid(),
		}
	}
	return out, nil
}

// Cluster returns one cluster by id.
func (n *NamespaceService) Cluster(ctx context.Context, id string) (Cluster, error) {
	c, err := n.assignSvc.GetCluster(ctx, n.name, id)
	if err != nil {
		return Cluster{}, fmt.Errorf("cluster %q: %w", id, err)
	}
	return Cluster{ID: c.ID(), Size: c.Size(), Centroid: c.Centroid()}, nil
}

func toInternalDocument(doc Document) (domdoc.Document, error) {
	if doc.Text == "" {
		return domdoc.NewEmbedded(doc.ID, doc.Embedding)
	}
	d, err := domdoc.New(doc.ID, doc.Text)
	if err != nil {
		return domdoc.Document{}, err
	}
	if len(doc.Embedding) > 0 {
		d = d.WithEmbedding(doc.Embedding)
	}
	return d, nil
}
