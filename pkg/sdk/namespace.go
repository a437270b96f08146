package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// NamespaceService exposes clustering operations for a single namespace.
type NamespaceService struct {
	client *Client
	name   string
}

func (n *NamespaceService) path(suffix string) string {
	return fmt.Sprintf("/api/v1/namespaces/%s%s", url.PathEscape(n.name), suffix)
}

// Assign places one document into the namespace's cluster set.
func (n *NamespaceService) Assign(ctx context.Context, doc Document) (Assignment, error) {
	var res Assignment
	if err := n.client.do(ctx, http.MethodPost, n.path("/documents"), doc, &res); err != nil {
		return Assignment{}, fmt.Errorf("assign: %w", err)
	}
	return res, nil
}

// Recluster groups a window of documents from scratch by shared vocabulary.
func (n *NamespaceService) Recluster(ctx context.Context, docs []Document) ([]Group, error) {
	req := struct {
		Documents []Document `json:"documents"`
	}{Documents: docs}

	var resp struct {
		Groups []Group `json:"groups"`
	}
	if err := n.client.do(ctx, http.MethodPost, n.path("/recluster"), req, &resp); err != nil {
		return nil, fmt.Errorf("recluster: %w", err)
	}
	return resp.Groups, nil
}

// Clusters lists all clusters in the namespace, largest first.
// Centroids are omitted; use Cluster for a single full record.
func (n *NamespaceService) Clusters(ctx context.Context) ([]Cluster, error) {
	var resp struct {
		Items []Cluster `json:"items"`
	}
	if err := n.client.do(ctx, http.MethodGet, n.path("/clusters"), nil, &resp); err != nil {
		return nil, fmt.Errorf("clusters: %w", err)
	}
	return resp.Items, nil
}

// Cluster returns one cluster by id, centroid included.
func (n *NamespaceService) Cluster(ctx context.Context, id string) (Cluster, error) {
	var res Cluster
	path := n.path("/clusters/" + url.PathEscape(id))
	if err := n.client.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return Cluster{}, fmt.Errorf("cluster %q: %w", id, err)
	}
	return res, nil
}
