package topix

import (
	"context"
	"fmt"
)

// Topics is a generic, schema-first handle over one namespace.
// Field roles are inferred from T's struct tags at construction time.
type Topics[T any] struct {
	ns   *NamespaceService
	meta *schemaMeta
}

// NewTopics creates a typed namespace handle.
// T must be a struct with topix tags. Schema is parsed once and cached.
func NewTopics[T any](client *Client, namespace string) (*Topics[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new topics %q: %w", namespace, err)
	}
	return &Topics[T]{ns: client.Namespace(namespace), meta: meta}, nil
}

// Assign places one typed item into the namespace's cluster set.
func (t *Topics[T]) Assign(ctx context.Context, item T) (Assignment, error) {
	doc, err := t.meta.toDocument(item)
	if err != nil {
		return Assignment{}, fmt.Errorf("assign: %w", err)
	}
	return t.ns.Assign(ctx, doc)
}

// Recluster groups a window of typed items by shared vocabulary.
func (t *Topics[T]) Recluster(ctx context.Context, items []T) ([]Group, error) {
	docs := make([]Document, len(items))
	for i, item := range items {
		var err error
		docs[i], err = t.meta.toDocument(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return t.ns.Recluster(ctx, docs)
}

// Clusters lists all clusters in the namespace, largest first.
func (t *Topics[T]) Clusters(ctx context.Context) ([]Cluster, error) {
	return t.ns.Clusters(ctx)
}

// Cluster returns one cluster by id.
func (t *Topics[T]) Cluster(ctx context.Context, id string) (Cluster, error) {
	return t.ns.Cluster(ctx, id)
}
