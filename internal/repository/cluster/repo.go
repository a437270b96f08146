package cluster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/topix/internal/db"
	"github.com/kailas-cloud/topix/internal/domain"
	domclu "github.com/kailas-cloud/topix/internal/domain/cluster"
)

// store is the consumer interface for cluster persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Incr(ctx context.Context, key string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index parameters for centroid indexes.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo persists cluster centroids in Redis: one hash per cluster, one FT
// vector index per namespace for nearest-centroid lookup. The index is
// created lazily on the first cluster of a namespace.
type Repo struct {
	store     store
	keyPrefix string
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a cluster repository.
func New(s store, keyPrefix string, vectorDim int) *Repo {
	return &Repo{
		store:     s,
		keyPrefix: keyPrefix,
		vectorDim: vectorDim,
		hnsw:      HNSWConfig{M: 16, EFConstruct: 200},
	}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// FindNearest returns the single closest centroid to the embedding by
// cosine distance, or found=false when the namespace holds no clusters yet.
func (r *Repo) FindNearest(ctx context.Context, ns string, embedding []float32) (string, domain.Distance, bool, error) {
	if len(embedding) != r.vectorDim {
		return "", 0, false, fmt.Errorf("%w: store expects %d dims, got %d",
			domain.ErrVectorDimMismatch, r.vectorDim, len(embedding))
	}

	q := &db.KNNQuery{
		IndexName:    r.indexName(ns),
		Vector:       embedding,
		K:            1,
		ReturnFields: []string{fieldSize},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		// Namespace without an index is an empty store, not a failure.
		if errors.Is(err, db.ErrIndexNotFound) {
			return "", 0, false, nil
		}
		return "", 0, false, fmt.Errorf("search nearest centroid %s: %w", ns, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return "", 0, false, nil
	}

	entry := sr.Entries[0]
	id := strings.TrimPrefix(entry.Key, r.clusterKey(ns, ""))
	return id, domain.Distance(entry.Distance), true, nil
}

// Create persists a new cluster whose centroid equals the seed and whose
// size is 1, creating the namespace index if this is the first cluster.
func (r *Repo) Create(ctx context.Context, ns string, seed []float32) (string, error) {
	if len(seed) != r.vectorDim {
		return "", fmt.Errorf("%w: store expects %d dims, got %d",
			domain.ErrVectorDimMismatch, r.vectorDim, len(seed))
	}

	if err := r.ensureIndex(ctx, ns); err != nil {
		return "", err
	}

	seq, err := r.store.Incr(ctx, r.seqKey(ns))
	if err != nil {
		return "", fmt.Errorf("next cluster id %s: %w", ns, err)
	}
	id := fmt.Sprintf("c%d", seq)

	c, err := domclu.New(id, seed)
	if err != nil {
		return "", fmt.Errorf("seed cluster: %w", err)
	}

	if err := r.store.HSet(ctx, r.clusterKey(ns, id), clusterToHash(c)); err != nil {
		return "", fmt.Errorf("hset cluster %s/%s: %w", ns, id, err)
	}

	return id, nil
}

// UpdateCentroid folds the embedding into the stored centroid as an exact
// running mean, using the member count as stored (i.e. before the matching
// IncrementSize call). The caller must serialize UpdateCentroid and
// IncrementSize per cluster; see usecase/assign.
func (r *Repo) UpdateCentroid(ctx context.Context, ns, id string, embedding []float32) error {
	c, err := r.Get(ctx, ns, id)
	if err != nil {
		return err
	}

	updated, err := c.Absorb(embedding)
	if err != nil {
		return fmt.Errorf("absorb into %s/%s: %w", ns, id, err)
	}

	fields := map[string]string{fieldVector: vectorToBytes(updated.Centroid())}
	if err := r.store.HSet(ctx, r.clusterKey(ns, id), fields); err != nil {
		return fmt.Errorf("hset centroid %s/%s: %w", ns, id, err)
	}
	return nil
}

// IncrementSize bumps the member count by one (atomic on the server).
func (r *Repo) IncrementSize(ctx context.Context, ns, id string) error {
	if _, err := r.store.HIncrBy(ctx, r.clusterKey(ns, id), fieldSize, 1); err != nil {
		return fmt.Errorf("hincrby size %s/%s: %w", ns, id, err)
	}
	return nil
}

// Get retrieves a cluster by id.
func (r *Repo) Get(ctx context.Context, ns, id string) (domclu.Cluster, error) {
	m, err := r.store.HGetAll(ctx, r.clusterKey(ns, id))
	if err != nil {
		return domclu.Cluster{}, fmt.Errorf("hgetall cluster %s/%s: %w", ns, id, err)
	}
	if len(m) == 0 {
		// Distinguish a dead id from a namespace nothing was ever assigned
		// to. The seq key exists from the first Create on.
		known, exErr := r.store.Exists(ctx, r.seqKey(ns))
		if exErr != nil {
			return domclu.Cluster{}, fmt.Errorf("exists namespace %s: %w", ns, exErr)
		}
		if !known {
			return domclu.Cluster{}, domain.ErrNamespaceNotFound
		}
		return domclu.Cluster{}, domain.ErrClusterNotFound
	}
	return clusterFromHash(id, m)
}

// List returns all clusters in a namespace sorted by descending size.
func (r *Repo) List(ctx context.Context, ns string) ([]domclu.Cluster, error) {
	keys, err := r.store.Scan(ctx, r.clusterKey(ns, "*"))
	if err != nil {
		return nil, fmt.Errorf("scan clusters %s: %w", ns, err)
	}
	if len(keys) == 0 {
		return []domclu.Cluster{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi clusters %s: %w", ns, err)
	}

	clusters := make([]domclu.Cluster, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		id := strings.TrimPrefix(keys[i], r.clusterKey(ns, ""))
		c, err := clusterFromHash(id, m)
		if err != nil {
			return nil, fmt.Errorf("parse cluster %s: %w", keys[i], err)
		}
		clusters = append(clusters, c)
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size() != clusters[j].Size() {
			return clusters[i].Size() > clusters[j].Size()
		}
		return clusters[i].ID() < clusters[j].ID()
	})

	return clusters, nil
}

// Replace overwrites a cluster's centroid and size (maintenance merges).
func (r *Repo) Replace(ctx context.Context, ns string, c domclu.Cluster) error {
	if err := r.store.HSet(ctx, r.clusterKey(ns, c.ID()), clusterToHash(c)); err != nil {
		return fmt.Errorf("hset cluster %s/%s: %w", ns, c.ID(), err)
	}
	return nil
}

// Delete removes a cluster (maintenance merges only; the assignment path
// never deletes).
func (r *Repo) Delete(ctx context.Context, ns, id string) error {
	if err := r.store.Del(ctx, r.clusterKey(ns, id)); err != nil {
		return fmt.Errorf("del cluster %s/%s: %w", ns, id, err)
	}
	return nil
}

// Namespaces lists every namespace that has ever created a cluster, by
// scanning the per-namespace id sequence keys.
func (r *Repo) Namespaces(ctx context.Context) ([]string, error) {
	pattern := r.seqKey("*")
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan namespaces: %w", err)
	}

	namespaces := make([]string, 0, len(keys))
	for _, k := range keys {
		ns := strings.TrimSuffix(strings.TrimPrefix(k, r.keyPrefix), ":seq")
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces, nil
}

// ensureIndex creates the namespace centroid index if missing.
func (r *Repo) ensureIndex(ctx context.Context, ns string) error {
	def := &db.IndexDefinition{
		Name:     r.indexName(ns),
		Prefixes: []string{r.clusterKey(ns, "")},
		Vector: db.VectorField{
			Name:            fieldVector,
			Algo:            db.VectorHNSW,
			Dim:             r.vectorDim,
			Distance:        db.DistanceCosine,
			HNSWM:           r.hnsw.M,
			HNSWEFConstruct: r.hnsw.EFConstruct,
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create centroid index %s: %w", ns, err)
	}
	return nil
}

// Redis key patterns: topix:{ns}:cluster:{id}, topix:{ns}:idx, topix:{ns}:seq

func (r *Repo) clusterKey(ns, id string) string {
	return fmt.Sprintf("%s%s:cluster:%s", r.keyPrefix, ns, id)
}

func (r *Repo) indexName(ns string) string {
	return fmt.Sprintf("%s%s:idx", r.keyPrefix, ns)
}

func (r *Repo) seqKey(ns string) string {
	return fmt.Sprintf("%s%s:seq", r.keyPrefix, ns)
}
