package cluster

import (
	"fmt"

	"github.com/kailas-cloud/topix/internal/domain"
)

// Cluster is the incremental-path cluster aggregate (immutable value object):
// a centroid vector plus the number of embeddings folded into it.
//
// Invariant: centroid is the exact arithmetic mean of every embedding ever
// absorbed, provided Absorb results are applied in order per cluster.
type Cluster struct {
	id       string
	centroid []float32
	size     int
}

// New creates a cluster seeded by a single embedding: centroid equals the
// seed, size is 1.
func New(id string, seed []float32) (Cluster, error) {
	if id == "" {
		return Cluster{}, fmt.Errorf("cluster ID is required")
	}
	if len(seed) == 0 {
		return Cluster{}, fmt.Errorf("seed embedding is required")
	}
	return Cluster{id: id, centroid: cloneVector(seed), size: 1}, nil
}

// Reconstruct creates a Cluster without validation (storage hydration).
func Reconstruct(id string, centroid []float32, size int) Cluster {
	return Cluster{id: id, centroid: centroid, size: size}
}

// ID returns the cluster identifier.
func (c *Cluster) ID() string { return c.id }

// Centroid returns the mean embedding vector.
func (c *Cluster) Centroid() []float32 { return c.centroid }

// Size returns the member count.
func (c *Cluster) Size() int { return c.size }

// Absorb folds one embedding into the centroid as an exact incremental
// running mean:
//
//	new = old + (e - old) / (size + 1)
//
// computed with the size *before* incrementing, then increments size. The
// result equals the true mean of all absorbed embeddings at every step; no
// drift accumulates. Callers must serialize Absorb per cluster.
func (c *Cluster) Absorb(embedding []float32) (Cluster, error) {
	if len(embedding) != len(c.centroid) {
		return Cluster{}, fmt.Errorf("%w: centroid has %d dims, embedding has %d",
			domain.ErrVectorDimMismatch, len(c.centroid), len(embedding))
	}

	next := make([]float32, len(c.centroid))
	n := float32(c.size + 1)
	for i, old := range c.centroid {
		next[i] = old + (embedding[i]-old)/n
	}

	return Cluster{id: c.id, centroid: next, size: c.size + 1}, nil
}

// Merge combines two clusters into the receiver's identity: the centroid is
// the size-weighted mean of both centroids and sizes are summed. Used only
// by the maintenance consolidation sweep, never on the assignment path.
func (c *Cluster) Merge(other Cluster) (Cluster, error) {
	if len(other.centroid) != len(c.centroid) {
		return Cluster{}, fmt.Errorf("%w: centroid has %d dims, other has %d",
			domain.ErrVectorDimMismatch, len(c.centroid), len(other.centroid))
	}

	total := float32(c.size + other.size)
	merged := make([]float32, len(c.centroid))
	for i := range merged {
		merged[i] = (c.centroid[i]*float32(c.size) + other.centroid[i]*float32(other.size)) / total
	}

	return Cluster{id: c.id, centroid: merged, size: c.size + other.size}, nil
}

// Group is the batch-path cluster: an ordered set of member document ids.
// Created transiently for one batch invocation and never persisted here.
type Group struct {
	id      string
	members []string
}

// NewGroup creates a batch group.
func NewGroup(id string, members []string) Group {
	return Group{id: id, members: members}
}

// ID returns the group identifier.
func (g *Group) ID() string { return g.id }

// Members returns member document ids in assignment order.
func (g *Group) Members() []string { return g.members }

// Size returns the member count.
func (g *Group) Size() int { return len(g.members) }

func cloneVector(v []float32) []float32 {
	c := make([]float32, len(v))
	copy(c, v)
	return c
}
