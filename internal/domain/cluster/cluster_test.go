package cluster

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/topix/internal/domain"
)

func TestNew_SeedsCentroid(t *testing.T) {
	seed := []float32{0.1, 0.2, 0.3}
	c, err := New("c1", seed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Size() != 1 {
		t.Errorf("expected size 1, got %d", c.Size())
	}
	for i := range seed {
		if c.Centroid()[i] != seed[i] {
			t.Fatalf("centroid differs from seed at [%d]", i)
		}
	}

	// Seed is cloned; mutating the caller's slice must not reach the centroid.
	seed[0] = 99
	if c.Centroid()[0] == 99 {
		t.Error("centroid aliases the seed slice")
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("", []float32{1}); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := New("c1", nil); err == nil {
		t.Error("expected error for empty seed")
	}
}

func TestAbsorb_SecondEmbedding(t *testing.T) {
	c, _ := New("c1", []float32{1, 0})

	// new = old + (e - old) / 2 — the exact mean of both embeddings.
	updated, err := c.Absorb([]float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Size() != 2 {
		t.Errorf("expected size 2, got %d", updated.Size())
	}
	want := []float32{0.5, 0.5}
	for i := range want {
		if updated.Centroid()[i] != want[i] {
			t.Errorf("centroid[%d]: expected %f, got %f", i, want[i], updated.Centroid()[i])
		}
	}

	// Original value is untouched.
	if c.Size() != 1 || c.Centroid()[0] != 1 {
		t.Error("Absorb mutated the receiver")
	}
}

func TestAbsorb_RunningMeanMatchesBatchMean(t *testing.T) {
	embeddings := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
		{-2, 0, 2},
		{0.5, 0.5, 0.5},
		{10, -10, 0},
	}

	c, _ := New("c1", embeddings[0])
	for _, e := range embeddings[1:] {
		var err error
		c, err = c.Absorb(e)
		if err != nil {
			t.Fatalf("absorb: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		var sum float64
		for _, e := range embeddings {
			sum += float64(e[i])
		}
		mean := sum / float64(len(embeddings))
		if got := float64(c.Centroid()[i]); math.Abs(got-mean) > 1e-5 {
			t.Errorf("centroid[%d]: expected batch mean %f, got %f", i, mean, got)
		}
	}
	if c.Size() != len(embeddings) {
		t.Errorf("expected size %d, got %d", len(embeddings), c.Size())
	}
}

func TestAbsorb_DimMismatch(t *testing.T) {
	c, _ := New("c1", []float32{1, 2, 3})
	_, err := c.Absorb([]float32{1, 2})
	if err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestMerge_WeightedMean(t *testing.T) {
	a := Reconstruct("a", []float32{1, 1}, 3)
	b := Reconstruct("b", []float32{5, 5}, 1)

	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if merged.ID() != "a" {
		t.Errorf("merged cluster should keep the receiver id, got %s", merged.ID())
	}
	if merged.Size() != 4 {
		t.Errorf("expected size 4, got %d", merged.Size())
	}
	// (3*1 + 1*5) / 4 = 2
	for i := range merged.Centroid() {
		if got := merged.Centroid()[i]; math.Abs(float64(got)-2) > 1e-6 {
			t.Errorf("centroid[%d]: expected 2, got %f", i, got)
		}
	}
}

func TestMerge_DimMismatch(t *testing.T) {
	a := Reconstruct("a", []float32{1, 1}, 1)
	b := Reconstruct("b", []float32{1}, 1)
	if _, err := a.Merge(b); !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}
