package recluster

import (
	"github.com/kailas-cloud/topix/internal/domain"
	"github.com/kailas-cloud/topix/internal/domain/textsim"
)

// scoreMatrix holds pairwise corpus-weighted similarities for one batch.
// Scores are computed once per pair in (i, j) order with i < j and mirrored;
// the diagonal is unused.
type scoreMatrix [][]domain.Similarity

func buildScoreMatrix(texts []string, corpus *textsim.Corpus) scoreMatrix {
	n := len(texts)
	m := make(scoreMatrix, n)
	for i := range m {
		m[i] = make([]domain.Similarity, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := corpus.Similarity(texts[i], texts[j])
			m[i][j] = score
			m[j][i] = score
		}
	}
	return m
}

// greedyPartition groups documents star-wise: each unassigned document in
// input order opens a cluster and pulls in every later unassigned document
// whose score against the center meets the join threshold. Members are never
// compared to each other, only to the center, so the result depends on input
// order. That order sensitivity is inherited behavior downstream consumers
// rely on; do not "fix" it here.
func greedyPartition(n int, m scoreMatrix, join domain.Similarity) [][]int {
	assigned := make([]bool, n)
	var clusters [][]int

	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		members := []int{i}
		assigned[i] = true

		for j := i + 1; j < n; j++ {
			if assigned[j] {
				continue
			}
			if m[i][j] >= join {
				members = append(members, j)
				assigned[j] = true
			}
		}
		clusters = append(clusters, members)
	}
	return clusters
}

// mergePass repeatedly folds together cluster pairs whose average pairwise
// member similarity meets the merge threshold. Every merge restarts the scan
// since the cluster set changed. O(k²·m²); fine for bounded batches only.
func mergePass(clusters [][]int, m scoreMatrix, merge domain.Similarity) [][]int {
restart:
	for a := 0; a < len(clusters); a++ {
		for b := a + 1; b < len(clusters); b++ {
			if avgInterSimilarity(clusters[a], clusters[b], m) >= merge {
				clusters[a] = append(clusters[a], clusters[b]...)
				clusters = append(clusters[:b], clusters[b+1:]...)
				goto restart
			}
		}
	}
	return clusters
}

func avgInterSimilarity(a, b []int, m scoreMatrix) domain.Similarity {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var sum domain.Similarity
	for _, i := range a {
		for _, j := range b {
			sum += m[i][j]
		}
	}
	return sum / domain.Similarity(len(a)*len(b))
}
