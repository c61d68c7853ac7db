package retrieval

import "math"

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SelectMMR picks k candidate indices by maximal marginal relevance.
// relevance holds each candidate's similarity to the query; lambda trades
// relevance (1.0) against diversity (0.0). Candidates are assumed to be
// pre-sorted by relevance, so the first pick is always index 0.
func SelectMMR(vectors [][]float32, relevance []float64, k int, lambda float64) []int {
	n := len(vectors)
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	selected := make([]int, 0, k)
	remaining := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		remaining[i] = true
	}

	selected = append(selected, 0)
	delete(remaining, 0)

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)

		for i := range remaining {
			maxSim := math.Inf(-1)
			for _, j := range selected {
				if sim := CosineSimilarity(vectors[i], vectors[j]); sim > maxSim {
					maxSim = sim
				}
			}

			score := lambda*relevance[i] - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				best = i
			}
		}

		if best < 0 {
			break
		}
		selected = append(selected, best)
		delete(remaining, best)
	}

	return selected
}
