// Package similarity scores query vectors against corpus vectors.
package similarity

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// Floor is the score assigned to degenerate comparisons (zero norm or
// mismatched dimensions). It is the minimum of the cosine range, so such a
// verse can never win against a real match.
const Floor = -1.0

// Match is the best verse for a query and its cosine score.
type Match struct {
	Verse verse.Verse
	Score float64
}

// Cosine returns dot(a,b) / (|a|*|b|) in [-1, 1], accumulated in float64.
// Returns Floor when either vector has zero norm or the lengths differ.
func Cosine(a, b []float32) float64 {
	sim, ok := cosine(a, b)
	if !ok {
		return Floor
	}
	return sim
}

// cosine reports ok=false for degenerate pairs, which Best must not rank.
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return Floor, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return Floor, false
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return Floor, false
	}
	// Clamp rounding drift so self-similarity never exceeds 1.
	return math.Max(Floor, math.Min(1, sim)), true
}

// Best scores every verse in corpus against query and returns the top match.
// Verses whose vector is zero-norm or of another dimension are skipped, never
// returned. Ties keep the first verse in corpus order, so identical input
// always yields the same verse. Returns domain.ErrEmptyCorpus when corpus is
// empty or no verse is comparable with query.
func Best(query []float32, corpus []verse.Verse) (Match, error) {
	if len(corpus) == 0 {
		return Match{}, domain.ErrEmptyCorpus
	}

	var best Match
	found := false
	for i := range corpus {
		score, ok := cosine(query, corpus[i].Embedding())
		if !ok {
			continue
		}
		if !found || score > best.Score {
			best = Match{Verse: corpus[i], Score: score}
			found = true
		}
	}
	if !found {
		return Match{}, fmt.Errorf("none of %d verses is comparable with a %d-dimension query: %w",
			len(corpus), len(query), domain.ErrEmptyCorpus)
	}
	return best, nil
}
