// Package local provides an in-process embedding encoder that needs no
// network or model download. Vectors come from feature hashing of word tokens
// and character trigrams, so identical text always yields the identical vector.
package local

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
)

// DefaultDimensions is the vector size used when none is configured.
const DefaultDimensions = 384

// ModelName identifies vectors produced by this encoder in caches and metrics.
const ModelName = "hashing-v1"

const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// Embedder is a deterministic feature-hashing encoder.
type Embedder struct {
	dimensions int
}

// NewEmbedder creates an encoder producing vectors of the given size.
func NewEmbedder(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed implements domain.Embedder. Text with no letters or digits cannot be
// encoded and yields domain.ErrEncoding rather than a zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	vec, features := e.vector(text)
	if features == 0 {
		metrics.EmbeddingErrorsTotal.WithLabelValues("local", ModelName, "no_features").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("text has no encodable features: %w", domain.ErrEncoding)
	}
	if !normalize(vec) {
		metrics.EmbeddingErrorsTotal.WithLabelValues("local", ModelName, "zero_norm").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("features cancelled to a zero vector: %w", domain.ErrEncoding)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues("local", ModelName, "success").Inc()
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, e, texts)
}

func (e *Embedder) vector(text string) ([]float32, int) {
	vec := make([]float32, e.dimensions)
	features := 0

	for _, tok := range tokenize(text) {
		e.add(vec, "t:"+tok, tokenWeight)
		features++
	}

	runes := []rune(compact(text))
	for i := 0; i+ngramSize <= len(runes); i++ {
		e.add(vec, "g:"+string(runes[i:i+ngramSize]), ngramWeight)
		features++
	}
	return vec, features
}

// add hashes feature into a bucket; one hash bit picks the sign so
// collisions tend to cancel instead of accumulate.
func (e *Embedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize lowercases and splits on anything that is not a letter or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}

// compact keeps lowercase letters, digits and marks for trigram extraction.
func compact(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalize scales vec to unit length in place; false for a zero vector.
func normalize(vec []float32) bool {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return false
	}
	inv := 1 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return true
}
