// Package memory provides an in-process vector index for development and
// tests. Search is an exhaustive cosine-similarity scan, which is fine for
// a policy corpus of a few hundred fragments.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
)

type Index struct {
	mu        sync.RWMutex
	fragments []*model.Fragment

	llmClient gollem.LLMClient
}

var _ interfaces.VectorIndex = &Index{}

// New creates an empty in-memory index. The LLM client is used to embed
// fragments and queries.
func New(llmClient gollem.LLMClient) *Index {
	return &Index{
		llmClient: llmClient,
	}
}

func (x *Index) Rebuild(ctx context.Context, fragments []*model.Fragment) error {
	indexed := make([]*model.Fragment, 0, len(fragments))
	for _, f := range fragments {
		copied := f.Clone()
		if len(copied.Embedding) == 0 {
			embedding, err := generateEmbedding(ctx, x.llmClient, copied.Content)
			if err != nil {
				return goerr.Wrap(err, "failed to embed fragment", goerr.V("source", copied.Source))
			}
			copied.Embedding = embedding
		}
		indexed = append(indexed, copied)
	}

	x.mu.Lock()
	x.fragments = indexed
	x.mu.Unlock()

	return nil
}

func (x *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Fragment, error) {
	embedding, err := generateEmbedding(ctx, x.llmClient, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		fragment *model.Fragment
		score    float64
	}

	candidates := make([]scored, 0, len(x.fragments))
	for _, f := range x.fragments {
		if len(f.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{
			fragment: f.Clone(),
			score:    cosineSimilarity(embedding, f.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	result := make([]*model.Fragment, k)
	for i := 0; i < k; i++ {
		result[i] = candidates[i].fragment
	}

	return result, nil
}

func (x *Index) Stats(ctx context.Context) (*model.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return &model.IndexStats{
		Exists: len(x.fragments) > 0,
		Count:  len(x.fragments),
	}, nil
}

func generateEmbedding(ctx context.Context, llmClient gollem.LLMClient, text string) ([]float32, error) {
	embeddings, err := llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding")
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, goerr.New("embedding generation returned empty result")
	}

	embedding64 := embeddings[0]
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}
	return embedding32, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
