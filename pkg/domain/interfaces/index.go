package interfaces

import (
	"context"

	"github.com/inbox-lab/autoreply/pkg/domain/model"
)

// VectorIndex defines nearest-neighbor search over the policy corpus
type VectorIndex interface {
	// SimilaritySearch returns up to k fragments most similar to the query
	SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Fragment, error)

	// Rebuild replaces the index contents with the given fragments,
	// embedding any fragment that does not carry an embedding yet
	Rebuild(ctx context.Context, fragments []*model.Fragment) error

	// Stats reports whether the index exists and how many fragments it holds
	Stats(ctx context.Context) (*model.IndexStats, error)
}
