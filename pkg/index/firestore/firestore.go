// Package firestore implements the vector index on Firestore. Fragments
// are stored with a Vector32 embedding field so FindNearest serves the
// similarity search. The collection needs a Firestore vector index on the
// Embedding field (cosine distance).
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"google.golang.org/api/iterator"
)

const defaultCollection = "fragments"

type Index struct {
	client     *firestore.Client
	llmClient  gollem.LLMClient
	collection string
}

var _ interfaces.VectorIndex = &Index{}

type Option func(*Index)

// WithCollection overrides the fragment collection name
func WithCollection(name string) Option {
	return func(x *Index) {
		x.collection = name
	}
}

// fragmentDoc is the Firestore document representation of model.Fragment
type fragmentDoc struct {
	Content   string             `firestore:"Content"`
	Source    string             `firestore:"Source"`
	Title     string             `firestore:"Title"`
	Category  string             `firestore:"Category"`
	Embedding firestore.Vector32 `firestore:"Embedding"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func toFragmentDoc(f *model.Fragment, now time.Time) *fragmentDoc {
	return &fragmentDoc{
		Content:   f.Content,
		Source:    f.Source,
		Title:     f.Title,
		Category:  f.Category,
		Embedding: firestore.Vector32(f.Embedding),
		CreatedAt: now,
	}
}

func docToFragment(doc *firestore.DocumentSnapshot) (*model.Fragment, error) {
	var d fragmentDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return &model.Fragment{
		Content:   d.Content,
		Source:    d.Source,
		Title:     d.Title,
		Category:  d.Category,
		Embedding: []float32(d.Embedding),
	}, nil
}

// New creates a Firestore-backed vector index
func New(ctx context.Context, projectID, databaseID string, llmClient gollem.LLMClient, opts ...Option) (*Index, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	x := &Index{
		client:     client,
		llmClient:  llmClient,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(x)
	}

	return x, nil
}

func (x *Index) fragments() *firestore.CollectionRef {
	return x.client.Collection(x.collection)
}

func (x *Index) Rebuild(ctx context.Context, fragments []*model.Fragment) error {
	if err := x.deleteAll(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear fragment collection")
	}

	now := time.Now().UTC()
	bw := x.client.BulkWriter(ctx)
	for _, f := range fragments {
		copied := f.Clone()
		if len(copied.Embedding) == 0 {
			embedding, err := generateEmbedding(ctx, x.llmClient, copied.Content)
			if err != nil {
				return goerr.Wrap(err, "failed to embed fragment", goerr.V("source", copied.Source))
			}
			copied.Embedding = embedding
		}

		if _, err := bw.Create(x.fragments().NewDoc(), toFragmentDoc(copied, now)); err != nil {
			return goerr.Wrap(err, "failed to enqueue fragment write", goerr.V("source", copied.Source))
		}
	}
	bw.End()

	return nil
}

func (x *Index) deleteAll(ctx context.Context) error {
	iter := x.fragments().Documents(ctx)
	defer iter.Stop()

	bw := x.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate fragments")
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to enqueue fragment delete")
		}
	}
	bw.End()

	return nil
}

func (x *Index) SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Fragment, error) {
	embedding, err := generateEmbedding(ctx, x.llmClient, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	vq := x.fragments().
		FindNearest("Embedding", firestore.Vector32(embedding), k, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	fragments := make([]*model.Fragment, 0, k)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate vector search results")
		}

		f, err := docToFragment(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fragment from vector search")
		}
		fragments = append(fragments, f)
	}

	return fragments, nil
}

func (x *Index) Stats(ctx context.Context) (*model.IndexStats, error) {
	iter := x.fragments().Select().Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to count fragments")
		}
		count++
	}

	return &model.IndexStats{
		Exists: count > 0,
		Count:  count,
	}, nil
}

// Close closes the underlying Firestore client
func (x *Index) Close() error {
	return x.client.Close()
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
