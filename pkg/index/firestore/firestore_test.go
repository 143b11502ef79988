package firestore_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	firestoreindex "github.com/inbox-lab/autoreply/pkg/index/firestore"
)

// embedderMock returns a fixed small vector for every input. The live
// Firestore vector index is configured for 768 dimensions, so these tests
// only exercise document round-trips and stats, not FindNearest ranking.
type embedderMock struct{}

func (m *embedderMock) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *embedderMock) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	out := make([][]float64, len(input))
	for i := range input {
		v := make([]float64, dimension)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func testIndex(t *testing.T) *firestoreindex.Index {
	t.Helper()
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT is not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	index, err := firestoreindex.New(context.Background(), projectID, databaseID, &embedderMock{},
		firestoreindex.WithCollection("fragments_test"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		_ = index.Close()
	})
	return index
}

func TestRebuildAndStats(t *testing.T) {
	index := testIndex(t)
	ctx := context.Background()

	gt.NoError(t, index.Rebuild(ctx, []*model.Fragment{
		{Content: "Refunds are issued within 30 days.", Source: "refund.md", Title: "Refund Policy"},
		{Content: "Support is available on weekdays.", Source: "hours.md", Title: "Support Hours"},
	})).Required()

	stats := gt.R1(index.Stats(ctx)).NoError(t)
	gt.Value(t, stats.Exists).Equal(true)
	gt.Value(t, stats.Count).Equal(2)

	gt.NoError(t, index.Rebuild(ctx, nil))
	stats = gt.R1(index.Stats(ctx)).NoError(t)
	gt.Value(t, stats.Exists).Equal(false)
	gt.Value(t, stats.Count).Equal(0)
}
