package policy_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/service/policy"
)

func TestSplitterShortText(t *testing.T) {
	s := policy.NewSplitter(100, 20)
	chunks := s.Split("short document")
	gt.Array(t, chunks).Length(1)
	gt.Value(t, chunks[0]).Equal("short document")
}

func TestSplitterEmpty(t *testing.T) {
	s := policy.NewSplitter(100, 20)
	gt.Array(t, s.Split("   \n  ")).Length(0)
}

func TestSplitterOverlap(t *testing.T) {
	para := strings.Repeat("alpha beta gamma delta ", 10)
	text := para + "\n\n" + para + "\n\n" + para

	s := policy.NewSplitter(300, 50)
	chunks := s.Split(text)

	gt.Value(t, len(chunks) >= 2).Equal(true)
	for _, c := range chunks {
		gt.Value(t, len([]rune(c)) <= 300).Equal(true)
		gt.Value(t, strings.TrimSpace(c)).Equal(c)
	}
	// Full coverage: every paragraph's words survive somewhere
	joined := strings.Join(chunks, " ")
	gt.Value(t, strings.Contains(joined, "alpha beta gamma delta")).Equal(true)
}

func TestSplitterPrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("a", 150)
	second := strings.Repeat("b", 150)
	s := policy.NewSplitter(200, 0)

	chunks := s.Split(first + "\n\n" + second)
	gt.Array(t, chunks).Length(2)
	gt.Value(t, chunks[0]).Equal(first)
	gt.Value(t, chunks[1]).Equal(second)
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "refund_policy.md"),
		"# Refund Policy\n\nRefunds are issued within **30 days** of purchase.\n\n- Contact billing first\n- Keep your invoice\n")
	writeFile(t, filepath.Join(dir, "support-hours.md"),
		"Support is available 9am to 5pm, Monday through Friday.\n")

	loader := policy.NewLoader(dir, policy.NewSplitter(1000, 200))
	fragments := gt.R1(loader.Load(context.Background())).NoError(t)

	gt.Array(t, fragments).Length(2)
	gt.Value(t, fragments[0].Source).Equal("refund_policy.md")
	gt.Value(t, fragments[0].Title).Equal("Refund Policy")
	gt.Value(t, fragments[0].Category).Equal("refund_policy")
	gt.Value(t, strings.Contains(fragments[0].Content, "30 days")).Equal(true)
	gt.Value(t, strings.Contains(fragments[0].Content, "**")).Equal(false)
	gt.Value(t, fragments[1].Title).Equal("Support Hours")
}

func TestLoaderEmptyDir(t *testing.T) {
	loader := policy.NewLoader(t.TempDir(), policy.NewSplitter(1000, 200))
	_, err := loader.Load(context.Background())
	gt.Error(t, err)
}

func TestLoaderReindex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "faq.md"), "We ship worldwide.\n")

	var rebuilt []*model.Fragment
	index := &indexMock{
		rebuild: func(ctx context.Context, fragments []*model.Fragment) error {
			rebuilt = fragments
			return nil
		},
	}

	loader := policy.NewLoader(dir, policy.NewSplitter(1000, 200))
	count := gt.R1(loader.Reindex(context.Background(), index)).NoError(t)
	gt.Value(t, count).Equal(1)
	gt.Array(t, rebuilt).Length(1)
	gt.Value(t, rebuilt[0].Content).Equal("We ship worldwide.")
}

type indexMock struct {
	rebuild func(ctx context.Context, fragments []*model.Fragment) error
}

func (m *indexMock) SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Fragment, error) {
	return nil, nil
}

func (m *indexMock) Rebuild(ctx context.Context, fragments []*model.Fragment) error {
	return m.rebuild(ctx, fragments)
}

func (m *indexMock) Stats(ctx context.Context) (*model.IndexStats, error) {
	return &model.IndexStats{}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
}
