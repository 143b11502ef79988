// Package policy loads company policy documents from a directory of
// markdown files and turns them into fragments for the vector index.
package policy

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

type Loader struct {
	dir      string
	splitter *Splitter
	md       goldmark.Markdown
}

// NewLoader creates a loader over a directory of *.md policy documents
func NewLoader(dir string, splitter *Splitter) *Loader {
	return &Loader{
		dir:      dir,
		splitter: splitter,
		md:       goldmark.New(),
	}
}

// Load reads every markdown file in the policy directory and returns the
// chunked fragments in deterministic (file name, chunk position) order.
func (l *Loader) Load(ctx context.Context) ([]*model.Fragment, error) {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*.md"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy directory", goerr.V("dir", l.dir))
	}
	if len(paths) == 0 {
		return nil, goerr.New("no policy documents found", goerr.V("dir", l.dir))
	}
	sort.Strings(paths)

	var fragments []*model.Fragment
	for _, path := range paths {
		fs, err := l.loadFile(path)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fs...)
	}

	logging.From(ctx).Info("loaded policy documents",
		"dir", l.dir,
		"files", len(paths),
		"fragments", len(fragments),
	)

	return fragments, nil
}

func (l *Loader) loadFile(path string) ([]*model.Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy document", goerr.V("path", path))
	}

	plain := l.extractText(data)
	base := filepath.Base(path)
	category := strings.TrimSuffix(base, filepath.Ext(base))
	title := humanizeTitle(category)

	chunks := l.splitter.Split(plain)
	fragments := make([]*model.Fragment, 0, len(chunks))
	for _, chunk := range chunks {
		fragments = append(fragments, &model.Fragment{
			Content:  chunk,
			Source:   base,
			Title:    title,
			Category: category,
		})
	}

	return fragments, nil
}

// extractText renders the markdown AST as plain text, one line per block,
// so markup never leaks into embeddings or prompts
func (l *Loader) extractText(src []byte) string {
	doc := l.md.Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.AutoLink:
			sb.Write(v.URL(src))
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(sb.String())
}

// humanizeTitle turns a file name like "refund_policy" into "Refund Policy"
func humanizeTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Reindex loads the policy corpus and rebuilds the vector index from it
func (l *Loader) Reindex(ctx context.Context, index interfaces.VectorIndex) (int, error) {
	fragments, err := l.Load(ctx)
	if err != nil {
		return 0, err
	}

	if err := index.Rebuild(ctx, fragments); err != nil {
		return 0, goerr.Wrap(err, "failed to rebuild vector index")
	}

	return len(fragments), nil
}
