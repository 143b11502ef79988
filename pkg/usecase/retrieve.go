package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

const retrievalNamespace = "retrieval"

// RetrievePolicy returns policy fragments relevant to the email, re-ranked
// by intent-keyword affinity, plus the resolved intent. A zero intent is
// resolved via the classifier first. Index failure yields an empty list,
// never an error, so the caller can still log the resolved intent.
func (uc *UseCases) RetrievePolicy(ctx context.Context, subject, body string, intent types.Intent) ([]*model.Fragment, types.Intent) {
	if !intent.IsValid() {
		intent = uc.ClassifyIntent(ctx, subject, body)
	}

	query := fmt.Sprintf("Subject: %s\nContent: %s", subject, body)
	logicalKey := intent.String() + "\n" + query

	raw, cached, err := uc.cache.GetOrCompute(ctx, retrievalNamespace, logicalKey, func() (string, error) {
		fragments, err := uc.searchAndRank(ctx, query, intent)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(fragments)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
	if err != nil {
		logging.From(ctx).Warn("policy retrieval degraded to empty result",
			"intent", intent,
			"error", err,
		)
		return nil, intent
	}

	var fragments []*model.Fragment
	if err := json.Unmarshal([]byte(raw), &fragments); err != nil {
		logging.From(ctx).Warn("discarding undecodable cached retrieval result", "error", err)
		return nil, intent
	}

	if cached {
		logging.From(ctx).Debug("retrieval served from cache", "intent", intent, "fragments", len(fragments))
	}

	return fragments, intent
}

func (uc *UseCases) searchAndRank(ctx context.Context, query string, intent types.Intent) ([]*model.Fragment, error) {
	if uc.index == nil {
		return nil, nil
	}

	candidates, err := uc.index.SimilaritySearch(ctx, query, uc.searchTopK)
	if err != nil {
		return nil, err
	}

	ranked := uc.rankByIntent(candidates, intent)
	if len(ranked) > uc.maxFragments {
		ranked = ranked[:uc.maxFragments]
	}
	return ranked, nil
}

// rankByIntent stable-sorts fragments by intent-keyword affinity, highest
// first. Score = number of intent keywords present in the fragment text,
// plus 2 when any keyword appears in the source or title metadata. Equal
// scores keep the index's original order.
func (uc *UseCases) rankByIntent(fragments []*model.Fragment, intent types.Intent) []*model.Fragment {
	keywords := uc.intents.Keywords(intent)
	if len(keywords) == 0 {
		return fragments
	}

	scores := make([]int, len(fragments))
	for i, f := range fragments {
		scores[i] = fragmentScore(f, keywords)
	}

	order := make([]int, len(fragments))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranked := make([]*model.Fragment, len(fragments))
	for i, idx := range order {
		ranked[i] = fragments[idx]
	}
	return ranked
}

func fragmentScore(f *model.Fragment, keywords []string) int {
	content := strings.ToLower(f.Content)
	meta := strings.ToLower(f.Source + " " + f.Title)

	score := 0
	metaBonus := false
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			score++
		}
		if !metaBonus && strings.Contains(meta, keyword) {
			metaBonus = true
		}
	}
	if metaBonus {
		score += 2
	}
	return score
}
