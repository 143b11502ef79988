package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

//go:embed prompt/classify_intent.md
var classifyPromptTmpl string

var classifyPrompt = template.Must(template.New("classify_intent").Parse(classifyPromptTmpl))

// ClassifyIntent maps an email to one intent. The deterministic keyword
// pass runs first; only when no keyword matches at all does a single LLM
// call decide, and its answer is accepted only on an exact category match.
// The final fallback is always IntentGeneral. The classifier holds no
// cache state.
func (uc *UseCases) ClassifyIntent(ctx context.Context, subject, body string) types.Intent {
	if intent, ok := uc.classifyByKeywords(subject, body); ok {
		return intent
	}

	if intent, ok := uc.classifyByLLM(ctx, subject, body); ok {
		return intent
	}

	return types.IntentGeneral
}

// classifyByKeywords scores each intent by how many of its keywords appear
// in the lower-cased subject+body. The highest nonzero score wins; ties go
// to the first-declared intent.
func (uc *UseCases) classifyByKeywords(subject, body string) (types.Intent, bool) {
	content := strings.ToLower(subject + " " + body)

	best := types.Intent("")
	bestScore := 0
	for _, profile := range uc.intents.Profiles() {
		score := 0
		for _, keyword := range profile.Keywords {
			if strings.Contains(content, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = profile.Intent
			bestScore = score
		}
	}

	if bestScore == 0 {
		return "", false
	}
	return best, true
}

func (uc *UseCases) classifyByLLM(ctx context.Context, subject, body string) (types.Intent, bool) {
	if uc.llmClient == nil {
		return "", false
	}

	var prompt bytes.Buffer
	err := classifyPrompt.Execute(&prompt, map[string]any{
		"Categories": types.AllIntents(),
		"Subject":    subject,
		"Body":       body,
	})
	if err != nil {
		logging.From(ctx).Warn("failed to render classification prompt", "error", err)
		return "", false
	}

	session, err := uc.llmClient.NewSession(ctx)
	if err != nil {
		logging.From(ctx).Warn("failed to create classification session", "error", err)
		return "", false
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt.String()))
	if err != nil {
		logging.From(ctx).Warn("intent classification call failed", "error", err)
		return "", false
	}
	if len(resp.Texts) == 0 {
		return "", false
	}

	intent, err := types.ParseIntent(resp.Texts[0])
	if err != nil {
		logging.From(ctx).Warn("discarding unusable classification answer",
			"answer", resp.Texts[0],
		)
		return "", false
	}

	return intent, true
}
