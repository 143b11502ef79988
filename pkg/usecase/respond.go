package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

//go:embed prompt/respond_system.md
var respondSystemPromptTmpl string

var respondSystemPrompt = template.Must(template.New("respond_system").Parse(respondSystemPromptTmpl))

const replyNamespace = "reply"

// fragmentKeyRunes bounds how much of each fragment feeds the reply cache
// key. The digest covers the top fragments only, so two emails whose
// retrieval differs deep in the tail still share a cached reply.
const fragmentKeyRunes = 100

// fallbackReply is sent whenever generation fails or yields something
// unusable. It is never cached, so the next identical email tries
// generation again.
const fallbackReply = "Thank you for reaching out to us. We apologize, but we are unable to provide a detailed response at this moment. Our support team has received your message and will get back to you as soon as possible.\n\nBest regards,\nCustomer Support Team"

// GenerateReply drafts a reply for the email using the given policy
// fragments. Successful replies are cached keyed by a digest of subject,
// body, and the top fragment texts. Any generation failure returns the
// fixed fallback reply together with the error that caused it; the
// fallback is never cached.
func (uc *UseCases) GenerateReply(ctx context.Context, email *model.Email, fragments []*model.Fragment) (string, error) {
	logicalKey := replyCacheKey(email.Subject, email.Body, fragments)

	if reply, ok := uc.cache.Get(ctx, replyNamespace, logicalKey); ok {
		return reply, nil
	}

	reply, err := uc.generateReply(ctx, email, fragments)
	if err != nil {
		logging.From(ctx).Warn("reply generation failed, using fallback",
			"email_id", email.ID,
			"error", err,
		)
		return fallbackReply, err
	}

	uc.cache.Set(ctx, replyNamespace, logicalKey, reply)
	return reply, nil
}

func (uc *UseCases) generateReply(ctx context.Context, email *model.Email, fragments []*model.Fragment) (string, error) {
	if uc.llmClient == nil {
		return "", goerr.New("no LLM client configured")
	}

	var systemPrompt bytes.Buffer
	err := respondSystemPrompt.Execute(&systemPrompt, map[string]any{
		"Tone":    uc.tone,
		"Context": uc.buildContext(fragments),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render reply prompt")
	}

	session, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt.String()),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create reply session")
	}

	userPrompt := fmt.Sprintf("Subject: %s\nFrom: %s\n\n%s",
		email.Subject, senderName(email), email.Body)

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return "", goerr.Wrap(err, "reply generation call failed")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("reply generation returned no text")
	}

	reply := uc.sanitizeReply(resp.Texts[0])
	if len([]rune(reply)) < uc.minReplyLength {
		return "", goerr.New("generated reply too short", goerr.V("length", len(reply)))
	}

	return reply, nil
}

// buildContext renders the top fragments into the prompt's policy block.
// Each fragment is labeled by its title, or an ordinal label when the
// title is missing.
func (uc *UseCases) buildContext(fragments []*model.Fragment) string {
	if len(fragments) > uc.contextTopK {
		fragments = fragments[:uc.contextTopK]
	}
	if len(fragments) == 0 {
		return "No specific policy information is available for this inquiry."
	}

	var sb strings.Builder
	for i, f := range fragments {
		title := f.Title
		if title == "" {
			title = fmt.Sprintf("Policy Information %d", i+1)
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("## " + title + "\n")
		sb.WriteString(f.Content)
	}
	return sb.String()
}

// sanitizeReply strips model artifacts from the raw output: bracketed
// meta-instructions, role-tagged dialogue lines, and anything beyond the
// configured maximum length.
func (uc *UseCases) sanitizeReply(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && len(trimmed) > 1 {
			continue
		}
		if isRoleLine(trimmed) {
			continue
		}
		kept = append(kept, line)
	}

	reply := strings.TrimSpace(strings.Join(kept, "\n"))

	runes := []rune(reply)
	if len(runes) > uc.maxReplyLength {
		reply = strings.TrimSpace(string(runes[:uc.maxReplyLength])) + "..."
	}

	return reply
}

var rolePrefixes = []string{"assistant:", "system:", "user:", "ai:", "human:"}

func isRoleLine(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range rolePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// replyCacheKey digests subject, body, and the top three fragment texts.
// Fragment texts are truncated so huge fragments do not dominate the key
// material; the digest itself covers the full concatenation.
func replyCacheKey(subject, body string, fragments []*model.Fragment) string {
	parts := []string{subject, body}
	for i, f := range fragments {
		if i >= 3 {
			break
		}
		runes := []rune(f.Content)
		if len(runes) > fragmentKeyRunes {
			runes = runes[:fragmentKeyRunes]
		}
		parts = append(parts, string(runes))
	}
	return strings.Join(parts, "|")
}

func senderName(email *model.Email) string {
	if email.SenderName != "" {
		return email.SenderName
	}
	return email.SenderAddress
}
