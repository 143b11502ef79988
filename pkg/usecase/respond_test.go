package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/usecase"
)

func testEmail() *model.Email {
	return &model.Email{
		ID:            "msg-1",
		Subject:       "Refund request",
		SenderName:    "Alice",
		SenderAddress: "alice@example.com",
		Body:          "I would like a refund for my last invoice.",
	}
}

func TestGenerateReply(t *testing.T) {
	uc := usecase.New(usecase.WithLLMClient(textLLM("Hello Alice, your refund is on its way.")))

	reply, err := uc.GenerateReply(context.Background(), testEmail(), nil)
	gt.NoError(t, err)
	gt.Value(t, reply).Equal("Hello Alice, your refund is on its way.")
}

func TestGenerateReplyCached(t *testing.T) {
	calls := 0
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			calls++
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{"Hello Alice, your refund is on its way."}}, nil
				},
			}, nil
		},
	}
	uc := usecase.New(usecase.WithLLMClient(llm))

	ctx := context.Background()
	first, err := uc.GenerateReply(ctx, testEmail(), nil)
	gt.NoError(t, err)
	second, err := uc.GenerateReply(ctx, testEmail(), nil)
	gt.NoError(t, err)

	gt.Value(t, calls).Equal(1)
	gt.Value(t, second).Equal(first)
}

func TestGenerateReplyFallbackNotCached(t *testing.T) {
	calls := 0
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			calls++
			return nil, goerr.New("generation unavailable")
		},
	}
	uc := usecase.New(usecase.WithLLMClient(llm))

	ctx := context.Background()
	reply, err := uc.GenerateReply(ctx, testEmail(), nil)
	gt.Error(t, err)
	gt.Value(t, reply).Equal(usecase.FallbackReply)

	// The failure was not cached: an identical call generates again
	reply, err = uc.GenerateReply(ctx, testEmail(), nil)
	gt.Error(t, err)
	gt.Value(t, reply).Equal(usecase.FallbackReply)
	gt.Value(t, calls).Equal(2)
}

func TestGenerateReplyTooShortIsFallback(t *testing.T) {
	uc := usecase.New(usecase.WithLLMClient(textLLM("ok")))

	reply, err := uc.GenerateReply(context.Background(), testEmail(), nil)
	gt.Error(t, err)
	gt.Value(t, reply).Equal(usecase.FallbackReply)
}

func TestGenerateReplyNoLLM(t *testing.T) {
	uc := usecase.New()

	reply, err := uc.GenerateReply(context.Background(), testEmail(), nil)
	gt.Error(t, err)
	gt.Value(t, reply).Equal(usecase.FallbackReply)
}

func TestGenerateReplyKeyVariesWithFragments(t *testing.T) {
	calls := 0
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			calls++
			return &mockLLMSession{}, nil
		},
	}
	uc := usecase.New(usecase.WithLLMClient(llm), usecase.WithReplyLimits(500, 5))

	ctx := context.Background()
	uc.GenerateReply(ctx, testEmail(), nil)
	uc.GenerateReply(ctx, testEmail(), []*model.Fragment{{Content: "refund policy text"}})
	gt.Value(t, calls).Equal(2)
}

func TestSanitizeReply(t *testing.T) {
	uc := usecase.New()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bracketed meta lines dropped",
			input: "[This is a draft]\nDear Alice,\nthanks for writing.",
			want:  "Dear Alice,\nthanks for writing.",
		},
		{
			name:  "role lines dropped",
			input: "Assistant: here you go\nDear Alice,\nthanks.\nSystem: done",
			want:  "Dear Alice,\nthanks.",
		},
		{
			name:  "whitespace trimmed",
			input: "  \nDear Alice,\nthanks.\n\n",
			want:  "Dear Alice,\nthanks.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, uc.SanitizeReply(tc.input)).Equal(tc.want)
		})
	}
}

func TestSanitizeReplyTruncates(t *testing.T) {
	uc := usecase.New(usecase.WithReplyLimits(20, 5))

	long := strings.Repeat("abcde ", 10)
	got := uc.SanitizeReply(long)
	gt.Value(t, strings.HasSuffix(got, "...")).Equal(true)
	gt.Value(t, len([]rune(got)) <= 23).Equal(true)
}
