// Package usecase holds the triage pipeline: intent classification, policy
// retrieval, reply generation, and the batch state machine that drives them.
package usecase

import (
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/inbox-lab/autoreply/pkg/cache"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
)

const (
	DefaultBatchSize      = 10
	DefaultSearchTopK     = 10
	DefaultMaxFragments   = 5
	DefaultContextTopK    = 3
	DefaultMaxReplyLength = 500
	DefaultMinReplyLength = 10
	DefaultCacheTTL       = time.Hour
	DefaultTone           = "professional and friendly"
)

// UseCases bundles the pipeline with its collaborators. All dependencies
// are injected at construction so tests can substitute fakes.
type UseCases struct {
	transport interfaces.MailTransport
	index     interfaces.VectorIndex
	llmClient gollem.LLMClient
	cache     *cache.Service
	intents   *model.IntentRegistry

	batchSize      int
	searchTopK     int
	maxFragments   int
	contextTopK    int
	maxReplyLength int
	minReplyLength int
	tone           string
}

type Option func(*UseCases)

func WithMailTransport(transport interfaces.MailTransport) Option {
	return func(uc *UseCases) {
		uc.transport = transport
	}
}

func WithVectorIndex(index interfaces.VectorIndex) Option {
	return func(uc *UseCases) {
		uc.index = index
	}
}

func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = llmClient
	}
}

func WithCache(c *cache.Service) Option {
	return func(uc *UseCases) {
		uc.cache = c
	}
}

func WithIntentRegistry(r *model.IntentRegistry) Option {
	return func(uc *UseCases) {
		uc.intents = r
	}
}

// WithBatchSize caps how many unread emails one run fetches
func WithBatchSize(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.batchSize = n
		}
	}
}

// WithSearchTopK sets how many candidates the vector index returns before
// re-ranking
func WithSearchTopK(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.searchTopK = n
		}
	}
}

// WithMaxFragments caps the ranked fragment list returned by retrieval
func WithMaxFragments(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.maxFragments = n
		}
	}
}

// WithReplyLimits sets the maximum and minimum reply lengths in runes.
// Replies shorter than min count as generation failures.
func WithReplyLimits(max, min int) Option {
	return func(uc *UseCases) {
		if max > 0 {
			uc.maxReplyLength = max
		}
		if min > 0 {
			uc.minReplyLength = min
		}
	}
}

// WithTone sets the reply tone interpolated into the generation prompt
func WithTone(tone string) Option {
	return func(uc *UseCases) {
		if tone != "" {
			uc.tone = tone
		}
	}
}

// New creates the pipeline. A nil cache falls back to a volatile-only
// cache, a nil intent registry to the built-in profiles. Transport, index,
// and LLM client may stay nil for partial configurations; the batch run
// refuses to start without a transport.
func New(opts ...Option) *UseCases {
	uc := &UseCases{
		batchSize:      DefaultBatchSize,
		searchTopK:     DefaultSearchTopK,
		maxFragments:   DefaultMaxFragments,
		contextTopK:    DefaultContextTopK,
		maxReplyLength: DefaultMaxReplyLength,
		minReplyLength: DefaultMinReplyLength,
		tone:           DefaultTone,
	}
	for _, opt := range opts {
		opt(uc)
	}

	if uc.cache == nil {
		uc.cache = cache.New(cache.NewNoopStore(), DefaultCacheTTL)
	}
	if uc.intents == nil {
		uc.intents = model.DefaultIntentRegistry()
	}

	return uc
}
