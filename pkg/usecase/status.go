package usecase

import (
	"context"

	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

// Status reports collaborator statistics and readiness flags. A broken
// index degrades to an empty stats block rather than an error; the ready
// flags tell the caller what actually works.
func (uc *UseCases) Status(ctx context.Context) *model.SystemStatus {
	status := &model.SystemStatus{
		TransportReady: uc.transport != nil,
		LLMReady:       uc.llmClient != nil,
	}

	cacheStats := uc.cache.Stats(ctx)
	status.Cache = cacheStats
	status.CacheReady = true

	if uc.index != nil {
		indexStats, err := uc.index.Stats(ctx)
		if err != nil {
			logging.From(ctx).Warn("failed to read index stats", "error", err)
		} else {
			status.Index = *indexStats
			status.IndexReady = true
		}
	}

	return status
}
