package usecase

import (
	"context"

	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/domain/types"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

// RunBatch executes one batch run: fetch unread emails, then drive each
// one through classify, retrieve, generate, and send. Items are processed
// strictly one at a time; the run state has a single writer. The caller
// supplies the run identifier, which is threaded through unchanged.
//
// Collaborator failures never abort the run. Only a pipeline with no mail
// transport refuses to start.
func (uc *UseCases) RunBatch(ctx context.Context, runID string) *model.RunResult {
	if uc == nil || uc.transport == nil {
		return &model.RunResult{
			RunID:     runID,
			LastError: "pipeline not constructed: mail transport missing",
		}
	}

	ctx = logging.With(ctx, logging.From(ctx).With("run_id", runID))
	logging.From(ctx).Info("starting batch run")

	state := model.NewRunState(runID)
	for state.Phase != types.PhaseDone {
		uc.step(ctx, state)
	}

	result := state.Result()
	logging.From(ctx).Info("batch run finished",
		"total", result.TotalEmails,
		"succeeded", result.SuccessfulResponses,
		"failed", result.FailedResponses,
	)
	return result
}

// step applies exactly one state transition
func (uc *UseCases) step(ctx context.Context, state *model.RunState) {
	switch state.Phase {
	case types.PhaseFetch:
		uc.stepFetch(ctx, state)
	case types.PhaseProcessOne:
		uc.stepProcessOne(ctx, state)
	case types.PhaseRetrieve:
		uc.stepRetrieve(ctx, state)
	case types.PhaseGenerate:
		uc.stepGenerate(ctx, state)
	case types.PhaseSend:
		uc.stepSend(ctx, state)
	case types.PhaseAdvance:
		uc.stepAdvance(state)
	case types.PhaseFinalize:
		uc.stepFinalize(state)
	default:
		state.Phase = types.PhaseDone
	}
}

// stepFetch pulls up to batchSize unread emails. A fetch failure is
// recorded and the run finalizes over an empty list instead of aborting.
func (uc *UseCases) stepFetch(ctx context.Context, state *model.RunState) {
	emails, err := uc.transport.FetchUnread(ctx, uc.batchSize)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch unread emails", "error", err)
		state.LastError = err.Error()
		emails = nil
	}

	state.Emails = emails
	state.Appendf("Fetched %d emails", len(emails))

	if len(emails) == 0 {
		state.Phase = types.PhaseFinalize
		return
	}
	state.Phase = types.PhaseProcessOne
}

// stepProcessOne selects the email under the cursor and best-effort marks
// it as handled. Cancellation is observed here, between items: an item
// that already passed this point runs through send before the run stops.
func (uc *UseCases) stepProcessOne(ctx context.Context, state *model.RunState) {
	if err := ctx.Err(); err != nil {
		logging.From(ctx).Warn("run interrupted", "cursor", state.Cursor)
		state.LastError = err.Error()
		state.Appendf("Run interrupted before email %d of %d", state.Cursor+1, len(state.Emails))
		state.Phase = types.PhaseFinalize
		return
	}

	state.Current = state.Emails[state.Cursor]
	state.Appendf("Processing email %d of %d (from %s)",
		state.Cursor+1, len(state.Emails), state.Current.SenderAddress)

	if err := uc.transport.MarkHandled(ctx, state.Current.ID); err != nil {
		logging.From(ctx).Warn("failed to mark email as handled",
			"email_id", state.Current.ID,
			"error", err,
		)
	}

	state.Phase = types.PhaseRetrieve
}

// stepRetrieve resolves the intent and fetches ranked policy fragments.
// Retrieval never fails the item; at worst it yields an empty list.
func (uc *UseCases) stepRetrieve(ctx context.Context, state *model.RunState) {
	fragments, intent := uc.RetrievePolicy(ctx, state.Current.Subject, state.Current.Body, "")
	state.Intent = intent
	state.Fragments = fragments
	state.Appendf("Classified as %s, retrieved %d policy fragments", intent, len(fragments))

	state.Phase = types.PhaseGenerate
}

// stepGenerate drafts the reply. A generation failure leaves the fallback
// reply in place and is recorded, but the item still advances to send.
func (uc *UseCases) stepGenerate(ctx context.Context, state *model.RunState) {
	reply, err := uc.GenerateReply(ctx, state.Current, state.Fragments)
	state.Reply = reply
	if err != nil {
		state.LastError = err.Error()
		state.Appendf("Reply generation failed for email %s, using fallback", state.Current.ID)
	}

	state.Phase = types.PhaseSend
}

// stepSend dispatches the reply and settles the item's outcome. Per-item
// scratch is cleared before the transition out.
func (uc *UseCases) stepSend(ctx context.Context, state *model.RunState) {
	email := state.Current

	switch {
	case email == nil || state.Reply == "":
		state.Failed++
		state.Appendf("Skipped send: no reply available")

	default:
		outcome, err := uc.transport.SendReply(ctx, &model.ReplyRequest{
			To:          email.SenderAddress,
			Subject:     email.Subject,
			Body:        state.Reply,
			InReplyToID: email.ID,
			ThreadID:    email.ThreadID,
		})
		state.SendOutcome = outcome

		if err != nil || outcome == nil || !outcome.Success {
			state.Failed++
			reason := "send rejected"
			if err != nil {
				reason = err.Error()
			} else if outcome != nil && outcome.Error != "" {
				reason = outcome.Error
			}
			state.LastError = reason
			state.Appendf("Failed to send reply to %s: %s", email.SenderAddress, reason)
		} else {
			state.Succeeded++
			state.Appendf("Sent reply to %s", email.SenderAddress)
		}
	}

	remaining := state.Remaining()
	state.ClearScratch()

	if remaining {
		state.Phase = types.PhaseAdvance
		return
	}
	state.Phase = types.PhaseFinalize
}

func (uc *UseCases) stepAdvance(state *model.RunState) {
	state.Cursor++
	state.Phase = types.PhaseProcessOne
}

// stepFinalize appends the summary line and terminates the run
func (uc *UseCases) stepFinalize(state *model.RunState) {
	state.Appendf("%d successful, %d failed out of %d emails",
		state.Succeeded, state.Failed, len(state.Emails))
	state.Phase = types.PhaseDone
}
