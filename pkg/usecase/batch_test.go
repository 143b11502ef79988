package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/usecase"
)

func batchEmails() []*model.Email {
	return []*model.Email{
		{
			ID:            "msg-1",
			Subject:       "Refund request",
			SenderName:    "Alice",
			SenderAddress: "alice@example.com",
			Body:          "Please refund my last invoice.",
			ThreadID:      "t-1",
		},
		{
			ID:            "msg-2",
			Subject:       "App is broken",
			SenderName:    "Bob",
			SenderAddress: "bob@example.com",
			Body:          "I keep getting an error on login.",
			ThreadID:      "t-2",
		},
	}
}

func TestRunBatchEndToEnd(t *testing.T) {
	var sent []*model.ReplyRequest
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return batchEmails(), nil
		},
		sendReplyFn: func(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error) {
			sent = append(sent, req)
			if req.To == "bob@example.com" {
				return &model.SendResult{Success: false, Error: "mailbox rejected"}, nil
			}
			return &model.SendResult{Success: true, MessageID: "out-1"}, nil
		},
	}
	index := &vectorIndexMock{
		similaritySearchFn: func(ctx context.Context, query string, k int) ([]*model.Fragment, error) {
			return []*model.Fragment{{Content: "Refunds are issued within 30 days.", Title: "Refund Policy"}}, nil
		},
	}
	uc := usecase.New(
		usecase.WithMailTransport(transport),
		usecase.WithVectorIndex(index),
		usecase.WithLLMClient(textLLM("Thanks for reaching out, we will take care of it.")),
	)

	result := uc.RunBatch(context.Background(), "run-1")

	gt.Value(t, result.Success).Equal(true)
	gt.Value(t, result.RunID).Equal("run-1")
	gt.Value(t, result.TotalEmails).Equal(2)
	gt.Value(t, result.SuccessfulResponses).Equal(1)
	gt.Value(t, result.FailedResponses).Equal(1)
	gt.Array(t, sent).Length(2)
	gt.Value(t, sent[0].To).Equal("alice@example.com")
	gt.Value(t, sent[0].InReplyToID).Equal("msg-1")
	gt.Value(t, sent[0].ThreadID).Equal("t-1")

	summaries := 0
	for _, line := range result.ProcessingLog {
		if strings.Contains(line, "out of") && strings.Contains(line, "emails") {
			summaries++
			gt.Value(t, line).Equal("1 successful, 1 failed out of 2 emails")
		}
	}
	gt.Value(t, summaries).Equal(1)
}

func TestRunBatchEmpty(t *testing.T) {
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return nil, nil
		},
	}
	uc := usecase.New(usecase.WithMailTransport(transport))

	result := uc.RunBatch(context.Background(), "run-2")

	gt.Value(t, result.Success).Equal(true)
	gt.Value(t, result.TotalEmails).Equal(0)
	gt.Value(t, result.SuccessfulResponses).Equal(0)
	gt.Value(t, result.FailedResponses).Equal(0)
	gt.Value(t, result.ProcessingLog[len(result.ProcessingLog)-1]).
		Equal("0 successful, 0 failed out of 0 emails")
}

func TestRunBatchFetchFailure(t *testing.T) {
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return nil, goerr.New("mailbox unreachable")
		},
	}
	uc := usecase.New(usecase.WithMailTransport(transport))

	result := uc.RunBatch(context.Background(), "run-3")

	gt.Value(t, result.Success).Equal(true)
	gt.Value(t, result.TotalEmails).Equal(0)
	gt.Value(t, strings.Contains(result.LastError, "mailbox unreachable")).Equal(true)
}

func TestRunBatchNotConstructed(t *testing.T) {
	uc := usecase.New()

	result := uc.RunBatch(context.Background(), "run-4")
	gt.Value(t, result.Success).Equal(false)
	gt.Value(t, result.LastError != "").Equal(true)
	gt.Value(t, result.TotalEmails).Equal(0)
}

func TestRunBatchMarkFailureIsNotFatal(t *testing.T) {
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return batchEmails()[:1], nil
		},
		markHandledFn: func(ctx context.Context, emailID string) error {
			return goerr.New("label service down")
		},
	}
	uc := usecase.New(
		usecase.WithMailTransport(transport),
		usecase.WithLLMClient(textLLM("We are on it, Alice. Thanks for your patience.")),
	)

	result := uc.RunBatch(context.Background(), "run-5")
	gt.Value(t, result.SuccessfulResponses).Equal(1)
	gt.Value(t, result.FailedResponses).Equal(0)
}

func TestRunBatchGenerationFailureStillSendsFallback(t *testing.T) {
	var sent []*model.ReplyRequest
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return batchEmails()[:1], nil
		},
		sendReplyFn: func(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error) {
			sent = append(sent, req)
			return &model.SendResult{Success: true}, nil
		},
	}
	uc := usecase.New(usecase.WithMailTransport(transport))

	result := uc.RunBatch(context.Background(), "run-6")

	gt.Value(t, result.SuccessfulResponses).Equal(1)
	gt.Array(t, sent).Length(1)
	gt.Value(t, sent[0].Body).Equal(usecase.FallbackReply)
	gt.Value(t, result.LastError != "").Equal(true)
}

func TestRunBatchCancelledBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sends := 0
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return batchEmails(), nil
		},
		sendReplyFn: func(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error) {
			sends++
			// Cancel mid-item: the current item still completes, the next
			// is never started
			cancel()
			return &model.SendResult{Success: true}, nil
		},
	}
	uc := usecase.New(
		usecase.WithMailTransport(transport),
		usecase.WithLLMClient(textLLM("Thanks, we will follow up shortly.")),
	)

	result := uc.RunBatch(ctx, "run-7")

	gt.Value(t, sends).Equal(1)
	gt.Value(t, result.SuccessfulResponses).Equal(1)
	gt.Value(t, result.FailedResponses).Equal(0)
	gt.Value(t, result.TotalEmails).Equal(2)
}

func TestRunBatchSendTransportError(t *testing.T) {
	transport := &mailTransportMock{
		fetchUnreadFn: func(ctx context.Context, max int) ([]*model.Email, error) {
			return batchEmails()[:1], nil
		},
		sendReplyFn: func(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error) {
			return nil, goerr.New("smtp timeout")
		},
	}
	uc := usecase.New(
		usecase.WithMailTransport(transport),
		usecase.WithLLMClient(textLLM("A perfectly good reply that never arrives.")),
	)

	result := uc.RunBatch(context.Background(), "run-8")
	gt.Value(t, result.SuccessfulResponses).Equal(0)
	gt.Value(t, result.FailedResponses).Equal(1)
	gt.Value(t, strings.Contains(result.LastError, "smtp timeout")).Equal(true)
}
