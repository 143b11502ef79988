package interfaces

import (
	"context"

	"github.com/inbox-lab/autoreply/pkg/domain/model"
)

// MailTransport defines the mailbox operations the pipeline consumes
type MailTransport interface {
	// FetchUnread returns up to max unread, unhandled messages
	FetchUnread(ctx context.Context, max int) ([]*model.Email, error)

	// MarkHandled marks a message as being handled so the next fetch
	// skips it
	MarkHandled(ctx context.Context, emailID string) error

	// SendReply sends a reply and reports the outcome
	SendReply(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error)
}
