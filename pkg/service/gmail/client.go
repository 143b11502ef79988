// Package gmail implements the mail transport on the Gmail API. Unhandled
// messages are selected by excluding a dedicated label, which the client
// creates on first use.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/inbox-lab/autoreply/pkg/domain/interfaces"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUser = "me"

type Client struct {
	svc          *gmail.Service
	handledLabel string
	labelID      string
}

var _ interfaces.MailTransport = &Client{}

// New creates a Gmail client from an OAuth client-secret file and a saved
// token file. The token must already exist; this service never runs an
// interactive authorization flow.
func New(ctx context.Context, credentialsPath, tokenPath, handledLabel string) (*Client, error) {
	secret, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read client secret file", goerr.V("path", credentialsPath))
	}

	oauthConfig, err := google.ConfigFromJSON(secret,
		gmail.GmailReadonlyScope,
		gmail.GmailModifyScope,
		gmail.GmailSendScope,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse client secret file")
	}

	tokenData, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token file", goerr.V("path", tokenPath))
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, goerr.Wrap(err, "failed to parse token file", goerr.V("path", tokenPath))
	}

	httpClient := oauthConfig.Client(ctx, &token)
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gmail service")
	}

	return &Client{
		svc:          svc,
		handledLabel: handledLabel,
	}, nil
}

func (c *Client) FetchUnread(ctx context.Context, max int) ([]*model.Email, error) {
	query := fmt.Sprintf("is:unread -label:%s", c.handledLabel)
	list, err := c.svc.Users.Messages.List(gmailUser).
		Q(query).
		MaxResults(int64(max)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list unread messages", goerr.V("query", query))
	}

	emails := make([]*model.Email, 0, len(list.Messages))
	for _, msg := range list.Messages {
		full, err := c.svc.Users.Messages.Get(gmailUser, msg.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			logging.From(ctx).Warn("failed to fetch message, skipping", "id", msg.Id, "error", err)
			continue
		}
		emails = append(emails, messageToEmail(full))
	}

	return emails, nil
}

func (c *Client) MarkHandled(ctx context.Context, emailID string) error {
	labelID, err := c.ensureLabel(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve handled label")
	}

	_, err = c.svc.Users.Messages.Modify(gmailUser, emailID, &gmail.ModifyMessageRequest{
		AddLabelIds:    []string{labelID},
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to modify message labels", goerr.V("id", emailID))
	}

	return nil
}

// ensureLabel resolves the handled label ID, creating the label on first use
func (c *Client) ensureLabel(ctx context.Context) (string, error) {
	if c.labelID != "" {
		return c.labelID, nil
	}

	list, err := c.svc.Users.Labels.List(gmailUser).Context(ctx).Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to list labels")
	}
	for _, l := range list.Labels {
		if l.Name == c.handledLabel {
			c.labelID = l.Id
			return c.labelID, nil
		}
	}

	created, err := c.svc.Users.Labels.Create(gmailUser, &gmail.Label{
		Name:                  c.handledLabel,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to create label", goerr.V("name", c.handledLabel))
	}

	c.labelID = created.Id
	return c.labelID, nil
}

func (c *Client) SendReply(ctx context.Context, req *model.ReplyRequest) (*model.SendResult, error) {
	raw := buildRawReply(req)

	msg := &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
		ThreadId: req.ThreadID,
	}

	sent, err := c.svc.Users.Messages.Send(gmailUser, msg).Context(ctx).Do()
	if err != nil {
		return &model.SendResult{
			Success: false,
			Error:   err.Error(),
		}, goerr.Wrap(err, "failed to send reply", goerr.V("to", req.To))
	}

	return &model.SendResult{
		Success:   true,
		MessageID: sent.Id,
	}, nil
}

// buildRawReply renders an RFC 822 reply message
func buildRawReply(req *model.ReplyRequest) string {
	var sb strings.Builder

	sb.WriteString("To: " + req.To + "\r\n")
	sb.WriteString("Subject: " + replySubject(req.Subject) + "\r\n")
	if req.InReplyToID != "" {
		sb.WriteString("In-Reply-To: <" + req.InReplyToID + ">\r\n")
		sb.WriteString("References: <" + req.InReplyToID + ">\r\n")
	}
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(req.Body)

	return sb.String()
}

// replySubject prefixes the subject with "Re:" unless it already has one
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}
