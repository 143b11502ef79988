package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"google.golang.org/api/gmail/v1"
)

// messageToEmail converts a Gmail API message into the domain model. Missing
// headers and undecodable parts degrade to empty fields rather than errors,
// real mailboxes contain plenty of malformed mail.
func messageToEmail(msg *gmail.Message) *model.Email {
	email := &model.Email{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		Labels:     msg.LabelIds,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
	}

	if msg.Payload != nil {
		email.Subject = headerValue(msg.Payload.Headers, "Subject")
		email.SenderName, email.SenderAddress = parseFrom(headerValue(msg.Payload.Headers, "From"))
		email.Body = extractPlainText(msg.Payload)
	}

	return email
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseFrom splits a From header into display name and address. A bare
// address yields an empty name.
func parseFrom(from string) (name, address string) {
	if from == "" {
		return "", ""
	}

	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", strings.TrimSpace(from)
	}
	return addr.Name, addr.Address
}

// extractPlainText walks the MIME tree and returns the first text/plain
// body. Single-part messages carry the body on the payload itself.
func extractPlainText(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if strings.HasPrefix(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}

	for _, p := range part.Parts {
		if body := extractPlainText(p); body != "" {
			return body
		}
	}

	// Fall back to whatever the top-level body holds (e.g. text/html only)
	if part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}

	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(decoded)
}
