package mailbox

import (
	"encoding/base64"
	"strings"

	"github.com/emersion/go-message/mail"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/gmail-assistant/internal/assistant"
)

const (
	defaultSubject = "No Subject"
	defaultSender  = "Unknown Sender"
	defaultDate    = "No Date"
)

func headerOf(msg *gmail.Message) mail.Header {
	var h mail.Header
	if msg.Payload == nil {
		return h
	}
	for _, hd := range msg.Payload.Headers {
		h.Add(hd.Name, hd.Value)
	}
	return h
}

func extractSummary(msg *gmail.Message) assistant.EmailSummary {
	h := headerOf(msg)

	return assistant.EmailSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Subject:  orDefault(subjectOf(h), defaultSubject),
		From:     orDefault(h.Get("From"), defaultSender),
		Date:     orDefault(h.Get("Date"), defaultDate),
	}
}

func subjectOf(h mail.Header) string {
	s, err := h.Subject()
	if err != nil {
		return h.Get("Subject")
	}
	return s
}

// senderAddress returns the bare address of the From header, or the raw
// value when it cannot be parsed.
func senderAddress(h mail.Header) string {
	if addrs, err := h.AddressList("From"); err == nil && len(addrs) > 0 {
		return addrs[0].Address
	}

	from := h.Get("From")
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start != -1 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// extractMessageBodies walks the MIME tree and returns the first text/plain
// and text/html bodies found.
func extractMessageBodies(payload *gmail.MessagePart) (textBody, htmlBody string) {
	textBody, htmlBody = extractBodyFromPart(payload)

	for _, part := range payload.Parts {
		partText, partHTML := extractBodyFromPart(part)
		if textBody == "" {
			textBody = partText
		}
		if htmlBody == "" {
			htmlBody = partHTML
		}

		if len(part.Parts) > 0 {
			nestedText, nestedHTML := extractMessageBodies(part)
			if textBody == "" {
				textBody = nestedText
			}
			if htmlBody == "" {
				htmlBody = nestedHTML
			}
		}
	}

	return textBody, htmlBody
}

func extractBodyFromPart(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body == nil || part.Body.Data == "" || part.Filename != "" {
		return "", ""
	}

	switch strings.ToLower(part.MimeType) {
	case "text/plain":
		return decodeBase64URL(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URL(part.Body.Data)
	default:
		return "", ""
	}
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}
