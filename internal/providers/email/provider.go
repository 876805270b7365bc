package email

import "context"

// Attachment is one file carried by an outbound message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Provider is the outbound mail transport. A nil error means the
// transport confirmed acceptance of the message.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string, attachment *Attachment) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string, attachment *Attachment) error {
	return nil
}
