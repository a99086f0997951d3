package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/webauth/pkg/webauth"
)

// Publisher публикует события аудита. Реализует webauth.Reporter.
type Publisher struct {
	client *Client
}

// NewPublisher создаёт издателя.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish публикует событие в subject его результата.
func (p *Publisher) Publish(ev Event) error {
	data, err := ev.Marshal()
	if err != nil {
		return err
	}
	subject := p.client.subject(ev.Result)
	if err := p.client.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Report публикует итог попытки. Ошибка публикации только логируется:
// аудит не влияет на результат аутентификации.
func (p *Publisher) Report(_ context.Context, o webauth.Outcome) {
	if err := p.Publish(EventFromOutcome(o)); err != nil {
		slog.Error("audit: publish failed", "request_id", o.RequestID, "error", err)
	}
}

var _ webauth.Reporter = (*Publisher)(nil)
