package audit

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// Subscriber получает события аудита.
type Subscriber struct {
	sub *nats.Subscription
}

// Subscribe подписывается на события всех результатов.
// Сообщения, которые не декодируются, пропускаются.
func Subscribe(client *Client, handler func(Event)) (*Subscriber, error) {
	subject := client.wildcard()

	sub, err := client.conn.Subscribe(subject, func(msg *nats.Msg) {
		ev, err := UnmarshalEvent(msg.Data)
		if err != nil {
			slog.Warn("audit: skipping malformed event", "subject", msg.Subject, "error", err)
			return
		}
		handler(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}

	slog.Debug("audit: subscribed", "subject", subject)
	return &Subscriber{sub: sub}, nil
}

// Unsubscribe отписывается от событий.
func (s *Subscriber) Unsubscribe() error {
	if err := s.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("unsubscribe from %s: %w", s.sub.Subject, err)
	}
	return nil
}
