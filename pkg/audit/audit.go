// Package audit публикует итоги аутентификации в NATS.
package audit

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix — префикс subject событий аудита.
const DefaultSubjectPrefix = "webauth.audit"

// Client управляет соединением с NATS.
type Client struct {
	conn   *nats.Conn
	prefix string
}

// Config конфигурация NATS.
type Config struct {
	URLs          []string
	ReconnectWait time.Duration
	MaxReconnects int
	// SubjectPrefix — пустой означает DefaultSubjectPrefix.
	SubjectPrefix string
}

// Connect подключается к NATS.
func Connect(cfg Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name("webauth-audit"),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("audit: NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("audit: NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Debug("audit: NATS connection closed")
		}),
	}

	// NATS поддерживает URL через запятую
	url := nats.DefaultURL
	if len(cfg.URLs) > 0 {
		url = strings.Join(cfg.URLs, ",")
	}

	slog.Debug("audit: connecting", "urls", url)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	slog.Debug("audit: connection established", "server_id", conn.ConnectedServerId(), "url", conn.ConnectedUrl())

	return &Client{conn: conn, prefix: prefix}, nil
}

// Close дожидается отправки буфера и закрывает соединение.
func (c *Client) Close() error {
	if err := c.conn.Drain(); err != nil {
		return fmt.Errorf("drain NATS: %w", err)
	}
	return nil
}

// Flush дожидается подтверждения сервером всех опубликованных событий.
func (c *Client) Flush() error {
	return c.conn.Flush()
}

// subject возвращает subject события с результатом result.
func (c *Client) subject(result string) string {
	return c.prefix + "." + result
}

// wildcard возвращает subject подписки на все события.
func (c *Client) wildcard() string {
	return c.prefix + ".>"
}
