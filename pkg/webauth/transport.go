package webauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/udisondev/webauth/pkg/stellartoml"
)

// maxResponseSize — предел чтения тела ответа.
const maxResponseSize = 1 << 20

// ownership определяет, кто закрывает HTTP-клиент.
type ownership int

const (
	// owned — клиент создан Engine и освобождается в Close.
	owned ownership = iota
	// borrowed — клиент передан вызывающим кодом и не освобождается.
	borrowed
)

func (o ownership) String() string {
	if o == borrowed {
		return "borrowed"
	}
	return "owned"
}

// transport выполняет HTTP-запросы Engine.
type transport struct {
	client    *http.Client
	ownership ownership
	timeout   time.Duration
	limiter   *rate.Limiter
	userAgent string
}

func newTransport(o *options) *transport {
	t := &transport{
		client:    o.httpClient,
		ownership: borrowed,
		timeout:   o.timeout,
		limiter:   o.limiter,
		userAgent: o.userAgent,
	}
	if t.client == nil {
		t.client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		t.ownership = owned
	}
	return t
}

// response — прочитанный ответ сервера.
type response struct {
	status int
	body   []byte
}

func (t *transport) get(ctx context.Context, url string) (*response, error) {
	return t.do(ctx, http.MethodGet, url, nil)
}

func (t *transport) postJSON(ctx context.Context, url string, v any) (*response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return t.do(ctx, http.MethodPost, url, payload)
}

// bound ограничивает ctx таймаутом одного обращения к сети.
func (t *transport) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout > 0 {
		return context.WithTimeout(ctx, t.timeout)
	}
	return context.WithCancel(ctx)
}

func (t *transport) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// lookup загружает метаданные домена с таймаутом, лимитом и заголовками Engine.
func (t *transport) lookup(ctx context.Context, domain, scheme string) (*stellartoml.Info, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return stellartoml.Fetch(ctx, t, domain, scheme)
}

// Do отправляет запрос с User-Agent и X-Request-ID.
func (t *transport) Do(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if id := requestIDFrom(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	return t.client.Do(req)
}

func (t *transport) do(ctx context.Context, method, url string, payload []byte) (*response, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()

	if err := t.wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	slog.Debug("transport: response",
		"request_id", requestIDFrom(ctx),
		"method", method,
		"status", resp.StatusCode,
		"size", len(data))

	return &response{status: resp.StatusCode, body: data}, nil
}

// close освобождает простаивающие соединения собственного клиента.
func (t *transport) close() {
	if t.ownership != owned {
		return
	}
	t.client.CloseIdleConnections()
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
