package webauth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Значения по умолчанию.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "webauth-go/1"
)

type options struct {
	httpClient   *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
	userAgent    string
	lookupScheme string
	reporter     Reporter
	now          func() time.Time
}

func defaultOptions() *options {
	return &options{
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		lookupScheme: "https",
		reporter:     nopReporter{},
		now:          time.Now,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option конфигурирует Engine.
type Option func(*options)

// WithHTTPClient задаёт HTTP-клиент. Клиент остаётся во владении
// вызывающего кода: Engine.Close его не трогает.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout задаёт таймаут каждого сетевого вызова. Ноль отключает таймаут.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRateLimit ограничивает частоту исходящих запросов.
func WithRateLimit(perSec float64, burst int) Option {
	return func(o *options) {
		o.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

// WithUserAgent задаёт заголовок User-Agent.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithInsecureDomainLookup загружает метаданные доменов по http.
// Использовать только в тестах.
func WithInsecureDomainLookup() Option {
	return func(o *options) {
		o.lookupScheme = "http"
	}
}

// WithReporter задаёт получателя итогов аутентификации.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r == nil {
			r = nopReporter{}
		}
		o.reporter = r
	}
}

// WithClock подменяет источник текущего времени для проверки окна challenge.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Reporter получает итог каждой попытки аутентификации.
// Вызывается синхронно из Authenticate.
type Reporter interface {
	Report(ctx context.Context, o Outcome)
}

type nopReporter struct{}

func (nopReporter) Report(context.Context, Outcome) {}
