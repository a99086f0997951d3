// Package webauth реализует клиентскую сторону аутентификации аккаунта
// по challenge: запрос challenge, проверку, подпись и обмен на токен.
package webauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/webauth/pkg/challenge"
	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/strkey"
)

// Config — неизменяемые параметры сервера аутентификации.
type Config struct {
	// AuthEndpoint — абсолютный URL (http или https) эндпоинта аутентификации.
	AuthEndpoint      string
	NetworkPassphrase string
	// ServerSigningKey — G-адрес ключа, которым сервер подписывает challenge.
	ServerSigningKey string
	// ServerHomeDomain — домен сервера по умолчанию.
	ServerHomeDomain string
	// GracePeriod — допуск окна времени; ноль — challenge.DefaultGracePeriod.
	GracePeriod time.Duration
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	var errs []error

	if c.AuthEndpoint == "" {
		errs = append(errs, errors.New("auth endpoint is required"))
	} else if u, err := url.Parse(c.AuthEndpoint); err != nil {
		errs = append(errs, fmt.Errorf("auth endpoint: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("auth endpoint must be an absolute http(s) URL: %q", c.AuthEndpoint))
	}

	if c.NetworkPassphrase == "" {
		errs = append(errs, errors.New("network passphrase is required"))
	}
	if !strkey.IsValid(strkey.VersionByteAccountID, c.ServerSigningKey) {
		errs = append(errs, fmt.Errorf("invalid server signing key: %q", c.ServerSigningKey))
	}
	if c.ServerHomeDomain == "" {
		errs = append(errs, errors.New("server home domain is required"))
	}
	if c.GracePeriod < 0 {
		errs = append(errs, errors.New("grace period must not be negative"))
	}

	return errors.Join(errs...)
}

// Request — параметры одной попытки аутентификации.
type Request struct {
	// Account — G- или M-адрес аутентифицируемого аккаунта.
	Account string
	// Signers подписывают challenge в указанном порядке.
	Signers []identity.Signer
	// Memo — идентификатор пользователя общего аккаунта; несовместим с M-адресом.
	Memo *uint64
	// HomeDomain — пустой означает Config.ServerHomeDomain.
	HomeDomain string

	// ClientDomain — домен кошелька, который подтверждает запрос своей подписью.
	ClientDomain string
	// ClientDomainKey — локальный ключ client domain. Имеет приоритет
	// над ClientDomainSigner.
	ClientDomainKey identity.Signer
	// ClientDomainSigner — удалённая подпись; аккаунт подписанта берётся
	// из SIGNING_KEY метаданных ClientDomain.
	ClientDomainSigner ChallengeSigner
}

// Outcome — итог попытки аутентификации.
type Outcome struct {
	RequestID    string
	Account      string
	HomeDomain   string
	ClientDomain string
	// Result — "success" или имя вида отказа.
	Result   string
	Err      error
	Started  time.Time
	Duration time.Duration
}

// ResultSuccess — Outcome.Result успешной попытки.
const ResultSuccess = "success"

// Engine выполняет аутентификацию против одного сервера.
// Неизменяем после создания; Authenticate безопасен для конкурентных вызовов.
type Engine struct {
	cfg           Config
	webAuthDomain string
	transport     *transport
	lookupScheme  string
	reporter      Reporter
	now           func() time.Time
}

// New создаёт Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	return newEngine(cfg, buildOptions(opts))
}

func newEngine(cfg Config, o *options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = challenge.DefaultGracePeriod
	}

	u, _ := url.Parse(cfg.AuthEndpoint)

	return &Engine{
		cfg:           cfg,
		webAuthDomain: u.Hostname(),
		transport:     newTransport(o),
		lookupScheme:  o.lookupScheme,
		reporter:      o.reporter,
		now:           o.now,
	}, nil
}

// FromDomain создаёт Engine по метаданным домена. Пустой passphrase
// берётся из NETWORK_PASSPHRASE метаданных.
func FromDomain(ctx context.Context, domain, passphrase string, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)
	t := newTransport(o)

	info, err := t.lookup(withRequestID(ctx, uuid.NewString()), domain, o.lookupScheme)
	if err != nil {
		t.close()
		return nil, &Error{Kind: KindTransport, Message: "resolve " + domain, Err: err}
	}
	if info.WebAuthEndpoint == "" {
		t.close()
		return nil, &Error{Kind: KindNoWebAuthEndpoint, Message: domain}
	}
	if info.SigningKey == "" {
		t.close()
		return nil, &Error{Kind: KindNoSigningKey, Message: domain}
	}
	if passphrase == "" {
		passphrase = info.NetworkPassphrase
	}

	// Клиент, созданный выше, переходит к Engine вместе с владением.
	o.httpClient = t.client
	e, err := newEngine(Config{
		AuthEndpoint:      info.WebAuthEndpoint,
		NetworkPassphrase: passphrase,
		ServerSigningKey:  info.SigningKey,
		ServerHomeDomain:  domain,
	}, o)
	if err != nil {
		t.close()
		return nil, err
	}
	e.transport.ownership = t.ownership
	return e, nil
}

// Config возвращает конфигурацию Engine.
func (e *Engine) Config() Config {
	return e.cfg
}

// Close освобождает HTTP-клиент, если Engine создал его сам.
func (e *Engine) Close() error {
	e.transport.close()
	return nil
}

// Authenticate проходит протокол и возвращает токен.
// Ошибки проверки challenge — *challenge.ValidationError, остальные — *Error.
func (e *Engine) Authenticate(ctx context.Context, req Request) (token string, err error) {
	requestID := uuid.NewString()
	ctx = withRequestID(ctx, requestID)
	started := time.Now()

	homeDomain := req.HomeDomain
	if homeDomain == "" {
		homeDomain = e.cfg.ServerHomeDomain
	}

	defer func() {
		e.observe(ctx, Outcome{
			RequestID:    requestID,
			Account:      req.Account,
			HomeDomain:   homeDomain,
			ClientDomain: req.ClientDomain,
			Result:       resultOf(err),
			Err:          err,
			Started:      started,
			Duration:     time.Since(started),
		})
	}()

	// Мемо и M-адрес взаимоисключающие; сеть не трогаем.
	if req.Memo != nil && strkey.IsMuxed(req.Account) {
		return "", &challenge.ValidationError{
			Kind:   challenge.KindMemoWithMuxedAccount,
			Detail: "memo requested for muxed account",
			Actual: req.Account,
		}
	}

	encoded, err := e.fetchChallenge(ctx, req)
	if err != nil {
		return "", err
	}

	clientDomainAccount, err := e.resolveClientDomainAccount(ctx, req)
	if err != nil {
		return "", err
	}

	tx, err := challenge.Decode(encoded)
	if err != nil {
		return "", &Error{Kind: KindChallengeDecode, Err: err}
	}

	err = challenge.Validate(tx, challenge.Params{
		ServerAccount:       e.cfg.ServerSigningKey,
		HomeDomain:          homeDomain,
		WebAuthDomain:       e.webAuthDomain,
		NetworkPassphrase:   e.cfg.NetworkPassphrase,
		ClientAccount:       req.Account,
		ClientDomainAccount: clientDomainAccount,
		GracePeriod:         e.cfg.GracePeriod,
		Memo:                req.Memo,
		Now:                 e.now(),
	})
	if err != nil {
		slog.Warn("webauth: challenge rejected", "request_id", requestID, "account", req.Account, "error", err)
		return "", err
	}

	if tx, err = e.signClientDomain(ctx, tx, req, clientDomainAccount); err != nil {
		return "", err
	}

	if err := tx.Sign(e.cfg.NetworkPassphrase, req.Signers...); err != nil {
		return "", fmt.Errorf("sign challenge: %w", err)
	}

	signed, err := tx.Encode()
	if err != nil {
		return "", fmt.Errorf("encode challenge: %w", err)
	}

	return e.submit(ctx, signed)
}

func (e *Engine) fetchChallenge(ctx context.Context, req Request) (string, error) {
	u, err := url.Parse(e.cfg.AuthEndpoint)
	if err != nil {
		return "", fmt.Errorf("parse auth endpoint: %w", err)
	}
	q := u.Query()
	q.Set("account", req.Account)
	if req.Memo != nil {
		q.Set("memo", strconv.FormatUint(*req.Memo, 10))
	}
	if req.HomeDomain != "" {
		q.Set("home_domain", req.HomeDomain)
	}
	if req.ClientDomain != "" {
		q.Set("client_domain", req.ClientDomain)
	}
	u.RawQuery = q.Encode()

	slog.Debug("webauth: fetching challenge", "request_id", requestIDFrom(ctx), "account", req.Account)

	resp, err := e.transport.get(ctx, u.String())
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "fetch challenge", Err: err}
	}
	return parseChallenge(resp, e.cfg.NetworkPassphrase)
}

// resolveClientDomainAccount возвращает аккаунт, которым client domain
// подписывает challenge, или пустую строку без client domain.
func (e *Engine) resolveClientDomainAccount(ctx context.Context, req Request) (string, error) {
	if req.ClientDomainKey != nil {
		return req.ClientDomainKey.Address(), nil
	}
	if req.ClientDomainSigner == nil {
		return "", nil
	}
	if req.ClientDomain == "" {
		return "", &Error{Kind: KindMissingClientDomain}
	}

	info, err := e.transport.lookup(ctx, req.ClientDomain, e.lookupScheme)
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "resolve client domain " + req.ClientDomain, Err: err}
	}
	if info.SigningKey == "" {
		return "", &Error{Kind: KindNoClientDomainSigningKey, Message: req.ClientDomain}
	}
	return info.SigningKey, nil
}

// signClientDomain добавляет подпись client domain перед подписями клиента.
func (e *Engine) signClientDomain(ctx context.Context, tx *challenge.Transaction, req Request, account string) (*challenge.Transaction, error) {
	switch {
	case req.ClientDomainKey != nil:
		if err := tx.Sign(e.cfg.NetworkPassphrase, req.ClientDomainKey); err != nil {
			return nil, &Error{Kind: KindClientDomainSigning, Err: err}
		}
		return tx, nil

	case req.ClientDomainSigner != nil:
		encoded, err := tx.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode challenge: %w", err)
		}
		sctx, cancel := e.transport.bound(ctx)
		signedEncoded, err := req.ClientDomainSigner.SignChallenge(sctx, encoded, e.cfg.NetworkPassphrase)
		cancel()
		if err != nil {
			return nil, &Error{Kind: KindClientDomainSigning, Message: req.ClientDomain, Err: err}
		}
		signed, err := challenge.Decode(signedEncoded)
		if err != nil {
			return nil, &Error{Kind: KindClientDomainSigning, Message: req.ClientDomain, Err: err}
		}
		if err := checkCoSigned(tx, signed, account, e.cfg.NetworkPassphrase); err != nil {
			return nil, &Error{Kind: KindClientDomainSigning, Message: req.ClientDomain, Err: err}
		}
		return signed, nil
	}
	return tx, nil
}

func (e *Engine) submit(ctx context.Context, encoded string) (string, error) {
	slog.Debug("webauth: submitting challenge", "request_id", requestIDFrom(ctx))

	resp, err := e.transport.postJSON(ctx, e.cfg.AuthEndpoint, submitRequest{Transaction: encoded})
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: "submit challenge", Err: err}
	}
	return parseSubmit(resp)
}

func (e *Engine) observe(ctx context.Context, o Outcome) {
	authTotal.WithLabelValues(o.Result).Inc()
	authDuration.Observe(o.Duration.Seconds())

	if o.Err != nil {
		slog.Info("webauth: authentication failed",
			"request_id", o.RequestID, "account", o.Account, "result", o.Result, "duration", o.Duration)
	} else {
		slog.Info("webauth: authenticated",
			"request_id", o.RequestID, "account", o.Account, "duration", o.Duration)
	}

	e.reporter.Report(ctx, o)
}

// resultOf возвращает метку результата для метрик и аудита.
func resultOf(err error) string {
	if err == nil {
		return ResultSuccess
	}
	var we *Error
	if errors.As(err, &we) {
		return we.Kind.String()
	}
	if kind, ok := challenge.KindOf(err); ok {
		return strings.ReplaceAll(kind.String(), " ", "_")
	}
	return "error"
}
