package webauthtest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/udisondev/webauth/pkg/challenge"
	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/stellartoml"
	"github.com/udisondev/webauth/pkg/strkey"
	"github.com/udisondev/webauth/pkg/webauth"
	"github.com/udisondev/webauth/pkg/xdr"
)

// AuthPath — путь эндпоинта аутентификации тестового сервера.
const AuthPath = "/auth"

// Anchor — тестовый сервер аутентификации.
type Anchor struct {
	// URL — базовый адрес сервера (http://127.0.0.1:port).
	URL string
	// Domain — host:port сервера; используется как home domain по умолчанию.
	Domain string
	// ServerKey подписывает challenge.
	ServerKey *identity.KeyPair
	// TokenKey подписывает JWT.
	TokenKey ed25519.PrivateKey

	o             *options
	srv           *httptest.Server
	webAuthDomain string

	mu       sync.Mutex
	requests []Request
}

// Request — запрос, полученный сервером.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

// Option опция конфигурации Anchor.
type Option func(*options)

type options struct {
	homeDomain       string
	network          string
	challengeTimeout time.Duration
	tokenTTL         time.Duration
	mutate           func(env *xdr.TransactionEnvelope)
	serverKey        *identity.KeyPair
}

func defaultOptions() *options {
	return &options{
		network:          xdr.TestNetworkPassphrase,
		challengeTimeout: 5 * time.Minute,
		tokenTTL:         time.Hour,
	}
}

// WithHomeDomain задаёт home domain вместо host:port сервера.
func WithHomeDomain(domain string) Option {
	return func(o *options) { o.homeDomain = domain }
}

// WithNetworkPassphrase задаёт сеть.
func WithNetworkPassphrase(passphrase string) Option {
	return func(o *options) { o.network = passphrase }
}

// WithChallengeTimeout задаёт длину окна времени challenge.
func WithChallengeTimeout(d time.Duration) Option {
	return func(o *options) { o.challengeTimeout = d }
}

// WithTokenTTL задаёт срок действия выдаваемых токенов.
func WithTokenTTL(d time.Duration) Option {
	return func(o *options) { o.tokenTTL = d }
}

// WithServerKey задаёт ключ подписи challenge.
func WithServerKey(kp *identity.KeyPair) Option {
	return func(o *options) { o.serverKey = kp }
}

// WithChallengeMutator изменяет каждый выдаваемый challenge перед подписью
// сервера. Нужен для проверки реакции клиента на некорректный challenge.
func WithChallengeMutator(fn func(env *xdr.TransactionEnvelope)) Option {
	return func(o *options) { o.mutate = fn }
}

// Start запускает тестовый сервер аутентификации.
func Start(opts ...Option) (*Anchor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	serverKey := o.serverKey
	if serverKey == nil {
		var err error
		if serverKey, err = identity.Generate(); err != nil {
			return nil, fmt.Errorf("generate server key: %w", err)
		}
	}

	_, tokenKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate token key: %w", err)
	}

	a := &Anchor{
		ServerKey: serverKey,
		TokenKey:  tokenKey,
		o:         o,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+AuthPath, a.handleChallenge)
	mux.HandleFunc("POST "+AuthPath, a.handleToken)
	mux.HandleFunc("GET "+stellartoml.WellKnownPath, a.handleTOML)

	a.srv = httptest.NewServer(a.record(mux))
	a.URL = a.srv.URL
	a.Domain = strings.TrimPrefix(a.srv.URL, "http://")
	if u, err := url.Parse(a.srv.URL); err == nil {
		a.webAuthDomain = u.Hostname()
	}
	if o.homeDomain == "" {
		o.homeDomain = a.Domain
	}
	return a, nil
}

// Close останавливает сервер.
func (a *Anchor) Close() {
	a.srv.Close()
}

// AuthEndpoint возвращает URL эндпоинта аутентификации.
func (a *Anchor) AuthEndpoint() string {
	return a.URL + AuthPath
}

// HomeDomain возвращает home domain сервера.
func (a *Anchor) HomeDomain() string {
	return a.o.homeDomain
}

// NetworkPassphrase возвращает сеть сервера.
func (a *Anchor) NetworkPassphrase() string {
	return a.o.network
}

// EngineConfig возвращает конфигурацию клиента для этого сервера.
func (a *Anchor) EngineConfig() webauth.Config {
	return webauth.Config{
		AuthEndpoint:      a.AuthEndpoint(),
		NetworkPassphrase: a.o.network,
		ServerSigningKey:  a.ServerKey.Address(),
		ServerHomeDomain:  a.o.homeDomain,
	}
}

// Requests возвращает копию полученных запросов.
func (a *Anchor) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Request, len(a.requests))
	copy(out, a.requests)
	return out
}

func (a *Anchor) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.requests = append(a.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		a.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (a *Anchor) handleTOML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "NETWORK_PASSPHRASE = %q\nWEB_AUTH_ENDPOINT = %q\nSIGNING_KEY = %q\n",
		a.o.network, a.AuthEndpoint(), a.ServerKey.Address())
}

func (a *Anchor) handleChallenge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	account := q.Get("account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "account is required")
		return
	}

	var memo *uint64
	if v := q.Get("memo"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid memo")
			return
		}
		memo = &id
	}

	if hd := q.Get("home_domain"); hd != "" && hd != a.o.homeDomain {
		writeError(w, http.StatusBadRequest, "invalid home_domain")
		return
	}

	var clientDomainAccount string
	clientDomain := q.Get("client_domain")
	if clientDomain != "" {
		info, err := stellartoml.Fetch(r.Context(), nil, clientDomain, "http")
		if err != nil || info.SigningKey == "" {
			writeError(w, http.StatusBadRequest, "client domain signing key not found")
			return
		}
		clientDomainAccount = info.SigningKey
	}

	tx, err := challenge.Build(challenge.BuildParams{
		ServerKey:           a.ServerKey,
		ClientAccount:       account,
		HomeDomain:          a.o.homeDomain,
		WebAuthDomain:       a.webAuthDomain,
		NetworkPassphrase:   a.o.network,
		Timeout:             a.o.challengeTimeout,
		Memo:                memo,
		ClientDomain:        clientDomain,
		ClientDomainAccount: clientDomainAccount,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	encoded, err := tx.Encode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if a.o.mutate != nil {
		if encoded, err = a.mutate(encoded); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"transaction":        encoded,
		"network_passphrase": a.o.network,
	})
}

// mutate применяет WithChallengeMutator и переподписывает challenge.
func (a *Anchor) mutate(encoded string) (string, error) {
	env, err := xdr.DecodeEnvelope(encoded)
	if err != nil {
		return "", err
	}
	a.o.mutate(env)

	hash, err := xdr.TransactionHash(&env.Tx, a.o.network)
	if err != nil {
		return "", err
	}
	env.Signatures = []xdr.DecoratedSignature{{
		Hint:      a.ServerKey.Hint(),
		Signature: a.ServerKey.Sign(hash[:]),
	}}
	return xdr.EncodeEnvelope(env)
}

func (a *Anchor) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Transaction string `json:"transaction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Transaction == "" {
		writeError(w, http.StatusBadRequest, "transaction is required")
		return
	}

	claims, err := a.verify(body.Transaction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := a.issueToken(claims)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// verify проверяет подписанный клиентом challenge и возвращает claims токена.
func (a *Anchor) verify(encoded string) (*webauth.Claims, error) {
	tx, err := challenge.Decode(encoded)
	if err != nil {
		return nil, err
	}
	hash, err := tx.Hash(a.o.network)
	if err != nil {
		return nil, err
	}

	sigs := tx.Signatures()
	if len(sigs) < 2 {
		return nil, errors.New("challenge is not signed by the client")
	}
	if !identity.VerifyAddress(a.ServerKey.Address(), hash[:], sigs[0].Signature) {
		return nil, errors.New("server signature is missing")
	}

	tb := tx.TimeBounds()
	if tb != nil && tb.MaxTime != 0 && uint64(time.Now().Unix()) > tb.MaxTime {
		return nil, errors.New("challenge expired")
	}

	ops := tx.Operations()
	account := ops[0].SourceAccount
	base, err := strkey.BaseAccount(account)
	if err != nil {
		return nil, err
	}

	required := []string{base}
	var clientDomain string
	for _, op := range ops[1:] {
		if op.Name == challenge.ClientDomainName {
			clientDomain = string(op.Value)
			required = append(required, op.SourceAccount)
		}
	}

	for _, signer := range required {
		if !signedBy(signer, hash[:], sigs[1:]) {
			return nil, fmt.Errorf("signature of %s is missing", signer)
		}
	}

	subject := account
	if m := tx.Memo(); m != nil {
		subject = account + ":" + strconv.FormatUint(m.ID, 10)
	}
	return &webauth.Claims{ClientDomain: clientDomain, RegisteredClaims: registered(a.AuthEndpoint(), subject, a.o.tokenTTL)}, nil
}

func signedBy(address string, hash []byte, sigs []xdr.DecoratedSignature) bool {
	for _, s := range sigs {
		if identity.VerifyAddress(address, hash, s.Signature) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
