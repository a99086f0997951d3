package webauthtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/stellartoml"
	"github.com/udisondev/webauth/pkg/webauth"
)

// SignPath — путь сервера подписи client domain.
const SignPath = "/sign"

// ClientDomain — тестовый домен кошелька: stellar.toml с SIGNING_KEY и
// сервер подписи challenge.
type ClientDomain struct {
	// Domain — host:port для параметра client_domain.
	Domain string
	// Key — ключ подписи домена.
	Key *identity.KeyPair
	// Token — bearer-токен, который требует сервер подписи; пустой — не требует.
	Token string

	srv     *httptest.Server
	signer  webauth.KeySigner
	omitKey bool
}

// ClientDomainOption опция конфигурации ClientDomain.
type ClientDomainOption func(*ClientDomain)

// WithSigningToken требует bearer-токен от клиентов сервера подписи.
func WithSigningToken(token string) ClientDomainOption {
	return func(c *ClientDomain) { c.Token = token }
}

// WithoutSigningKey публикует stellar.toml без SIGNING_KEY.
func WithoutSigningKey() ClientDomainOption {
	return func(c *ClientDomain) { c.omitKey = true }
}

// StartClientDomain запускает домен кошелька с ключом kp.
func StartClientDomain(kp *identity.KeyPair, opts ...ClientDomainOption) *ClientDomain {
	c := &ClientDomain{Key: kp, signer: webauth.KeySigner{Key: kp}}
	for _, opt := range opts {
		opt(c)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+stellartoml.WellKnownPath, c.handleTOML)
	mux.HandleFunc("POST "+SignPath, c.handleSign)

	c.srv = httptest.NewServer(mux)
	c.Domain = strings.TrimPrefix(c.srv.URL, "http://")
	return c
}

// Close останавливает сервер.
func (c *ClientDomain) Close() {
	c.srv.Close()
}

// Signer возвращает удалённого подписанта, настроенного на этот домен.
func (c *ClientDomain) Signer() webauth.RemoteSigner {
	return webauth.RemoteSigner{
		URL:    c.srv.URL + SignPath,
		Token:  c.Token,
		Client: c.srv.Client(),
	}
}

func (c *ClientDomain) handleTOML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if c.omitKey {
		fmt.Fprintln(w, `ORG_NAME = "wallet"`)
		return
	}
	fmt.Fprintf(w, "SIGNING_KEY = %q\n", c.Key.Address())
}

func (c *ClientDomain) handleSign(w http.ResponseWriter, r *http.Request) {
	if c.Token != "" && r.Header.Get("Authorization") != "Bearer "+c.Token {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body struct {
		Transaction       string `json:"transaction"`
		NetworkPassphrase string `json:"network_passphrase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	signed, err := c.signer.SignChallenge(r.Context(), body.Transaction, body.NetworkPassphrase)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transaction": signed})
}
