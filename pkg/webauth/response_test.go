package webauth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/webauth/pkg/identity"
)

func TestParseSubmit(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantKind  ErrorKind
	}{
		{"token", http.StatusOK, `{"token":"abc"}`, "abc", 0},
		{"error_on_400", http.StatusBadRequest, `{"error":"bad signature"}`, "", KindSubmitErrorResponse},
		{"error_on_200", http.StatusOK, `{"error":"nope"}`, "", KindSubmitErrorResponse},
		{"error_wins_over_token", http.StatusOK, `{"token":"abc","error":"nope"}`, "", KindSubmitErrorResponse},
		{"empty_object", http.StatusOK, `{}`, "", KindSubmitUnknownResponse},
		{"not_json", http.StatusBadRequest, `oops`, "", KindSubmitUnknownResponse},
		{"timeout", http.StatusGatewayTimeout, ``, "", KindSubmitTimeout},
		{"server_error", http.StatusInternalServerError, `{"token":"abc"}`, "", KindSubmitUnknownResponse},
		{"unauthorized", http.StatusUnauthorized, `denied`, "", KindSubmitUnknownResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := parseSubmit(&response{status: tt.status, body: []byte(tt.body)})
			if tt.wantKind == 0 {
				require.NoError(t, err)
				require.Equal(t, tt.wantToken, token)
				return
			}

			var we *Error
			require.True(t, errors.As(err, &we))
			require.Equal(t, tt.wantKind, we.Kind)
			require.Equal(t, tt.status, we.StatusCode)
		})
	}
}

func TestParseSubmitKeepsContext(t *testing.T) {
	_, err := parseSubmit(&response{status: http.StatusTeapot, body: []byte("short and stout")})

	var we *Error
	require.True(t, errors.As(err, &we))
	require.Equal(t, "short and stout", we.Body)

	_, err = parseSubmit(&response{status: http.StatusBadRequest, body: []byte(`{"error":"expired"}`)})
	require.True(t, errors.As(err, &we))
	require.Equal(t, "expired", we.Message)
	require.Contains(t, err.Error(), "expired")
}

func TestParseChallenge(t *testing.T) {
	const passphrase = "Test Network"

	tests := []struct {
		name     string
		status   int
		body     string
		want     string
		wantKind ErrorKind
	}{
		{"ok", http.StatusOK, `{"transaction":"AAAA"}`, "AAAA", 0},
		{"ok_with_passphrase", http.StatusOK, `{"transaction":"AAAA","network_passphrase":"Test Network"}`, "AAAA", 0},
		{"wrong_passphrase", http.StatusOK, `{"transaction":"AAAA","network_passphrase":"Other"}`, "", KindInvalidNetworkPassphrase},
		{"missing_transaction", http.StatusOK, `{}`, "", KindMissingTransaction},
		{"not_json", http.StatusOK, `<html>`, "", KindMissingTransaction},
		{"not_found", http.StatusNotFound, `not found`, "", KindChallengeRequest},
		{"bad_request", http.StatusBadRequest, `{"error":"x"}`, "", KindChallengeRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChallenge(&response{status: tt.status, body: []byte(tt.body)}, passphrase)
			if tt.wantKind == 0 {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
				return
			}
			var we *Error
			require.True(t, errors.As(err, &we))
			require.Equal(t, tt.wantKind, we.Kind)
		})
	}
}

func TestChallengeRequestErrorCarriesStatusAndBody(t *testing.T) {
	_, err := parseChallenge(&response{status: http.StatusForbidden, body: []byte("account blocked")}, "n")

	require.ErrorIs(t, err, ErrChallengeRequest)
	require.NotErrorIs(t, err, ErrTransport)

	var we *Error
	require.True(t, errors.As(err, &we))
	require.Equal(t, http.StatusForbidden, we.StatusCode)
	require.Equal(t, "account blocked", we.Body)
}

func TestTransportOwnership(t *testing.T) {
	own := newTransport(defaultOptions())
	require.Equal(t, owned, own.ownership)
	require.NotSame(t, http.DefaultClient, own.client)
	own.close()

	client := &http.Client{}
	o := defaultOptions()
	WithHTTPClient(client)(o)
	b := newTransport(o)
	require.Equal(t, borrowed, b.ownership)
	require.Same(t, client, b.client)
	b.close()
}

func TestResultOf(t *testing.T) {
	require.Equal(t, ResultSuccess, resultOf(nil))
	require.Equal(t, "submit_timeout", resultOf(&Error{Kind: KindSubmitTimeout}))
	require.Equal(t, "error", resultOf(errors.New("boom")))
}

func TestConfigValidate(t *testing.T) {
	server, err := identity.Generate()
	require.NoError(t, err)

	valid := Config{
		AuthEndpoint:      "https://example.com/auth",
		NetworkPassphrase: "Test Network",
		ServerSigningKey:  server.Address(),
		ServerHomeDomain:  "example.com",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"no_endpoint", func(c *Config) { c.AuthEndpoint = "" }},
		{"relative_endpoint", func(c *Config) { c.AuthEndpoint = "/auth" }},
		{"ftp_endpoint", func(c *Config) { c.AuthEndpoint = "ftp://example.com/auth" }},
		{"no_passphrase", func(c *Config) { c.NetworkPassphrase = "" }},
		{"bad_key", func(c *Config) { c.ServerSigningKey = "GABC" }},
		{"seed_as_key", func(c *Config) { c.ServerSigningKey = server.Seed() }},
		{"no_home_domain", func(c *Config) { c.ServerHomeDomain = "" }},
		{"negative_grace", func(c *Config) { c.GracePeriod = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mod(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
