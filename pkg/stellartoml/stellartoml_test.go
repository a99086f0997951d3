package stellartoml

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = `
NETWORK_PASSPHRASE = "Test SDF Network ; September 2015"
WEB_AUTH_ENDPOINT = "https://example.com/auth"
SIGNING_KEY = "GBWMCCC3NHSKLAOJDBKKYW7SSH2PFTTNVFKWSGLWGDLEBKLOVP5JLBBP"
ACCOUNTS = ["GAOO3LWBC4XF6VWRP5ESJ6IBHAISVJMSBTALHOQM2EZG7Q477UWA6L7U"]

[DOCUMENTATION]
ORG_NAME = "Example"
`

func TestParse(t *testing.T) {
	info, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Equal(t, "https://example.com/auth", info.WebAuthEndpoint)
	require.Equal(t, "GBWMCCC3NHSKLAOJDBKKYW7SSH2PFTTNVFKWSGLWGDLEBKLOVP5JLBBP", info.SigningKey)
	require.Equal(t, "Test SDF Network ; September 2015", info.NetworkPassphrase)
	require.Len(t, info.Accounts, 1)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("WEB_AUTH_ENDPOINT = "))
	require.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != WellKnownPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	domain := strings.TrimPrefix(srv.URL, "http://")
	info, err := Fetch(context.Background(), srv.Client(), domain, "http")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/auth", info.WebAuthEndpoint)
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	domain := strings.TrimPrefix(srv.URL, "http://")
	_, err := Fetch(context.Background(), srv.Client(), domain, "http")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# " + strings.Repeat("x", MaxSize) + "\n"))
	}))
	defer srv.Close()

	domain := strings.TrimPrefix(srv.URL, "http://")
	_, err := Fetch(context.Background(), srv.Client(), domain, "http")
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestURL(t *testing.T) {
	require.Equal(t, "https://example.com/.well-known/stellar.toml", URL("example.com", ""))
	require.Equal(t, "http://localhost:8000/.well-known/stellar.toml", URL("localhost:8000", "http"))
}
