package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/webauth/pkg/config"
	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/webauth"
	"github.com/udisondev/webauth/pkg/webauthtest"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { configPath = "" })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestKeygen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "account.seed")

	out := execute(t, "keygen", "--out", path)

	kp, err := identity.LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, kp.Address(), strings.TrimSpace(out))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	rootCmd.SetArgs([]string{"keygen", "--out", path})
	require.Error(t, rootCmd.Execute(), "существующий ключ не перезаписывается без --force")
	keygenOut, keygenForce = "", false
}

func TestToken(t *testing.T) {
	anchor, err := webauthtest.Start()
	require.NoError(t, err)
	defer anchor.Close()

	dir := t.TempDir()
	kp, err := identity.Generate()
	require.NoError(t, err)
	keyFile := filepath.Join(dir, "account.seed")
	require.NoError(t, kp.SaveToFile(keyFile))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
server:
  auth_endpoint: %s
  signing_key: %s
  home_domain: %s
network:
  passphrase: %q
auth:
  key_file: %s
log:
  file: %s
`, anchor.AuthEndpoint(), anchor.ServerKey.Address(), anchor.HomeDomain(),
		anchor.NetworkPassphrase(), keyFile, filepath.Join(dir, "webauth.log"))), 0600))

	out := execute(t, "--config", cfgPath, "token")

	claims, err := anchor.VerifyToken(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, kp.Address(), claims.Subject)
}

func TestApplyClientDomain(t *testing.T) {
	dir := t.TempDir()
	kp, err := identity.Generate()
	require.NoError(t, err)
	keyFile := filepath.Join(dir, "wallet.seed")
	require.NoError(t, kp.SaveToFile(keyFile))

	var req webauth.Request
	require.NoError(t, applyClientDomain(&req, config.ClientDomainConfig{}))
	require.Empty(t, req.ClientDomain)

	req = webauth.Request{}
	require.NoError(t, applyClientDomain(&req, config.ClientDomainConfig{
		Domain:    "wallet.example",
		KeyFile:   keyFile,
		SignerURL: "https://wallet.example/sign",
	}))
	require.Equal(t, "wallet.example", req.ClientDomain)
	require.NotNil(t, req.ClientDomainKey, "локальный ключ имеет приоритет")
	require.Nil(t, req.ClientDomainSigner)

	req = webauth.Request{}
	require.NoError(t, applyClientDomain(&req, config.ClientDomainConfig{
		Domain:      "wallet.example",
		SignerURL:   "https://wallet.example/sign",
		SignerToken: "secret",
	}))
	require.Equal(t, webauth.RemoteSigner{URL: "https://wallet.example/sign", Token: "secret"}, req.ClientDomainSigner)
}
