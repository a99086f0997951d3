// Package e2e содержит end-to-end тесты для webauth.
package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/webauth/pkg/audit"
	"github.com/udisondev/webauth/pkg/challenge"
	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/strkey"
	"github.com/udisondev/webauth/pkg/webauth"
	"github.com/udisondev/webauth/pkg/webauthtest"
)

// TestAuthenticateWithAudit поднимает сервер аутентификации, домен кошелька
// и NATS, проходит аутентификацию и проверяет события аудита.
func TestAuthenticateWithAudit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// 1. NATS
	nats, err := webauthtest.StartNATS(ctx)
	require.NoError(t, err)
	defer nats.Terminate(ctx)
	t.Logf("NATS: %s", nats.URL())

	// 2. Аудит
	client, err := audit.Connect(audit.Config{URLs: []string{nats.URL()}, ReconnectWait: time.Second, MaxReconnects: 5})
	require.NoError(t, err)
	defer client.Close()

	events := make(chan audit.Event, 4)
	sub, err := audit.Subscribe(client, func(ev audit.Event) { events <- ev })
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, client.Flush())

	// 3. Сервер аутентификации и домен кошелька
	anchor, err := webauthtest.Start()
	require.NoError(t, err)
	defer anchor.Close()
	t.Logf("Anchor: %s", anchor.URL)

	walletKey, err := identity.Generate()
	require.NoError(t, err)
	wallet := webauthtest.StartClientDomain(walletKey, webauthtest.WithSigningToken("wallet-secret"))
	defer wallet.Close()

	// 4. Engine по метаданным домена
	engine, err := webauth.FromDomain(ctx, anchor.Domain, "",
		webauth.WithInsecureDomainLookup(),
		webauth.WithReporter(audit.NewPublisher(client)),
	)
	require.NoError(t, err)
	defer engine.Close()

	alice, err := identity.Generate()
	require.NoError(t, err)

	// 5. Успешная аутентификация с подписью кошелька
	token, err := engine.Authenticate(ctx, webauth.Request{
		Account:            alice.Address(),
		Signers:            []identity.Signer{alice},
		ClientDomain:       wallet.Domain,
		ClientDomainSigner: wallet.Signer(),
	})
	require.NoError(t, err)

	claims, err := anchor.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, alice.Address(), claims.Subject)
	require.Equal(t, wallet.Domain, claims.ClientDomain)

	// 6. Запрос чужого home domain отклоняется сервером
	_, err = engine.Authenticate(ctx, webauth.Request{
		Account:    alice.Address(),
		Signers:    []identity.Signer{alice},
		HomeDomain: "other.com",
	})
	require.ErrorIs(t, err, webauth.ErrChallengeRequest)

	// 7. Мемо с M-адресом отклоняется без обращения к серверу
	key, err := strkey.DecodeAccount(alice.Address())
	require.NoError(t, err)
	memo := uint64(1)
	_, err = engine.Authenticate(ctx, webauth.Request{
		Account: strkey.EncodeMuxed(key, 7),
		Signers: []identity.Signer{alice},
		Memo:    &memo,
	})
	require.ErrorIs(t, err, challenge.ErrMemoWithMuxedAccount)

	want := []string{webauth.ResultSuccess, "challenge_request", "memo_with_muxed_account"}
	for _, result := range want {
		select {
		case ev := <-events:
			require.Equal(t, result, ev.Result)
		case <-time.After(10 * time.Second):
			t.Fatalf("событие %s не получено", result)
		}
	}
}
