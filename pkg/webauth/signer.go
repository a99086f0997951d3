package webauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/udisondev/webauth/pkg/challenge"
	"github.com/udisondev/webauth/pkg/identity"
)

// ChallengeSigner подписывает закодированный challenge от имени client domain
// и возвращает его с добавленной подписью.
type ChallengeSigner interface {
	SignChallenge(ctx context.Context, encoded, networkPassphrase string) (string, error)
}

// ChallengeSignerFunc — функция как ChallengeSigner.
type ChallengeSignerFunc func(ctx context.Context, encoded, networkPassphrase string) (string, error)

// SignChallenge вызывает f.
func (f ChallengeSignerFunc) SignChallenge(ctx context.Context, encoded, networkPassphrase string) (string, error) {
	return f(ctx, encoded, networkPassphrase)
}

// KeySigner подписывает challenge локальным ключом.
type KeySigner struct {
	Key identity.Signer
}

// SignChallenge декодирует challenge, добавляет подпись и кодирует обратно.
func (s KeySigner) SignChallenge(_ context.Context, encoded, networkPassphrase string) (string, error) {
	if s.Key == nil {
		return "", errors.New("key signer: no key")
	}
	tx, err := challenge.Decode(encoded)
	if err != nil {
		return "", err
	}
	if err := tx.Sign(networkPassphrase, s.Key); err != nil {
		return "", err
	}
	return tx.Encode()
}

// RemoteSigner отправляет challenge на сервер подписи client domain.
type RemoteSigner struct {
	// URL — адрес сервера подписи.
	URL string
	// Token — bearer-токен, если сервер его требует.
	Token string
	// Client — HTTP-клиент; nil означает клиент с таймаутом DefaultTimeout.
	Client *http.Client
}

var defaultSignerClient = &http.Client{Timeout: DefaultTimeout}

type remoteSignRequest struct {
	Transaction       string `json:"transaction"`
	NetworkPassphrase string `json:"network_passphrase"`
}

type remoteSignResponse struct {
	Transaction string `json:"transaction"`
}

// SignChallenge выполняет POST {transaction, network_passphrase} и
// возвращает поле transaction ответа.
func (s RemoteSigner) SignChallenge(ctx context.Context, encoded, networkPassphrase string) (string, error) {
	payload, err := json.Marshal(remoteSignRequest{Transaction: encoded, NetworkPassphrase: networkPassphrase})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	client := s.Client
	if client == nil {
		client = defaultSignerClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote signer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("remote signer: status %d: %s", resp.StatusCode, body)
	}

	var rr remoteSignResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if rr.Transaction == "" {
		return "", errors.New("remote signer: empty transaction")
	}
	return rr.Transaction, nil
}

// checkCoSigned убеждается, что signed — та же транзакция, что original,
// с ровно одной новой подписью в конце, сделанной ключом account.
func checkCoSigned(original, signed *challenge.Transaction, account, passphrase string) error {
	want, err := original.Hash(passphrase)
	if err != nil {
		return err
	}
	got, err := signed.Hash(passphrase)
	if err != nil {
		return err
	}
	if want != got {
		return errors.New("signer returned a different transaction")
	}

	before := original.Signatures()
	after := signed.Signatures()
	if len(after) != len(before)+1 {
		return fmt.Errorf("expected %d signatures, got %d", len(before)+1, len(after))
	}
	for i := range before {
		if before[i].Hint != after[i].Hint || !slices.Equal(before[i].Signature, after[i].Signature) {
			return fmt.Errorf("signature %d was modified", i)
		}
	}
	if !identity.VerifyAddress(account, got[:], after[len(before)].Signature) {
		return fmt.Errorf("new signature does not verify with %s", account)
	}
	return nil
}
