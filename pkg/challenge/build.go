package challenge

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/strkey"
	"github.com/udisondev/webauth/pkg/xdr"
)

// DefaultTimeout — срок действия challenge по умолчанию.
const DefaultTimeout = 15 * time.Minute

// baseFee — комиссия за операцию; challenge не попадает в леджер,
// но конверт должен быть корректной транзакцией.
const baseFee = 100

// BuildParams — параметры построения challenge на стороне сервера.
type BuildParams struct {
	ServerKey         *identity.KeyPair
	ClientAccount     string
	HomeDomain        string
	WebAuthDomain     string
	NetworkPassphrase string

	// Timeout — длина окна времени; ноль — DefaultTimeout.
	Timeout time.Duration
	// Now — начало окна; нулевое значение — текущее время.
	Now time.Time
	// Nonce — значение первой операции; nil — случайные 48 байт в base64.
	Nonce []byte
	Memo  *uint64

	ClientDomain        string
	ClientDomainAccount string
}

// Build собирает challenge и подписывает его ключом сервера.
func Build(p BuildParams) (*Transaction, error) {
	if p.ServerKey == nil {
		return nil, errors.New("build challenge: server key is required")
	}
	if p.HomeDomain == "" {
		return nil, errors.New("build challenge: home domain is required")
	}
	if p.NetworkPassphrase == "" {
		return nil, errors.New("build challenge: network passphrase is required")
	}

	authName := p.HomeDomain + AuthSuffix
	if len(authName) > xdr.MaxDataNameLen {
		return nil, fmt.Errorf("build challenge: home domain %q too long", p.HomeDomain)
	}

	client, err := xdr.MuxedAccountFromAddress(p.ClientAccount)
	if err != nil {
		return nil, fmt.Errorf("build challenge: client account: %w", err)
	}
	if p.Memo != nil && strkey.IsMuxed(p.ClientAccount) {
		return nil, fmt.Errorf("build challenge: %w", reject(KindMemoWithMuxedAccount, "", "", ""))
	}

	server, err := xdr.MuxedAccountFromAddress(p.ServerKey.Address())
	if err != nil {
		return nil, fmt.Errorf("build challenge: server account: %w", err)
	}

	nonce := p.Nonce
	if nonce == nil {
		if nonce, err = randomNonce(); err != nil {
			return nil, fmt.Errorf("build challenge: %w", err)
		}
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("build challenge: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}

	ops := []xdr.Operation{manageData(&client, authName, nonce)}
	if p.WebAuthDomain != "" {
		ops = append(ops, manageData(&server, WebAuthDomainName, []byte(p.WebAuthDomain)))
	}
	if p.ClientDomain != "" {
		if p.ClientDomainAccount == "" {
			return nil, errors.New("build challenge: client domain account is required with client domain")
		}
		cd, err := xdr.MuxedAccountFromAddress(p.ClientDomainAccount)
		if err != nil {
			return nil, fmt.Errorf("build challenge: client domain account: %w", err)
		}
		ops = append(ops, manageData(&cd, ClientDomainName, []byte(p.ClientDomain)))
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	memo := xdr.Memo{Type: xdr.MemoTypeNone}
	if p.Memo != nil {
		memo = xdr.Memo{Type: xdr.MemoTypeID, ID: *p.Memo}
	}

	env := &xdr.TransactionEnvelope{
		Type: xdr.EnvelopeTypeTx,
		Tx: xdr.Transaction{
			SourceAccount: server,
			Fee:           uint32(baseFee * len(ops)),
			SeqNum:        0,
			Cond: xdr.Preconditions{
				Type: xdr.PreconditionTime,
				TimeBounds: &xdr.TimeBounds{
					MinTime: uint64(now.Unix()),
					MaxTime: uint64(now.Add(timeout).Unix()),
				},
			},
			Memo:       memo,
			Operations: ops,
		},
	}

	tx, err := FromEnvelope(env)
	if err != nil {
		return nil, fmt.Errorf("build challenge: %w", err)
	}
	if err := tx.Sign(p.NetworkPassphrase, p.ServerKey); err != nil {
		return nil, fmt.Errorf("build challenge: %w", err)
	}
	return tx, nil
}

func manageData(source *xdr.MuxedAccount, name string, value []byte) xdr.Operation {
	return xdr.Operation{
		SourceAccount: source,
		Type:          xdr.OperationTypeManageData,
		ManageData:    &xdr.ManageDataOp{Name: name, Value: value},
	}
}

// randomNonce возвращает 48 случайных байт в base64 — ровно 64 символа.
func randomNonce() ([]byte, error) {
	var raw [nonceRandomByteSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	nonce := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(nonce, raw[:])
	return nonce, nil
}
