// Package challenge реализует модель challenge-транзакции, её построение
// и проверку на стороне клиента.
package challenge

import (
	"fmt"

	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/xdr"
)

// Имена служебных операций.
const (
	AuthSuffix          = " auth"
	WebAuthDomainName   = "web_auth_domain"
	ClientDomainName    = "client_domain"
	NonceSize           = 64
	nonceRandomByteSize = 48
)

// Operation — операция challenge в удобном для проверки виде.
type Operation struct {
	Type xdr.OperationType
	// SourceAccount — G- или M-адрес, пустой если источник не задан.
	SourceAccount string
	Name          string
	Value         []byte
}

// Memo — мемо транзакции.
type Memo struct {
	Type xdr.MemoType
	ID   uint64
}

// Transaction — декодированная challenge-транзакция.
// После декодирования меняется только добавлением подписей.
type Transaction struct {
	env *xdr.TransactionEnvelope
}

// Decode декодирует challenge из base64.
func Decode(encoded string) (*Transaction, error) {
	env, err := xdr.DecodeEnvelope(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode challenge: %w", err)
	}
	return &Transaction{env: env}, nil
}

// FromEnvelope оборачивает уже собранный конверт.
func FromEnvelope(env *xdr.TransactionEnvelope) (*Transaction, error) {
	if env == nil {
		return nil, fmt.Errorf("nil envelope")
	}
	if env.Type != xdr.EnvelopeTypeTx && env.Type != xdr.EnvelopeTypeTxV0 {
		return nil, fmt.Errorf("unsupported envelope type %d", env.Type)
	}
	if len(env.Tx.Operations) == 0 {
		return nil, fmt.Errorf("challenge has no operations")
	}
	return &Transaction{env: env}, nil
}

// Encode кодирует challenge в base64.
func (t *Transaction) Encode() (string, error) {
	return xdr.EncodeEnvelope(t.env)
}

// EnvelopeType возвращает тип конверта.
func (t *Transaction) EnvelopeType() xdr.EnvelopeType {
	return t.env.Type
}

// SourceAccount возвращает адрес источника транзакции.
func (t *Transaction) SourceAccount() string {
	return t.env.Tx.SourceAccount.Address()
}

// SequenceNumber возвращает номер последовательности.
func (t *Transaction) SequenceNumber() int64 {
	return t.env.Tx.SeqNum
}

// Operations возвращает операции транзакции.
func (t *Transaction) Operations() []Operation {
	ops := make([]Operation, 0, len(t.env.Tx.Operations))
	for _, op := range t.env.Tx.Operations {
		view := Operation{Type: op.Type}
		if op.SourceAccount != nil {
			view.SourceAccount = op.SourceAccount.Address()
		}
		if op.ManageData != nil {
			view.Name = op.ManageData.Name
			view.Value = op.ManageData.Value
		}
		ops = append(ops, view)
	}
	return ops
}

// Memo возвращает мемо или nil, если его нет.
func (t *Transaction) Memo() *Memo {
	m := t.env.Tx.Memo
	if m.Type == xdr.MemoTypeNone {
		return nil
	}
	return &Memo{Type: m.Type, ID: m.ID}
}

// TimeBounds возвращает окно времени или nil.
func (t *Transaction) TimeBounds() *xdr.TimeBounds {
	return t.env.Tx.Cond.Bounds()
}

// Signatures возвращает копию списка подписей.
func (t *Transaction) Signatures() []xdr.DecoratedSignature {
	return append([]xdr.DecoratedSignature(nil), t.env.Signatures...)
}

// SignatureBase возвращает подписываемые данные для сети.
func (t *Transaction) SignatureBase(passphrase string) ([]byte, error) {
	return xdr.SignatureBase(&t.env.Tx, passphrase)
}

// Hash возвращает хэш транзакции для сети.
func (t *Transaction) Hash(passphrase string) (xdr.Hash, error) {
	return xdr.TransactionHash(&t.env.Tx, passphrase)
}

// Sign добавляет подписи в порядке signers.
func (t *Transaction) Sign(passphrase string, signers ...identity.Signer) error {
	hash, err := t.Hash(passphrase)
	if err != nil {
		return fmt.Errorf("hash challenge: %w", err)
	}
	for _, s := range signers {
		sig := xdr.DecoratedSignature{
			Hint:      s.Hint(),
			Signature: s.Sign(hash[:]),
		}
		if err := t.AddSignature(sig); err != nil {
			return fmt.Errorf("sign with %s: %w", s.Address(), err)
		}
	}
	return nil
}

// AddSignature добавляет готовую подпись в конец списка.
func (t *Transaction) AddSignature(sig xdr.DecoratedSignature) error {
	if len(t.env.Signatures) >= xdr.MaxSignatures {
		return fmt.Errorf("signature limit %d reached", xdr.MaxSignatures)
	}
	if len(sig.Signature) > xdr.MaxSignatureSize {
		return fmt.Errorf("signature too long: %d bytes", len(sig.Signature))
	}
	t.env.Signatures = append(t.env.Signatures, sig)
	return nil
}
