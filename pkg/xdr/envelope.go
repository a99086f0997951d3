package xdr

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Идентификаторы сетей.
const (
	PublicNetworkPassphrase = "Public Global Stellar Network ; September 2015"
	TestNetworkPassphrase   = "Test SDF Network ; September 2015"
)

// NetworkID возвращает идентификатор сети — sha256 от passphrase.
func NetworkID(passphrase string) Hash {
	return sha256.Sum256([]byte(passphrase))
}

// MarshalEnvelope кодирует конверт в XDR.
func MarshalEnvelope(env *TransactionEnvelope) ([]byte, error) {
	var e encoder
	e.int32(int32(env.Type))

	switch env.Type {
	case EnvelopeTypeTxV0:
		if err := e.transactionV0(&env.Tx); err != nil {
			return nil, fmt.Errorf("encode transaction: %w", err)
		}
	case EnvelopeTypeTx:
		if err := e.transaction(&env.Tx); err != nil {
			return nil, fmt.Errorf("encode transaction: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported envelope type %d", env.Type)
	}

	if err := e.signatures(env.Signatures); err != nil {
		return nil, fmt.Errorf("encode signatures: %w", err)
	}
	return e.buf.Bytes(), nil
}

// UnmarshalEnvelope декодирует конверт из XDR. Поддерживаются только
// конверты V0 и V1; лишние байты в конце — ошибка.
func UnmarshalEnvelope(data []byte) (*TransactionEnvelope, error) {
	d := decoder{data: data}

	t, err := d.int32()
	if err != nil {
		return nil, fmt.Errorf("read envelope type: %w", err)
	}

	env := &TransactionEnvelope{Type: EnvelopeType(t)}
	switch env.Type {
	case EnvelopeTypeTxV0:
		env.Tx, err = d.transactionV0()
	case EnvelopeTypeTx:
		env.Tx, err = d.transaction()
	default:
		return nil, fmt.Errorf("unsupported envelope type %d", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	if env.Signatures, err = d.signatures(); err != nil {
		return nil, fmt.Errorf("decode signatures: %w", err)
	}
	if d.off != len(d.data) {
		return nil, fmt.Errorf("%d trailing bytes after envelope", len(d.data)-d.off)
	}
	return env, nil
}

// EncodeEnvelope кодирует конверт в base64.
func EncodeEnvelope(env *TransactionEnvelope) (string, error) {
	raw, err := MarshalEnvelope(env)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeEnvelope декодирует конверт из base64.
func DecodeEnvelope(encoded string) (*TransactionEnvelope, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return UnmarshalEnvelope(raw)
}

// SignatureBase возвращает данные, хэш которых подписывается:
// networkID || ENVELOPE_TYPE_TX || транзакция V1.
// Конверты V0 подписываются в форме V1.
func SignatureBase(tx *Transaction, passphrase string) ([]byte, error) {
	var e encoder
	id := NetworkID(passphrase)
	e.fixed(id[:])
	e.int32(int32(EnvelopeTypeTx))
	if err := e.transaction(tx); err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return e.buf.Bytes(), nil
}

// TransactionHash возвращает хэш транзакции для указанной сети.
func TransactionHash(tx *Transaction, passphrase string) (Hash, error) {
	base, err := SignatureBase(tx, passphrase)
	if err != nil {
		return Hash{}, err
	}
	return sha256.Sum256(base), nil
}
