package identity

import (
	"crypto/ed25519"

	"github.com/udisondev/webauth/pkg/strkey"
)

// Verify проверяет подпись. Ключ или подпись неверной длины дают false, без паники.
func Verify(publicKey ed25519.PublicKey, data, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, data, signature)
}

// VerifyAddress проверяет подпись ключом, заданным G-адресом.
func VerifyAddress(address string, data, signature []byte) bool {
	key, err := strkey.DecodeAccount(address)
	if err != nil {
		return false
	}
	return Verify(key[:], data, signature)
}

// HintOf возвращает подсказку подписи для публичного ключа.
func HintOf(publicKey ed25519.PublicKey) [4]byte {
	var hint [4]byte
	if len(publicKey) >= 4 {
		copy(hint[:], publicKey[len(publicKey)-4:])
	}
	return hint
}
