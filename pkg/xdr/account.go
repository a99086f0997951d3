package xdr

import (
	"fmt"

	"github.com/udisondev/webauth/pkg/strkey"
)

// Address возвращает G-адрес или M-адрес для мультиплексированного аккаунта.
func (m MuxedAccount) Address() string {
	if m.ID != nil {
		return strkey.EncodeMuxed(m.Ed25519, *m.ID)
	}
	return strkey.EncodeAccount(m.Ed25519)
}

// MuxedAccountFromAddress разбирает G- или M-адрес.
func MuxedAccountFromAddress(address string) (MuxedAccount, error) {
	var m MuxedAccount
	if strkey.IsMuxed(address) {
		key, id, err := strkey.DecodeMuxed(address)
		if err != nil {
			return m, fmt.Errorf("decode muxed account %q: %w", address, err)
		}
		m.Ed25519 = key
		m.ID = &id
		return m, nil
	}

	key, err := strkey.DecodeAccount(address)
	if err != nil {
		return m, fmt.Errorf("decode account %q: %w", address, err)
	}
	m.Ed25519 = key
	return m, nil
}
