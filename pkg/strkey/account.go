package strkey

import (
	"encoding/binary"
	"fmt"
)

// EncodeAccount возвращает G-адрес для ed25519 ключа.
func EncodeAccount(key [KeySize]byte) string {
	return MustEncode(VersionByteAccountID, key[:])
}

// DecodeAccount разбирает G-адрес.
func DecodeAccount(address string) ([KeySize]byte, error) {
	var key [KeySize]byte
	payload, err := Decode(VersionByteAccountID, address)
	if err != nil {
		return key, err
	}
	copy(key[:], payload)
	return key, nil
}

// EncodeMuxed возвращает M-адрес: ключ и 64-битный идентификатор (big-endian).
func EncodeMuxed(key [KeySize]byte, id uint64) string {
	payload := make([]byte, 0, MuxedSize)
	payload = append(payload, key[:]...)
	payload = binary.BigEndian.AppendUint64(payload, id)
	return MustEncode(VersionByteMuxed, payload)
}

// DecodeMuxed разбирает M-адрес.
func DecodeMuxed(address string) ([KeySize]byte, uint64, error) {
	var key [KeySize]byte
	payload, err := Decode(VersionByteMuxed, address)
	if err != nil {
		return key, 0, err
	}
	copy(key[:], payload[:KeySize])
	return key, binary.BigEndian.Uint64(payload[KeySize:]), nil
}

// IsMuxed сообщает, является ли address мультиплексированным аккаунтом.
// Проверяется только префикс; полная проверка — DecodeMuxed.
func IsMuxed(address string) bool {
	return len(address) > 0 && address[0] == 'M'
}

// BaseAccount возвращает G-адрес, лежащий в основе G- или M-адреса.
func BaseAccount(address string) (string, error) {
	if !IsMuxed(address) {
		if _, err := DecodeAccount(address); err != nil {
			return "", err
		}
		return address, nil
	}
	key, _, err := DecodeMuxed(address)
	if err != nil {
		return "", fmt.Errorf("decode muxed account: %w", err)
	}
	return EncodeAccount(key), nil
}
