// Package strkey реализует текстовый формат адресов аккаунтов:
// base32 от version byte, payload и CRC16 (XModem) в little-endian.
package strkey

import (
	"bytes"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
)

// VersionByte определяет тип ключа и первую букву адреса.
type VersionByte byte

// Известные типы ключей.
const (
	VersionByteAccountID VersionByte = 6 << 3  // G...
	VersionByteMuxed     VersionByte = 12 << 3 // M...
	VersionByteSeed      VersionByte = 18 << 3 // S...
)

// Размеры payload.
const (
	KeySize   = 32
	MuxedSize = KeySize + 8
)

var (
	// ErrInvalidVersionByte — адрес другого типа.
	ErrInvalidVersionByte = errors.New("strkey: invalid version byte")

	// ErrInvalidChecksum — CRC16 не совпадает.
	ErrInvalidChecksum = errors.New("strkey: invalid checksum")

	// ErrInvalidLength — неверная длина адреса или payload.
	ErrInvalidLength = errors.New("strkey: invalid length")
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode кодирует payload с указанным version byte.
func Encode(version VersionByte, payload []byte) (string, error) {
	if err := checkPayloadSize(version, len(payload)); err != nil {
		return "", err
	}

	raw := make([]byte, 0, 1+len(payload)+2)
	raw = append(raw, byte(version))
	raw = append(raw, payload...)
	raw = binary.LittleEndian.AppendUint16(raw, crc16(raw))

	return encoding.EncodeToString(raw), nil
}

// MustEncode как Encode, но паникует при ошибке.
// Используется только для payload фиксированного размера.
func MustEncode(version VersionByte, payload []byte) string {
	s, err := Encode(version, payload)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode декодирует адрес и проверяет version byte и checksum.
func Decode(expected VersionByte, src string) ([]byte, error) {
	raw, err := encoding.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("strkey: decode base32: %w", err)
	}
	// Base32 без padding допускает неоднозначные хвосты — сверяем обратным кодированием.
	if encoding.EncodeToString(raw) != src {
		return nil, fmt.Errorf("%w: non-canonical encoding", ErrInvalidLength)
	}
	if len(raw) < 3 {
		return nil, ErrInvalidLength
	}

	version := VersionByte(raw[0])
	if version != expected {
		return nil, fmt.Errorf("%w: got %#x, want %#x", ErrInvalidVersionByte, byte(version), byte(expected))
	}

	body := raw[:len(raw)-2]
	checksum := binary.LittleEndian.Uint16(raw[len(raw)-2:])
	if crc16(body) != checksum {
		return nil, ErrInvalidChecksum
	}

	payload := body[1:]
	if err := checkPayloadSize(version, len(payload)); err != nil {
		return nil, err
	}
	return bytes.Clone(payload), nil
}

// IsValid сообщает, является ли src корректным адресом указанного типа.
func IsValid(expected VersionByte, src string) bool {
	_, err := Decode(expected, src)
	return err == nil
}

func checkPayloadSize(version VersionByte, n int) error {
	want := KeySize
	if version == VersionByteMuxed {
		want = MuxedSize
	}
	if n != want {
		return fmt.Errorf("%w: payload %d bytes, want %d", ErrInvalidLength, n, want)
	}
	return nil
}

// crc16 — CRC-16/XMODEM (poly 0x1021, init 0).
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
