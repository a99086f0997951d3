package strkey

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func testKey() [KeySize]byte {
	var key [KeySize]byte
	for i := range KeySize {
		key[i] = byte(i * 7)
	}
	return key
}

func TestCRC16(t *testing.T) {
	// Контрольное значение CRC-16/XMODEM для "123456789".
	if got := crc16([]byte("123456789")); got != 0x31C3 {
		t.Errorf("crc16: got %#x, want %#x", got, 0x31C3)
	}
}

func TestAccountEncodeDecode(t *testing.T) {
	key := testKey()

	address := EncodeAccount(key)
	if len(address) != 56 {
		t.Errorf("length: got %d, want 56", len(address))
	}
	if address[0] != 'G' {
		t.Errorf("prefix: got %q, want G", address[0])
	}

	decoded, err := DecodeAccount(address)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != key {
		t.Error("key mismatch")
	}
}

func TestMuxedEncodeDecode(t *testing.T) {
	key := testKey()

	address := EncodeMuxed(key, 1234567890)
	if len(address) != 69 {
		t.Errorf("length: got %d, want 69", len(address))
	}
	if !IsMuxed(address) {
		t.Error("expected muxed address")
	}

	decodedKey, id, err := DecodeMuxed(address)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decodedKey != key {
		t.Error("key mismatch")
	}
	if id != 1234567890 {
		t.Errorf("id: got %d, want %d", id, 1234567890)
	}

	base, err := BaseAccount(address)
	if err != nil {
		t.Fatalf("base account: %v", err)
	}
	if base != EncodeAccount(key) {
		t.Errorf("base account: got %s, want %s", base, EncodeAccount(key))
	}
}

func TestSeedPrefix(t *testing.T) {
	key := testKey()
	seed := MustEncode(VersionByteSeed, key[:])
	if seed[0] != 'S' {
		t.Errorf("prefix: got %q, want S", seed[0])
	}

	payload, err := Decode(VersionByteSeed, seed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(payload, key[:]) {
		t.Error("payload mismatch")
	}
}

func TestDecodeErrors(t *testing.T) {
	key := testKey()
	address := EncodeAccount(key)

	// Заменяем символ в середине — checksum должен сломаться.
	corrupted := []byte(address)
	if corrupted[10] == 'A' {
		corrupted[10] = 'B'
	} else {
		corrupted[10] = 'A'
	}

	tests := []struct {
		name    string
		version VersionByte
		input   string
		want    error
	}{
		{"wrong_version", VersionByteSeed, address, ErrInvalidVersionByte},
		{"bad_checksum", VersionByteAccountID, string(corrupted), ErrInvalidChecksum},
		{"muxed_as_account", VersionByteAccountID, EncodeMuxed(key, 1), ErrInvalidVersionByte},
		{"too_short", VersionByteAccountID, "GA", ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.version, tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	inputs := []string{
		"",
		"not-base32!",
		strings.ToLower(EncodeAccount(testKey())),
		EncodeAccount(testKey()) + "\n",
	}
	for _, in := range inputs {
		if IsValid(VersionByteAccountID, in) {
			t.Errorf("expected %q to be invalid", in)
		}
	}
}

func TestEncodeWrongPayloadSize(t *testing.T) {
	if _, err := Encode(VersionByteAccountID, make([]byte, 31)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("error: got %v, want %v", err, ErrInvalidLength)
	}
	if _, err := Encode(VersionByteMuxed, make([]byte, 32)); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("error: got %v, want %v", err, ErrInvalidLength)
	}
}
