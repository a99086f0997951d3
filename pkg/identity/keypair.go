// Package identity предоставляет работу с ed25519 ключами аккаунтов.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/udisondev/webauth/pkg/strkey"
)

// Signer подписывает хэш транзакции.
// Hint используется только для компактности подписи на проводе.
type Signer interface {
	Address() string
	Hint() [4]byte
	Sign(data []byte) []byte
}

// KeyPair содержит пару ed25519 ключей.
type KeyPair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

var _ Signer = (*KeyPair)(nil)

// Generate создаёт новую пару ключей.
func Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &KeyPair{
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

// FromRawSeed восстанавливает пару ключей из 32-байтового seed.
func FromRawSeed(seed [ed25519.SeedSize]byte) *KeyPair {
	priv := ed25519.NewKeyFromSeed(seed[:])
	return &KeyPair{
		PublicKey:  priv.Public().(ed25519.PublicKey),
		PrivateKey: priv,
	}
}

// FromSeed восстанавливает пару ключей из S-адреса.
func FromSeed(seed string) (*KeyPair, error) {
	raw, err := strkey.Decode(strkey.VersionByteSeed, seed)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	var s [ed25519.SeedSize]byte
	copy(s[:], raw)
	return FromRawSeed(s), nil
}

// MustFromSeed как FromSeed, но паникует при ошибке. Для тестов и примеров.
func MustFromSeed(seed string) *KeyPair {
	kp, err := FromSeed(seed)
	if err != nil {
		panic(err)
	}
	return kp
}

// LoadFromFile загружает ключи из файла.
// Файл должен содержать seed в виде S-адреса.
func LoadFromFile(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	kp, err := FromSeed(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}
	return kp, nil
}

// SaveToFile сохраняет seed в файл.
func (k *KeyPair) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(k.Seed()+"\n"), 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// LoadOrGenerate загружает ключи из файла или генерирует новые.
func LoadOrGenerate(path string) (*KeyPair, error) {
	// Сначала пробуем загрузить существующий файл
	kp, err := LoadFromFile(path)
	if err == nil {
		return kp, nil
	}

	// Если файл не существует — генерируем новый
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	kp, err = Generate()
	if err != nil {
		return nil, err
	}

	if err := kp.SaveToFile(path); err != nil {
		return nil, err
	}

	return kp, nil
}

// Address возвращает G-адрес публичного ключа.
func (k *KeyPair) Address() string {
	var key [strkey.KeySize]byte
	copy(key[:], k.PublicKey)
	return strkey.EncodeAccount(key)
}

// Seed возвращает приватный seed в виде S-адреса.
func (k *KeyPair) Seed() string {
	return strkey.MustEncode(strkey.VersionByteSeed, k.PrivateKey.Seed())
}

// Hint возвращает последние 4 байта публичного ключа.
func (k *KeyPair) Hint() [4]byte {
	return HintOf(k.PublicKey)
}

// Sign подписывает данные приватным ключом.
func (k *KeyPair) Sign(data []byte) []byte {
	return ed25519.Sign(k.PrivateKey, data)
}
