// Package stellartoml загружает метаданные домена из /.well-known/stellar.toml.
package stellartoml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/BurntSushi/toml"
)

// WellKnownPath — путь файла метаданных относительно домена.
const WellKnownPath = "/.well-known/stellar.toml"

// MaxSize — верхняя граница размера файла метаданных.
const MaxSize = 100 * 1024

// ErrTooLarge возвращается, если файл больше MaxSize.
var ErrTooLarge = errors.New("stellar.toml exceeds size limit")

// Info — поля метаданных, нужные для аутентификации.
type Info struct {
	WebAuthEndpoint   string   `toml:"WEB_AUTH_ENDPOINT"`
	SigningKey        string   `toml:"SIGNING_KEY"`
	NetworkPassphrase string   `toml:"NETWORK_PASSPHRASE"`
	Accounts          []string `toml:"ACCOUNTS"`
}

// StatusError — ответ сервера метаданных с кодом, отличным от 200.
type StatusError struct {
	Domain     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stellar.toml for %s: unexpected status %d", e.Domain, e.StatusCode)
}

// Doer выполняет HTTP-запрос. *http.Client удовлетворяет Doer.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// URL возвращает адрес файла метаданных домена.
func URL(domain, scheme string) string {
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + domain + WellKnownPath
}

// Fetch загружает и разбирает метаданные домена.
// Пустая схема означает https, nil client означает http.DefaultClient.
func Fetch(ctx context.Context, client Doer, domain, scheme string) (*Info, error) {
	if domain == "" {
		return nil, errors.New("fetch stellar.toml: empty domain")
	}
	if client == nil {
		client = http.DefaultClient
	}

	url := URL(domain, scheme)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	slog.Debug("stellartoml: fetching", "url", url)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stellar.toml: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Domain: domain, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read stellar.toml: %w", err)
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	info, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("stellar.toml for %s: %w", domain, err)
	}
	return info, nil
}

// Parse разбирает содержимое stellar.toml. Неизвестные ключи игнорируются.
func Parse(data []byte) (*Info, error) {
	var info Info
	if _, err := toml.Decode(string(data), &info); err != nil {
		return nil, fmt.Errorf("parse stellar.toml: %w", err)
	}
	return &info, nil
}
