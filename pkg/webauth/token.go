package webauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token — содержимое выданного сервером JWT.
// Подпись токена не проверяется: клиенту нужен только срок действия и субъект.
type Token struct {
	Raw          string
	Issuer       string
	Subject      string
	ClientDomain string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Claims — набор claims токена аутентификации.
type Claims struct {
	jwt.RegisteredClaims
	ClientDomain string `json:"client_domain,omitempty"`
}

// ParseToken разбирает JWT без проверки подписи.
func ParseToken(raw string) (*Token, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	t := &Token{
		Raw:          raw,
		Issuer:       c.Issuer,
		Subject:      c.Subject,
		ClientDomain: c.ClientDomain,
	}
	if c.IssuedAt != nil {
		t.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		t.ExpiresAt = c.ExpiresAt.Time
	}
	return t, nil
}

// Expired сообщает, истёк ли токен к моменту now.
// Токен без exp не истекает.
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
