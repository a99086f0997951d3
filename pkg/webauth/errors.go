package webauth

import (
	"fmt"
	"strings"
)

// ErrorKind — вид отказа протокола вне проверки содержимого challenge.
type ErrorKind int

// Виды отказа.
const (
	// KindChallengeRequest — ответ на запрос challenge не 2xx.
	KindChallengeRequest ErrorKind = iota + 1
	// KindMissingTransaction — в ответе нет поля transaction.
	KindMissingTransaction
	// KindChallengeDecode — transaction не декодируется.
	KindChallengeDecode
	// KindInvalidNetworkPassphrase — сервер объявил другую сеть.
	KindInvalidNetworkPassphrase
	// KindMissingClientDomain — подписант client domain задан без домена.
	KindMissingClientDomain
	// KindNoClientDomainSigningKey — в метаданных client domain нет SIGNING_KEY.
	KindNoClientDomainSigningKey
	// KindClientDomainSigning — удалённый подписант вернул ошибку или чужую транзакцию.
	KindClientDomainSigning
	// KindSubmitErrorResponse — сервер вернул поле error.
	KindSubmitErrorResponse
	// KindSubmitTimeout — сервер ответил 504.
	KindSubmitTimeout
	// KindSubmitUnknownResponse — ответ без token и error или неожиданный статус.
	KindSubmitUnknownResponse
	// KindTransport — сетевая ошибка или истёкший таймаут.
	KindTransport
	// KindNoWebAuthEndpoint — в метаданных домена нет WEB_AUTH_ENDPOINT.
	KindNoWebAuthEndpoint
	// KindNoSigningKey — в метаданных домена нет SIGNING_KEY.
	KindNoSigningKey
)

var errorKindNames = map[ErrorKind]string{
	KindChallengeRequest:         "challenge_request",
	KindMissingTransaction:       "missing_transaction",
	KindChallengeDecode:          "challenge_decode",
	KindInvalidNetworkPassphrase: "invalid_network_passphrase",
	KindMissingClientDomain:      "missing_client_domain",
	KindNoClientDomainSigningKey: "no_client_domain_signing_key",
	KindClientDomainSigning:      "client_domain_signing",
	KindSubmitErrorResponse:      "submit_error_response",
	KindSubmitTimeout:            "submit_timeout",
	KindSubmitUnknownResponse:    "submit_unknown_response",
	KindTransport:                "transport",
	KindNoWebAuthEndpoint:        "no_web_auth_endpoint",
	KindNoSigningKey:             "no_signing_key",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error — отказ протокола с контекстом ответа сервера.
type Error struct {
	Kind ErrorKind
	// StatusCode и Body заполняются для ответов HTTP.
	StatusCode int
	Body       string
	// Message — текст ошибки от сервера или пояснение.
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("webauth: ")
	b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает только Kind, чтобы errors.Is работал с ErrXxx.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel-значения для errors.Is.
var (
	ErrChallengeRequest         = &Error{Kind: KindChallengeRequest}
	ErrMissingTransaction       = &Error{Kind: KindMissingTransaction}
	ErrChallengeDecode          = &Error{Kind: KindChallengeDecode}
	ErrInvalidNetworkPassphrase = &Error{Kind: KindInvalidNetworkPassphrase}
	ErrMissingClientDomain      = &Error{Kind: KindMissingClientDomain}
	ErrNoClientDomainSigningKey = &Error{Kind: KindNoClientDomainSigningKey}
	ErrClientDomainSigning      = &Error{Kind: KindClientDomainSigning}
	ErrSubmitErrorResponse      = &Error{Kind: KindSubmitErrorResponse}
	ErrSubmitTimeout            = &Error{Kind: KindSubmitTimeout}
	ErrSubmitUnknownResponse    = &Error{Kind: KindSubmitUnknownResponse}
	ErrTransport                = &Error{Kind: KindTransport}
	ErrNoWebAuthEndpoint        = &Error{Kind: KindNoWebAuthEndpoint}
	ErrNoSigningKey             = &Error{Kind: KindNoSigningKey}
)
