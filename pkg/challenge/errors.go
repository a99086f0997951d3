package challenge

import (
	"errors"
	"fmt"
	"strings"
)

// Kind — причина отклонения challenge.
type Kind int

// Причины отклонения в порядке проверки.
const (
	KindInvalidSequenceNumber Kind = iota + 1
	KindMemoWithMuxedAccount
	KindInvalidMemoType
	KindInvalidMemoValue
	KindInvalidOperationType
	KindInvalidSourceAccount
	KindInvalidHomeDomain
	KindInvalidNonceValue
	KindInvalidWebAuthDomain
	KindInvalidTimeBounds
	KindInvalidSignature
)

var kindNames = map[Kind]string{
	KindInvalidSequenceNumber: "invalid sequence number",
	KindMemoWithMuxedAccount:  "memo with muxed account",
	KindInvalidMemoType:       "invalid memo type",
	KindInvalidMemoValue:      "invalid memo value",
	KindInvalidOperationType:  "invalid operation type",
	KindInvalidSourceAccount:  "invalid source account",
	KindInvalidHomeDomain:     "invalid home domain",
	KindInvalidNonceValue:     "invalid nonce value",
	KindInvalidWebAuthDomain:  "invalid web auth domain",
	KindInvalidTimeBounds:     "invalid time bounds",
	KindInvalidSignature:      "invalid signature",
}

// String возвращает описание причины.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ValidationError — отклонение challenge с контекстом.
type ValidationError struct {
	Kind Kind
	// Detail уточняет место: "operation 1", "transaction source" и т.п.
	Detail   string
	Expected string
	Actual   string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("challenge: ")
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&b, " (expected %q, got %q)", e.Expected, e.Actual)
	}
	return b.String()
}

// Is сравнивает только Kind, чтобы errors.Is работал с ErrXxx.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// Sentinel-значения для errors.Is.
var (
	ErrInvalidSequenceNumber = &ValidationError{Kind: KindInvalidSequenceNumber}
	ErrMemoWithMuxedAccount  = &ValidationError{Kind: KindMemoWithMuxedAccount}
	ErrInvalidMemoType       = &ValidationError{Kind: KindInvalidMemoType}
	ErrInvalidMemoValue      = &ValidationError{Kind: KindInvalidMemoValue}
	ErrInvalidOperationType  = &ValidationError{Kind: KindInvalidOperationType}
	ErrInvalidSourceAccount  = &ValidationError{Kind: KindInvalidSourceAccount}
	ErrInvalidHomeDomain     = &ValidationError{Kind: KindInvalidHomeDomain}
	ErrInvalidNonceValue     = &ValidationError{Kind: KindInvalidNonceValue}
	ErrInvalidWebAuthDomain  = &ValidationError{Kind: KindInvalidWebAuthDomain}
	ErrInvalidTimeBounds     = &ValidationError{Kind: KindInvalidTimeBounds}
	ErrInvalidSignature      = &ValidationError{Kind: KindInvalidSignature}
)

// KindOf возвращает причину отклонения, если err — ValidationError.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return 0, false
}

func reject(kind Kind, detail, expected, actual string) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail, Expected: expected, Actual: actual}
}
