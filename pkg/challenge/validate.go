package challenge

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/udisondev/webauth/pkg/identity"
	"github.com/udisondev/webauth/pkg/strkey"
	"github.com/udisondev/webauth/pkg/xdr"
)

// DefaultGracePeriod — допуск на расхождение часов клиента и сервера.
const DefaultGracePeriod = 300 * time.Second

// Params — ожидаемые свойства challenge.
type Params struct {
	// ServerAccount — G-адрес ключа подписи сервера.
	ServerAccount     string
	HomeDomain        string
	WebAuthDomain     string
	NetworkPassphrase string

	// ClientAccount — G- или M-адрес аутентифицируемого аккаунта.
	ClientAccount string
	// ClientDomainAccount — ключ подписи client domain, если он заявлен.
	ClientDomainAccount string

	GracePeriod time.Duration
	// Memo — ожидаемое мемо; nil — мемо не ожидается.
	Memo *uint64
	// Now — текущее время; нулевое значение — time.Now().
	Now time.Time
}

// Validate проверяет challenge. Проверки идут в фиксированном порядке,
// первая неудачная определяет результат; подпись проверяется последней.
// Возвращает *ValidationError.
func Validate(tx *Transaction, p Params) error {
	if tx.SequenceNumber() != 0 {
		return reject(KindInvalidSequenceNumber, "", "0", strconv.FormatInt(tx.SequenceNumber(), 10))
	}

	if err := validateMemo(tx.Memo(), p); err != nil {
		return err
	}

	if src := tx.SourceAccount(); src != p.ServerAccount {
		return reject(KindInvalidSourceAccount, "transaction source", p.ServerAccount, src)
	}

	for i, op := range tx.Operations() {
		if err := validateOperation(i, op, p); err != nil {
			return err
		}
	}

	if tb := tx.TimeBounds(); tb != nil {
		now := p.Now
		if now.IsZero() {
			now = time.Now()
		}
		if !withinBounds(tb, now, p.GracePeriod) {
			return reject(KindInvalidTimeBounds, "",
				fmt.Sprintf("[%d, %d]", tb.MinTime, tb.MaxTime),
				strconv.FormatInt(now.Unix(), 10))
		}
	}

	return verifyServerSignature(tx, p)
}

func validateMemo(memo *Memo, p Params) error {
	if memo == nil {
		if p.Memo != nil {
			return reject(KindInvalidMemoValue, "memo missing", strconv.FormatUint(*p.Memo, 10), "")
		}
		return nil
	}

	if strkey.IsMuxed(p.ClientAccount) {
		return reject(KindMemoWithMuxedAccount, "", "", "")
	}
	if memo.Type != xdr.MemoTypeID {
		return reject(KindInvalidMemoType, "", xdr.MemoTypeID.String(), memo.Type.String())
	}
	if p.Memo == nil {
		return reject(KindInvalidMemoValue, "unexpected memo", "", strconv.FormatUint(memo.ID, 10))
	}
	if memo.ID != *p.Memo {
		return reject(KindInvalidMemoValue, "",
			strconv.FormatUint(*p.Memo, 10), strconv.FormatUint(memo.ID, 10))
	}
	return nil
}

func validateOperation(i int, op Operation, p Params) error {
	detail := fmt.Sprintf("operation %d", i)

	if op.Type != xdr.OperationTypeManageData {
		return reject(KindInvalidOperationType, detail, xdr.OperationTypeManageData.String(), op.Type.String())
	}
	if op.SourceAccount == "" {
		return reject(KindInvalidSourceAccount, detail+": source account missing", "", "")
	}

	if i == 0 {
		if op.SourceAccount != p.ClientAccount {
			return reject(KindInvalidSourceAccount, detail, p.ClientAccount, op.SourceAccount)
		}
		if want := p.HomeDomain + AuthSuffix; op.Name != want {
			return reject(KindInvalidHomeDomain, detail, want, op.Name)
		}
		if len(op.Value) != NonceSize {
			return reject(KindInvalidNonceValue, detail,
				strconv.Itoa(NonceSize)+" bytes", strconv.Itoa(len(op.Value))+" bytes")
		}
		return nil
	}

	if op.Name == ClientDomainName {
		if op.SourceAccount != p.ClientDomainAccount {
			return reject(KindInvalidSourceAccount, detail, p.ClientDomainAccount, op.SourceAccount)
		}
	} else if op.SourceAccount != p.ServerAccount {
		return reject(KindInvalidSourceAccount, detail, p.ServerAccount, op.SourceAccount)
	}

	if op.Name == WebAuthDomainName && !bytes.Equal(op.Value, []byte(p.WebAuthDomain)) {
		return reject(KindInvalidWebAuthDomain, detail, p.WebAuthDomain, string(op.Value))
	}
	return nil
}

// withinBounds проверяет minTime-grace <= now <= maxTime+grace.
// MaxTime == 0 означает отсутствие верхней границы.
func withinBounds(tb *xdr.TimeBounds, now time.Time, grace time.Duration) bool {
	n := now.Unix()
	g := int64(grace / time.Second)

	if tb.MinTime > math.MaxInt64 || n+g < int64(tb.MinTime) {
		return false
	}
	if tb.MaxTime != 0 && tb.MaxTime <= math.MaxInt64 && n-g > int64(tb.MaxTime) {
		return false
	}
	return true
}

func verifyServerSignature(tx *Transaction, p Params) error {
	sigs := tx.Signatures()
	if len(sigs) != 1 {
		return reject(KindInvalidSignature, "signature count", "1", strconv.Itoa(len(sigs)))
	}

	hash, err := tx.Hash(p.NetworkPassphrase)
	if err != nil {
		return reject(KindInvalidSignature, "hash: "+err.Error(), "", "")
	}
	if !identity.VerifyAddress(p.ServerAccount, hash[:], sigs[0].Signature) {
		return reject(KindInvalidSignature, "server signature does not verify", "", "")
	}
	return nil
}
