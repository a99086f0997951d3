// Package xdr реализует подмножество бинарного формата конвертов транзакций,
// достаточное для challenge-транзакций: конверты V0/V1, manage data и
// несколько простых операций, мемо, предусловия и подписи.
package xdr

// EnvelopeType — тип конверта транзакции.
type EnvelopeType int32

// Типы конвертов.
const (
	EnvelopeTypeTxV0      EnvelopeType = 0
	EnvelopeTypeTx        EnvelopeType = 2
	EnvelopeTypeTxFeeBump EnvelopeType = 5
)

// CryptoKeyType — дискриминант MuxedAccount.
type CryptoKeyType int32

// Типы ключей аккаунта.
const (
	KeyTypeEd25519      CryptoKeyType = 0
	KeyTypeMuxedEd25519 CryptoKeyType = 0x100
)

// MemoType — тип мемо.
type MemoType int32

// Типы мемо.
const (
	MemoTypeNone   MemoType = 0
	MemoTypeText   MemoType = 1
	MemoTypeID     MemoType = 2
	MemoTypeHash   MemoType = 3
	MemoTypeReturn MemoType = 4
)

// String возвращает имя типа мемо.
func (t MemoType) String() string {
	switch t {
	case MemoTypeNone:
		return "none"
	case MemoTypeText:
		return "text"
	case MemoTypeID:
		return "id"
	case MemoTypeHash:
		return "hash"
	case MemoTypeReturn:
		return "return"
	default:
		return "unknown"
	}
}

// OperationType — тип операции.
type OperationType int32

// Поддерживаемые типы операций.
const (
	OperationTypeCreateAccount OperationType = 0
	OperationTypePayment       OperationType = 1
	OperationTypeAccountMerge  OperationType = 8
	OperationTypeInflation     OperationType = 9
	OperationTypeManageData    OperationType = 10
	OperationTypeBumpSequence  OperationType = 11
)

// String возвращает имя типа операции.
func (t OperationType) String() string {
	switch t {
	case OperationTypeCreateAccount:
		return "create_account"
	case OperationTypePayment:
		return "payment"
	case OperationTypeAccountMerge:
		return "account_merge"
	case OperationTypeInflation:
		return "inflation"
	case OperationTypeManageData:
		return "manage_data"
	case OperationTypeBumpSequence:
		return "bump_sequence"
	default:
		return "unknown"
	}
}

// AssetType — тип актива в платеже.
type AssetType int32

// Типы активов.
const (
	AssetTypeNative     AssetType = 0
	AssetTypeAlphanum4  AssetType = 1
	AssetTypeAlphanum12 AssetType = 2
)

// PreconditionType — тип предусловий транзакции.
type PreconditionType int32

// Типы предусловий.
const (
	PreconditionNone PreconditionType = 0
	PreconditionTime PreconditionType = 1
	PreconditionV2   PreconditionType = 2
)

// SignerKeyType — тип дополнительного подписанта в предусловиях V2.
type SignerKeyType int32

// Типы подписантов.
const (
	SignerKeyTypeEd25519       SignerKeyType = 0
	SignerKeyTypePreAuthTx     SignerKeyType = 1
	SignerKeyTypeHashX         SignerKeyType = 2
	SignerKeyTypeSignedPayload SignerKeyType = 3
)

// Ограничения формата.
const (
	MaxOperations       = 100
	MaxSignatures       = 20
	MaxSignatureSize    = 64
	MaxDataNameLen      = 64
	MaxDataValueLen     = 64
	MaxMemoTextLen      = 28
	MaxExtraSigners     = 2
	MaxSignedPayloadLen = 64
)

// Hash — 32-байтовый хэш.
type Hash [32]byte

// MuxedAccount — аккаунт, опционально с 64-битным идентификатором.
type MuxedAccount struct {
	Ed25519 [32]byte
	// ID не nil для мультиплексированного аккаунта.
	ID *uint64
}

// TimeBounds — окно действия транзакции (unix-время, 0 в MaxTime — без ограничения).
type TimeBounds struct {
	MinTime uint64
	MaxTime uint64
}

// LedgerBounds — окно действия транзакции в номерах леджеров.
type LedgerBounds struct {
	MinLedger uint32
	MaxLedger uint32
}

// SignerKey — дополнительный подписант.
type SignerKey struct {
	Type SignerKeyType
	Key  [32]byte
	// Payload используется только для SignerKeyTypeSignedPayload.
	Payload []byte
}

// PreconditionsV2 — расширенные предусловия.
type PreconditionsV2 struct {
	TimeBounds      *TimeBounds
	LedgerBounds    *LedgerBounds
	MinSeqNum       *int64
	MinSeqAge       uint64
	MinSeqLedgerGap uint32
	ExtraSigners    []SignerKey
}

// Preconditions — предусловия транзакции.
type Preconditions struct {
	Type       PreconditionType
	TimeBounds *TimeBounds
	V2         *PreconditionsV2
}

// Bounds возвращает окно времени независимо от типа предусловий.
func (p Preconditions) Bounds() *TimeBounds {
	switch p.Type {
	case PreconditionTime:
		return p.TimeBounds
	case PreconditionV2:
		if p.V2 != nil {
			return p.V2.TimeBounds
		}
	}
	return nil
}

// Memo — мемо транзакции.
type Memo struct {
	Type MemoType
	Text string
	ID   uint64
	Hash Hash
}

// Asset — актив платежа.
type Asset struct {
	Type AssetType
	// Code — 4 или 12 байт в зависимости от Type.
	Code   []byte
	Issuer [32]byte
}

// ManageDataOp — запись именованных данных.
type ManageDataOp struct {
	Name string
	// Value nil означает отсутствие значения.
	Value []byte
}

// CreateAccountOp — создание аккаунта.
type CreateAccountOp struct {
	Destination     [32]byte
	StartingBalance int64
}

// PaymentOp — платёж.
type PaymentOp struct {
	Destination MuxedAccount
	Asset       Asset
	Amount      int64
}

// Operation — операция транзакции. Заполнено ровно одно поле тела,
// соответствующее Type (Inflation тела не имеет).
type Operation struct {
	SourceAccount *MuxedAccount
	Type          OperationType

	CreateAccount *CreateAccountOp
	Payment       *PaymentOp
	AccountMerge  *MuxedAccount
	ManageData    *ManageDataOp
	BumpTo        *int64
}

// Transaction — транзакция в форме V1. Конверты V0 приводятся к ней при
// декодировании и восстанавливаются при кодировании.
type Transaction struct {
	SourceAccount MuxedAccount
	Fee           uint32
	SeqNum        int64
	Cond          Preconditions
	Memo          Memo
	Operations    []Operation
}

// DecoratedSignature — подпись с подсказкой ключа.
type DecoratedSignature struct {
	Hint      [4]byte
	Signature []byte
}

// TransactionEnvelope — конверт транзакции с подписями.
type TransactionEnvelope struct {
	Type       EnvelopeType
	Tx         Transaction
	Signatures []DecoratedSignature
}
