package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// encoder пишет значения в XDR (big-endian, выравнивание по 4 байта).
type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) int32(v int32) {
	e.uint32(uint32(v))
}

func (e *encoder) uint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) int64(v int64) {
	e.uint64(uint64(v))
}

func (e *encoder) uint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) bool(v bool) {
	if v {
		e.uint32(1)
	} else {
		e.uint32(0)
	}
}

func (e *encoder) pad(n int) {
	if r := n % 4; r != 0 {
		e.buf.Write(make([]byte, 4-r))
	}
}

func (e *encoder) fixed(b []byte) {
	e.buf.Write(b)
	e.pad(len(b))
}

func (e *encoder) opaque(b []byte, limit int, field string) error {
	if len(b) > limit {
		return fmt.Errorf("%s: %d bytes exceeds limit %d", field, len(b), limit)
	}
	e.uint32(uint32(len(b)))
	e.fixed(b)
	return nil
}

func (e *encoder) muxedAccount(m MuxedAccount) {
	if m.ID == nil {
		e.int32(int32(KeyTypeEd25519))
		e.fixed(m.Ed25519[:])
		return
	}
	e.int32(int32(KeyTypeMuxedEd25519))
	e.uint64(*m.ID)
	e.fixed(m.Ed25519[:])
}

// accountID — PublicKey union с единственным вариантом ed25519.
func (e *encoder) accountID(key [32]byte) {
	e.int32(0)
	e.fixed(key[:])
}

func (e *encoder) timeBounds(tb *TimeBounds) {
	e.uint64(tb.MinTime)
	e.uint64(tb.MaxTime)
}

func (e *encoder) optionalTimeBounds(tb *TimeBounds) {
	e.bool(tb != nil)
	if tb != nil {
		e.timeBounds(tb)
	}
}

func (e *encoder) preconditions(p Preconditions) error {
	e.int32(int32(p.Type))
	switch p.Type {
	case PreconditionNone:
		return nil
	case PreconditionTime:
		if p.TimeBounds == nil {
			return fmt.Errorf("preconditions: time bounds missing")
		}
		e.timeBounds(p.TimeBounds)
		return nil
	case PreconditionV2:
		if p.V2 == nil {
			return fmt.Errorf("preconditions: v2 body missing")
		}
		v2 := p.V2
		e.optionalTimeBounds(v2.TimeBounds)
		e.bool(v2.LedgerBounds != nil)
		if v2.LedgerBounds != nil {
			e.uint32(v2.LedgerBounds.MinLedger)
			e.uint32(v2.LedgerBounds.MaxLedger)
		}
		e.bool(v2.MinSeqNum != nil)
		if v2.MinSeqNum != nil {
			e.int64(*v2.MinSeqNum)
		}
		e.uint64(v2.MinSeqAge)
		e.uint32(v2.MinSeqLedgerGap)
		if len(v2.ExtraSigners) > MaxExtraSigners {
			return fmt.Errorf("preconditions: %d extra signers exceeds limit %d", len(v2.ExtraSigners), MaxExtraSigners)
		}
		e.uint32(uint32(len(v2.ExtraSigners)))
		for _, s := range v2.ExtraSigners {
			e.int32(int32(s.Type))
			e.fixed(s.Key[:])
			if s.Type == SignerKeyTypeSignedPayload {
				if err := e.opaque(s.Payload, MaxSignedPayloadLen, "signed payload"); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("preconditions: unsupported type %d", p.Type)
	}
}

func (e *encoder) memo(m Memo) error {
	e.int32(int32(m.Type))
	switch m.Type {
	case MemoTypeNone:
	case MemoTypeText:
		return e.opaque([]byte(m.Text), MaxMemoTextLen, "memo text")
	case MemoTypeID:
		e.uint64(m.ID)
	case MemoTypeHash, MemoTypeReturn:
		e.fixed(m.Hash[:])
	default:
		return fmt.Errorf("memo: unsupported type %d", m.Type)
	}
	return nil
}

func (e *encoder) asset(a Asset) error {
	e.int32(int32(a.Type))
	switch a.Type {
	case AssetTypeNative:
		return nil
	case AssetTypeAlphanum4:
		if len(a.Code) != 4 {
			return fmt.Errorf("asset: alphanum4 code must be 4 bytes, got %d", len(a.Code))
		}
	case AssetTypeAlphanum12:
		if len(a.Code) != 12 {
			return fmt.Errorf("asset: alphanum12 code must be 12 bytes, got %d", len(a.Code))
		}
	default:
		return fmt.Errorf("asset: unsupported type %d", a.Type)
	}
	e.fixed(a.Code)
	e.accountID(a.Issuer)
	return nil
}

func (e *encoder) operation(op *Operation) error {
	e.bool(op.SourceAccount != nil)
	if op.SourceAccount != nil {
		e.muxedAccount(*op.SourceAccount)
	}
	e.int32(int32(op.Type))

	switch op.Type {
	case OperationTypeCreateAccount:
		if op.CreateAccount == nil {
			return fmt.Errorf("create_account body missing")
		}
		e.accountID(op.CreateAccount.Destination)
		e.int64(op.CreateAccount.StartingBalance)
	case OperationTypePayment:
		if op.Payment == nil {
			return fmt.Errorf("payment body missing")
		}
		e.muxedAccount(op.Payment.Destination)
		if err := e.asset(op.Payment.Asset); err != nil {
			return err
		}
		e.int64(op.Payment.Amount)
	case OperationTypeAccountMerge:
		if op.AccountMerge == nil {
			return fmt.Errorf("account_merge body missing")
		}
		e.muxedAccount(*op.AccountMerge)
	case OperationTypeInflation:
	case OperationTypeManageData:
		if op.ManageData == nil {
			return fmt.Errorf("manage_data body missing")
		}
		if err := e.opaque([]byte(op.ManageData.Name), MaxDataNameLen, "data name"); err != nil {
			return err
		}
		e.bool(op.ManageData.Value != nil)
		if op.ManageData.Value != nil {
			if err := e.opaque(op.ManageData.Value, MaxDataValueLen, "data value"); err != nil {
				return err
			}
		}
	case OperationTypeBumpSequence:
		if op.BumpTo == nil {
			return fmt.Errorf("bump_sequence body missing")
		}
		e.int64(*op.BumpTo)
	default:
		return fmt.Errorf("unsupported operation type %d", op.Type)
	}
	return nil
}

func (e *encoder) operations(ops []Operation) error {
	if len(ops) == 0 {
		return fmt.Errorf("operations: at least one operation required")
	}
	if len(ops) > MaxOperations {
		return fmt.Errorf("operations: %d exceeds limit %d", len(ops), MaxOperations)
	}
	e.uint32(uint32(len(ops)))
	for i := range ops {
		if err := e.operation(&ops[i]); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// transaction пишет транзакцию в форме V1.
func (e *encoder) transaction(tx *Transaction) error {
	e.muxedAccount(tx.SourceAccount)
	e.uint32(tx.Fee)
	e.int64(tx.SeqNum)
	if err := e.preconditions(tx.Cond); err != nil {
		return err
	}
	if err := e.memo(tx.Memo); err != nil {
		return err
	}
	if err := e.operations(tx.Operations); err != nil {
		return err
	}
	e.int32(0) // ext v0
	return nil
}

// transactionV0 пишет транзакцию в устаревшей форме V0.
func (e *encoder) transactionV0(tx *Transaction) error {
	if tx.SourceAccount.ID != nil {
		return fmt.Errorf("v0 envelope: muxed source account not representable")
	}
	var tb *TimeBounds
	switch tx.Cond.Type {
	case PreconditionNone:
	case PreconditionTime:
		tb = tx.Cond.TimeBounds
	default:
		return fmt.Errorf("v0 envelope: preconditions type %d not representable", tx.Cond.Type)
	}

	e.fixed(tx.SourceAccount.Ed25519[:])
	e.uint32(tx.Fee)
	e.int64(tx.SeqNum)
	e.optionalTimeBounds(tb)
	if err := e.memo(tx.Memo); err != nil {
		return err
	}
	if err := e.operations(tx.Operations); err != nil {
		return err
	}
	e.int32(0) // ext v0
	return nil
}

func (e *encoder) signatures(sigs []DecoratedSignature) error {
	if len(sigs) > MaxSignatures {
		return fmt.Errorf("signatures: %d exceeds limit %d", len(sigs), MaxSignatures)
	}
	e.uint32(uint32(len(sigs)))
	for i, s := range sigs {
		e.fixed(s.Hint[:])
		if err := e.opaque(s.Signature, MaxSignatureSize, fmt.Sprintf("signature %d", i)); err != nil {
			return err
		}
	}
	return nil
}
