package xdr

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer — данные закончились раньше структуры.
var ErrShortBuffer = errors.New("xdr: unexpected end of data")

// decoder читает XDR из среза. Декодирование строгое: ненулевой padding,
// превышение лимитов и неизвестные дискриминанты — ошибка.
type decoder struct {
	data []byte
	off  int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.off < n {
		return nil, ErrShortBuffer
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) int32() (int32, error) {
	v, err := d.uint32()
	return int32(v), err
}

func (d *decoder) uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *decoder) int64() (int64, error) {
	v, err := d.uint64()
	return int64(v), err
}

func (d *decoder) bool() (bool, error) {
	v, err := d.uint32()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("xdr: invalid bool %d", v)
	}
}

func (d *decoder) skipPad(n int) error {
	r := n % 4
	if r == 0 {
		return nil
	}
	pad, err := d.take(4 - r)
	if err != nil {
		return err
	}
	for _, b := range pad {
		if b != 0 {
			return fmt.Errorf("xdr: non-zero padding")
		}
	}
	return nil
}

func (d *decoder) fixed(dst []byte) error {
	b, err := d.take(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return d.skipPad(len(dst))
}

func (d *decoder) opaque(limit int, field string) ([]byte, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, fmt.Errorf("read %s length: %w", field, err)
	}
	if n > uint32(limit) {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit %d", field, n, limit)
	}
	b := make([]byte, n)
	if err := d.fixed(b); err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return b, nil
}

func (d *decoder) muxedAccount() (MuxedAccount, error) {
	var m MuxedAccount
	t, err := d.int32()
	if err != nil {
		return m, fmt.Errorf("read key type: %w", err)
	}
	switch CryptoKeyType(t) {
	case KeyTypeEd25519:
	case KeyTypeMuxedEd25519:
		id, err := d.uint64()
		if err != nil {
			return m, fmt.Errorf("read muxed id: %w", err)
		}
		m.ID = &id
	default:
		return m, fmt.Errorf("unsupported key type %#x", t)
	}
	if err := d.fixed(m.Ed25519[:]); err != nil {
		return m, fmt.Errorf("read ed25519 key: %w", err)
	}
	return m, nil
}

func (d *decoder) accountID() ([32]byte, error) {
	var key [32]byte
	t, err := d.int32()
	if err != nil {
		return key, fmt.Errorf("read public key type: %w", err)
	}
	if t != 0 {
		return key, fmt.Errorf("unsupported public key type %d", t)
	}
	if err := d.fixed(key[:]); err != nil {
		return key, fmt.Errorf("read public key: %w", err)
	}
	return key, nil
}

func (d *decoder) timeBounds() (*TimeBounds, error) {
	minTime, err := d.uint64()
	if err != nil {
		return nil, fmt.Errorf("read min time: %w", err)
	}
	maxTime, err := d.uint64()
	if err != nil {
		return nil, fmt.Errorf("read max time: %w", err)
	}
	return &TimeBounds{MinTime: minTime, MaxTime: maxTime}, nil
}

func (d *decoder) optionalTimeBounds() (*TimeBounds, error) {
	present, err := d.bool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return d.timeBounds()
}

func (d *decoder) preconditions() (Preconditions, error) {
	var p Preconditions
	t, err := d.int32()
	if err != nil {
		return p, fmt.Errorf("read type: %w", err)
	}
	p.Type = PreconditionType(t)

	switch p.Type {
	case PreconditionNone:
		return p, nil
	case PreconditionTime:
		p.TimeBounds, err = d.timeBounds()
		return p, err
	case PreconditionV2:
	default:
		return p, fmt.Errorf("unsupported type %d", t)
	}

	v2 := &PreconditionsV2{}
	if v2.TimeBounds, err = d.optionalTimeBounds(); err != nil {
		return p, fmt.Errorf("read time bounds: %w", err)
	}

	present, err := d.bool()
	if err != nil {
		return p, fmt.Errorf("read ledger bounds: %w", err)
	}
	if present {
		lb := &LedgerBounds{}
		if lb.MinLedger, err = d.uint32(); err != nil {
			return p, fmt.Errorf("read min ledger: %w", err)
		}
		if lb.MaxLedger, err = d.uint32(); err != nil {
			return p, fmt.Errorf("read max ledger: %w", err)
		}
		v2.LedgerBounds = lb
	}

	if present, err = d.bool(); err != nil {
		return p, fmt.Errorf("read min seq num: %w", err)
	}
	if present {
		seq, err := d.int64()
		if err != nil {
			return p, fmt.Errorf("read min seq num: %w", err)
		}
		v2.MinSeqNum = &seq
	}

	if v2.MinSeqAge, err = d.uint64(); err != nil {
		return p, fmt.Errorf("read min seq age: %w", err)
	}
	if v2.MinSeqLedgerGap, err = d.uint32(); err != nil {
		return p, fmt.Errorf("read min seq ledger gap: %w", err)
	}

	n, err := d.uint32()
	if err != nil {
		return p, fmt.Errorf("read extra signers: %w", err)
	}
	if n > MaxExtraSigners {
		return p, fmt.Errorf("%d extra signers exceeds limit %d", n, MaxExtraSigners)
	}
	for i := range n {
		var s SignerKey
		st, err := d.int32()
		if err != nil {
			return p, fmt.Errorf("read extra signer %d: %w", i, err)
		}
		s.Type = SignerKeyType(st)
		switch s.Type {
		case SignerKeyTypeEd25519, SignerKeyTypePreAuthTx, SignerKeyTypeHashX, SignerKeyTypeSignedPayload:
		default:
			return p, fmt.Errorf("extra signer %d: unsupported type %d", i, st)
		}
		if err := d.fixed(s.Key[:]); err != nil {
			return p, fmt.Errorf("read extra signer %d: %w", i, err)
		}
		if s.Type == SignerKeyTypeSignedPayload {
			if s.Payload, err = d.opaque(MaxSignedPayloadLen, "signed payload"); err != nil {
				return p, err
			}
		}
		v2.ExtraSigners = append(v2.ExtraSigners, s)
	}

	p.V2 = v2
	return p, nil
}

func (d *decoder) memo() (Memo, error) {
	var m Memo
	t, err := d.int32()
	if err != nil {
		return m, fmt.Errorf("read type: %w", err)
	}
	m.Type = MemoType(t)

	switch m.Type {
	case MemoTypeNone:
	case MemoTypeText:
		text, err := d.opaque(MaxMemoTextLen, "memo text")
		if err != nil {
			return m, err
		}
		m.Text = string(text)
	case MemoTypeID:
		if m.ID, err = d.uint64(); err != nil {
			return m, fmt.Errorf("read id: %w", err)
		}
	case MemoTypeHash, MemoTypeReturn:
		if err := d.fixed(m.Hash[:]); err != nil {
			return m, fmt.Errorf("read hash: %w", err)
		}
	default:
		return m, fmt.Errorf("unsupported type %d", t)
	}
	return m, nil
}

func (d *decoder) asset() (Asset, error) {
	var a Asset
	t, err := d.int32()
	if err != nil {
		return a, fmt.Errorf("read asset type: %w", err)
	}
	a.Type = AssetType(t)

	switch a.Type {
	case AssetTypeNative:
		return a, nil
	case AssetTypeAlphanum4:
		a.Code = make([]byte, 4)
	case AssetTypeAlphanum12:
		a.Code = make([]byte, 12)
	default:
		return a, fmt.Errorf("unsupported asset type %d", t)
	}
	if err := d.fixed(a.Code); err != nil {
		return a, fmt.Errorf("read asset code: %w", err)
	}
	if a.Issuer, err = d.accountID(); err != nil {
		return a, fmt.Errorf("read asset issuer: %w", err)
	}
	return a, nil
}

func (d *decoder) operation() (Operation, error) {
	var op Operation

	present, err := d.bool()
	if err != nil {
		return op, fmt.Errorf("read source account: %w", err)
	}
	if present {
		src, err := d.muxedAccount()
		if err != nil {
			return op, fmt.Errorf("read source account: %w", err)
		}
		op.SourceAccount = &src
	}

	t, err := d.int32()
	if err != nil {
		return op, fmt.Errorf("read type: %w", err)
	}
	op.Type = OperationType(t)

	switch op.Type {
	case OperationTypeCreateAccount:
		body := &CreateAccountOp{}
		if body.Destination, err = d.accountID(); err != nil {
			return op, err
		}
		if body.StartingBalance, err = d.int64(); err != nil {
			return op, fmt.Errorf("read starting balance: %w", err)
		}
		op.CreateAccount = body
	case OperationTypePayment:
		body := &PaymentOp{}
		if body.Destination, err = d.muxedAccount(); err != nil {
			return op, fmt.Errorf("read destination: %w", err)
		}
		if body.Asset, err = d.asset(); err != nil {
			return op, err
		}
		if body.Amount, err = d.int64(); err != nil {
			return op, fmt.Errorf("read amount: %w", err)
		}
		op.Payment = body
	case OperationTypeAccountMerge:
		dst, err := d.muxedAccount()
		if err != nil {
			return op, fmt.Errorf("read destination: %w", err)
		}
		op.AccountMerge = &dst
	case OperationTypeInflation:
	case OperationTypeManageData:
		body := &ManageDataOp{}
		name, err := d.opaque(MaxDataNameLen, "data name")
		if err != nil {
			return op, err
		}
		body.Name = string(name)
		hasValue, err := d.bool()
		if err != nil {
			return op, fmt.Errorf("read data value: %w", err)
		}
		if hasValue {
			if body.Value, err = d.opaque(MaxDataValueLen, "data value"); err != nil {
				return op, err
			}
		}
		op.ManageData = body
	case OperationTypeBumpSequence:
		bumpTo, err := d.int64()
		if err != nil {
			return op, fmt.Errorf("read bump to: %w", err)
		}
		op.BumpTo = &bumpTo
	default:
		return op, fmt.Errorf("unsupported operation type %d", t)
	}
	return op, nil
}

func (d *decoder) operations() ([]Operation, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, fmt.Errorf("read operations count: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("operations: at least one operation required")
	}
	if n > MaxOperations {
		return nil, fmt.Errorf("operations: %d exceeds limit %d", n, MaxOperations)
	}
	ops := make([]Operation, 0, n)
	for i := range n {
		op, err := d.operation()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (d *decoder) ext() error {
	v, err := d.int32()
	if err != nil {
		return fmt.Errorf("read ext: %w", err)
	}
	if v != 0 {
		return fmt.Errorf("unsupported ext version %d", v)
	}
	return nil
}

func (d *decoder) transaction() (Transaction, error) {
	var tx Transaction
	var err error

	if tx.SourceAccount, err = d.muxedAccount(); err != nil {
		return tx, fmt.Errorf("read source account: %w", err)
	}
	if tx.Fee, err = d.uint32(); err != nil {
		return tx, fmt.Errorf("read fee: %w", err)
	}
	if tx.SeqNum, err = d.int64(); err != nil {
		return tx, fmt.Errorf("read seq num: %w", err)
	}
	if tx.Cond, err = d.preconditions(); err != nil {
		return tx, fmt.Errorf("preconditions: %w", err)
	}
	if tx.Memo, err = d.memo(); err != nil {
		return tx, fmt.Errorf("memo: %w", err)
	}
	if tx.Operations, err = d.operations(); err != nil {
		return tx, err
	}
	return tx, d.ext()
}

func (d *decoder) transactionV0() (Transaction, error) {
	var tx Transaction
	var err error

	if err := d.fixed(tx.SourceAccount.Ed25519[:]); err != nil {
		return tx, fmt.Errorf("read source account: %w", err)
	}
	if tx.Fee, err = d.uint32(); err != nil {
		return tx, fmt.Errorf("read fee: %w", err)
	}
	if tx.SeqNum, err = d.int64(); err != nil {
		return tx, fmt.Errorf("read seq num: %w", err)
	}
	tb, err := d.optionalTimeBounds()
	if err != nil {
		return tx, fmt.Errorf("read time bounds: %w", err)
	}
	if tb != nil {
		tx.Cond = Preconditions{Type: PreconditionTime, TimeBounds: tb}
	}
	if tx.Memo, err = d.memo(); err != nil {
		return tx, fmt.Errorf("memo: %w", err)
	}
	if tx.Operations, err = d.operations(); err != nil {
		return tx, err
	}
	return tx, d.ext()
}

func (d *decoder) signatures() ([]DecoratedSignature, error) {
	n, err := d.uint32()
	if err != nil {
		return nil, fmt.Errorf("read signatures count: %w", err)
	}
	if n > MaxSignatures {
		return nil, fmt.Errorf("signatures: %d exceeds limit %d", n, MaxSignatures)
	}
	sigs := make([]DecoratedSignature, 0, n)
	for i := range n {
		var s DecoratedSignature
		if err := d.fixed(s.Hint[:]); err != nil {
			return nil, fmt.Errorf("read signature %d hint: %w", i, err)
		}
		if s.Signature, err = d.opaque(MaxSignatureSize, "signature"); err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}
