package xdr

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func testAccount(seed byte) MuxedAccount {
	var m MuxedAccount
	for i := range m.Ed25519 {
		m.Ed25519[i] = seed + byte(i)
	}
	return m
}

func testEnvelope() *TransactionEnvelope {
	server := testAccount(1)
	client := testAccount(100)
	id := uint64(42)
	client.ID = &id

	bumpTo := int64(7)
	return &TransactionEnvelope{
		Type: EnvelopeTypeTx,
		Tx: Transaction{
			SourceAccount: server,
			Fee:           200,
			SeqNum:        0,
			Cond: Preconditions{
				Type:       PreconditionTime,
				TimeBounds: &TimeBounds{MinTime: 1700000000, MaxTime: 1700000900},
			},
			Memo: Memo{Type: MemoTypeID, ID: 99},
			Operations: []Operation{
				{
					SourceAccount: &client,
					Type:          OperationTypeManageData,
					ManageData:    &ManageDataOp{Name: "example.com auth", Value: bytes.Repeat([]byte{'a'}, 64)},
				},
				{
					SourceAccount: &server,
					Type:          OperationTypeManageData,
					ManageData:    &ManageDataOp{Name: "web_auth_domain", Value: []byte("auth.example.com")},
				},
				{
					Type:       OperationTypeManageData,
					ManageData: &ManageDataOp{Name: "odd"},
				},
				{
					Type:   OperationTypeBumpSequence,
					BumpTo: &bumpTo,
				},
				{
					Type: OperationTypePayment,
					Payment: &PaymentOp{
						Destination: server,
						Asset:       Asset{Type: AssetTypeAlphanum4, Code: []byte("USDC"), Issuer: server.Ed25519},
						Amount:      10_000_000,
					},
				},
			},
		},
		Signatures: []DecoratedSignature{
			{Hint: [4]byte{1, 2, 3, 4}, Signature: bytes.Repeat([]byte{9}, 64)},
		},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	original := testEnvelope()

	raw, err := MarshalEnvelope(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(raw)%4 != 0 {
		t.Errorf("length %d is not 4-byte aligned", len(raw))
	}

	decoded, err := UnmarshalEnvelope(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	again, err := MarshalEnvelope(decoded)
	if err != nil {
		t.Fatalf("marshal again: %v", err)
	}
	if !bytes.Equal(raw, again) {
		t.Error("re-encoding is not byte-identical")
	}

	if decoded.Tx.Operations[0].SourceAccount.Address() != original.Tx.Operations[0].SourceAccount.Address() {
		t.Error("muxed source account mismatch")
	}
	if decoded.Tx.Operations[2].ManageData.Value != nil {
		t.Error("absent data value decoded as present")
	}
	if *decoded.Tx.Operations[3].BumpTo != 7 {
		t.Errorf("bump to: got %d, want 7", *decoded.Tx.Operations[3].BumpTo)
	}
	if decoded.Tx.Memo.ID != 99 {
		t.Errorf("memo: got %d, want 99", decoded.Tx.Memo.ID)
	}
}

func TestEnvelopeV0RoundTrip(t *testing.T) {
	env := testEnvelope()
	env.Type = EnvelopeTypeTxV0

	raw, err := MarshalEnvelope(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := UnmarshalEnvelope(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != EnvelopeTypeTxV0 {
		t.Errorf("type: got %d, want %d", decoded.Type, EnvelopeTypeTxV0)
	}
	if decoded.Tx.Cond.Type != PreconditionTime {
		t.Errorf("preconditions: got %d, want %d", decoded.Tx.Cond.Type, PreconditionTime)
	}

	// V0 и V1 одной и той же транзакции подписываются одинаково.
	v1 := testEnvelope()
	h0, err := TransactionHash(&decoded.Tx, TestNetworkPassphrase)
	if err != nil {
		t.Fatalf("hash v0: %v", err)
	}
	h1, err := TransactionHash(&v1.Tx, TestNetworkPassphrase)
	if err != nil {
		t.Fatalf("hash v1: %v", err)
	}
	if h0 != h1 {
		t.Error("v0 and v1 hashes differ")
	}
}

func TestEnvelopeV0RejectsMuxedSource(t *testing.T) {
	env := testEnvelope()
	env.Type = EnvelopeTypeTxV0
	id := uint64(1)
	env.Tx.SourceAccount.ID = &id

	if _, err := MarshalEnvelope(env); err == nil {
		t.Error("expected error for muxed source in v0 envelope")
	}
}

func TestPreconditionsV2RoundTrip(t *testing.T) {
	env := testEnvelope()
	minSeq := int64(5)
	env.Tx.Cond = Preconditions{
		Type: PreconditionV2,
		V2: &PreconditionsV2{
			TimeBounds:      &TimeBounds{MinTime: 1, MaxTime: 2},
			LedgerBounds:    &LedgerBounds{MinLedger: 10, MaxLedger: 20},
			MinSeqNum:       &minSeq,
			MinSeqAge:       30,
			MinSeqLedgerGap: 4,
			ExtraSigners: []SignerKey{
				{Type: SignerKeyTypeEd25519},
				{Type: SignerKeyTypeSignedPayload, Payload: []byte("abc")},
			},
		},
	}

	raw, err := MarshalEnvelope(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := UnmarshalEnvelope(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tb := decoded.Tx.Cond.Bounds()
	if tb == nil || tb.MinTime != 1 || tb.MaxTime != 2 {
		t.Errorf("bounds: got %+v", tb)
	}
	if got := string(decoded.Tx.Cond.V2.ExtraSigners[1].Payload); got != "abc" {
		t.Errorf("signed payload: got %q, want %q", got, "abc")
	}
}

func TestUnmarshalErrors(t *testing.T) {
	valid, err := MarshalEnvelope(testEnvelope())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	feeBump := append([]byte{0, 0, 0, 5}, valid[4:]...)
	trailing := append(bytes.Clone(valid), 0, 0, 0, 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", valid[:len(valid)-3]},
		{"fee_bump", feeBump},
		{"trailing", trailing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UnmarshalEnvelope(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUnmarshalRejectsZeroOperations(t *testing.T) {
	var e encoder
	e.int32(int32(EnvelopeTypeTx))
	e.muxedAccount(testAccount(1))
	e.uint32(100)
	e.int64(0)
	e.int32(int32(PreconditionNone))
	e.int32(int32(MemoTypeNone))
	e.uint32(0) // operations
	e.int32(0)  // ext
	e.uint32(0) // signatures

	_, err := UnmarshalEnvelope(e.buf.Bytes())
	if err == nil || !strings.Contains(err.Error(), "at least one operation") {
		t.Errorf("error: got %v, want operations error", err)
	}
}

func TestUnmarshalRejectsNonZeroPadding(t *testing.T) {
	env := testEnvelope()
	env.Tx.Operations = env.Tx.Operations[:1]
	env.Tx.Operations[0].ManageData.Name = "abc" // длина 3 — 1 байт padding

	raw, err := MarshalEnvelope(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	idx := bytes.Index(raw, []byte("abc"))
	if idx < 0 {
		t.Fatal("name not found")
	}
	raw[idx+3] = 0xff

	if _, err := UnmarshalEnvelope(raw); err == nil {
		t.Error("expected error for non-zero padding")
	}
}

func TestEncodeLimits(t *testing.T) {
	env := testEnvelope()
	env.Tx.Operations[0].ManageData.Value = make([]byte, MaxDataValueLen+1)
	if _, err := MarshalEnvelope(env); err == nil {
		t.Error("expected error for oversized data value")
	}

	env = testEnvelope()
	env.Tx.Operations = nil
	if _, err := MarshalEnvelope(env); err == nil {
		t.Error("expected error for empty operations")
	}
}

func TestDecodeEnvelopeBase64(t *testing.T) {
	encoded, err := EncodeEnvelope(testEnvelope())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeEnvelope(encoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := DecodeEnvelope("%%%"); err == nil {
		t.Error("expected base64 error")
	}
	if _, err := DecodeEnvelope(base64.StdEncoding.EncodeToString([]byte{0, 0, 0})); err == nil {
		t.Error("expected error for short envelope")
	}
}

func TestTransactionHashDependsOnNetwork(t *testing.T) {
	env := testEnvelope()

	h1, err := TransactionHash(&env.Tx, TestNetworkPassphrase)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := TransactionHash(&env.Tx, TestNetworkPassphrase)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h3, err := TransactionHash(&env.Tx, PublicNetworkPassphrase)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if h1 != h2 {
		t.Error("hash is not deterministic")
	}
	if h1 == h3 {
		t.Error("hash does not depend on network")
	}
}
