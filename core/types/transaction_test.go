// Copyright (c) 2017-2018 The bzx developers

package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzxproject/bzxd/common/hash"
)

func TestScriptBuilder(t *testing.T) {
	var sb ScriptBuilder
	sb.AddInt64(0x1f0fffff)
	assert.Equal(t, []byte{0x04, 0xff, 0xff, 0x0f, 0x1f}, sb.Script())

	var sb2 ScriptBuilder
	sb2.AddData([]byte{0x04})
	assert.Equal(t, []byte{0x01, 0x04}, sb2.Script())

	// A value whose top byte has the sign bit set gains a padding byte.
	var sb3 ScriptBuilder
	sb3.AddInt64(0x80)
	assert.Equal(t, []byte{0x02, 0x80, 0x00}, sb3.Script())

	var sb4 ScriptBuilder
	sb4.AddData(make([]byte, 80))
	assert.Equal(t, byte(OpPushData1), sb4.Script()[0])
	assert.Equal(t, byte(80), sb4.Script()[1])
}

func TestScriptProbes(t *testing.T) {
	assert.True(t, IsZerocoinMint([]byte{OpZerocoinMint, 1, 2, 3, 4, 5, 6}))
	assert.False(t, IsZerocoinMint(nil))
	assert.False(t, IsZerocoinMint([]byte{OpDup}))

	assert.True(t, IsZerocoinSpend([]byte{OpZerocoinSpend, 0, 0, 0}))
	assert.False(t, IsZerocoinSpend([]byte{OpZerocoinMint}))
}

func TestPayToPubKeyHashScript(t *testing.T) {
	h160 := bytes.Repeat([]byte{0xab}, 20)
	script := PayToPubKeyHashScript(h160)
	require.Len(t, script, 25)
	assert.Equal(t, byte(OpDup), script[0])
	assert.Equal(t, byte(OpHash160), script[1])
	assert.Equal(t, byte(20), script[2])
	assert.Equal(t, h160, script[3:23])
	assert.Equal(t, byte(OpEqualVerify), script[23])
	assert.Equal(t, byte(OpChecksig), script[24])
}

func TestTransactionSerialize(t *testing.T) {
	tx := &Transaction{Version: 1}
	tx.AddTxIn(&TxInput{
		PreviousOut: TxOutPoint{Hash: hash.ZeroHash, OutIndex: MaxPrevOutIndex},
		SignScript:  []byte{0x01, 0x02},
		Sequence:    MaxTxInSequenceNum,
	})
	tx.AddTxOut(&TxOutput{Amount: 0, PkScript: nil})

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	want := []byte{
		0x01, 0x00, 0x00, 0x00, // version
		0x01, // vin count
	}
	want = append(want, make([]byte, 32)...)                // prevout hash
	want = append(want, 0xff, 0xff, 0xff, 0xff)             // prevout index
	want = append(want, 0x02, 0x01, 0x02)                   // script
	want = append(want, 0xff, 0xff, 0xff, 0xff)             // sequence
	want = append(want, 0x01)                               // vout count
	want = append(want, make([]byte, 8)...)                 // amount
	want = append(want, 0x00)                               // pk script
	want = append(want, 0x00, 0x00, 0x00, 0x00)             // lock time
	assert.Equal(t, want, buf.Bytes())

	assert.True(t, tx.IsCoinBase())
}

func TestTransactionClone(t *testing.T) {
	tx := &Transaction{Version: 1}
	tx.AddTxIn(&TxInput{
		PreviousOut: TxOutPoint{Hash: hash.DoubleHashH([]byte("prev")), OutIndex: 0},
		SignScript:  []byte{OpZerocoinSpend, 1, 2, 3},
		Sequence:    5,
	})
	tx.AddTxOut(&TxOutput{Amount: 7, PkScript: []byte{OpDup}})

	clone := tx.Clone()
	clone.TxIn[0].SignScript[0] = 0x00
	clone.TxIn[0].PreviousOut.SetNull()
	clone.TxOut[0].PkScript[0] = 0x00

	assert.Equal(t, byte(OpZerocoinSpend), tx.TxIn[0].SignScript[0])
	assert.False(t, tx.TxIn[0].PreviousOut.IsNull())
	assert.Equal(t, byte(OpDup), tx.TxOut[0].PkScript[0])
	assert.NotEqual(t, tx.TxHash(), clone.TxHash())
}

func TestVarIntBoundaries(t *testing.T) {
	cases := []struct {
		val  uint64
		want []byte
	}{
		{0xfc, []byte{0xfc}},
		{0xfd, []byte{0xfd, 0xfd, 0x00}},
		{0xffff, []byte{0xfd, 0xff, 0xff}},
		{0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, tc.val))
		assert.Equal(t, tc.want, buf.Bytes(), "val %#x", tc.val)
	}
}

func TestBuildMerkleRoot(t *testing.T) {
	tx1 := &Transaction{Version: 1, LockTime: 1}
	tx2 := &Transaction{Version: 1, LockTime: 2}

	// A single transaction's root is its own hash.
	assert.Equal(t, tx1.TxHash(), BuildMerkleRoot([]*Transaction{tx1}))

	// Two transactions hash pairwise.
	h1, h2 := tx1.TxHash(), tx2.TxHash()
	var concat [64]byte
	copy(concat[:], h1[:])
	copy(concat[32:], h2[:])
	assert.Equal(t, hash.DoubleHashH(concat[:]),
		BuildMerkleRoot([]*Transaction{tx1, tx2}))

	assert.Equal(t, hash.ZeroHash, BuildMerkleRoot(nil))
}
