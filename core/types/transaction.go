// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bzxproject/bzxd/common/hash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion int32 = 1

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff
)

// TxOutPoint defines a data type that is used to track previous transaction
// outputs.
type TxOutPoint struct {
	Hash     hash.Hash
	OutIndex uint32
}

// SetNull marks the outpoint as referencing no previous output, the way a
// coinbase (or cleared zerocoin spend) input does.
func (o *TxOutPoint) SetNull() {
	o.Hash = hash.ZeroHash
	o.OutIndex = MaxPrevOutIndex
}

// IsNull returns whether the outpoint references no previous output.
func (o *TxOutPoint) IsNull() bool {
	return o.Hash.IsNull() && o.OutIndex == MaxPrevOutIndex
}

// TxInput defines a transaction input.
type TxInput struct {
	PreviousOut TxOutPoint
	SignScript  []byte
	Sequence    uint32
}

// TxOutput defines a transaction output.
type TxOutput struct {
	Amount   Amount
	PkScript []byte
}

// Transaction is the consensus view of a transaction: the fields that are
// hashed.  Wire-level niceties (witnesses, relay metadata) are owned by the
// message layer.
type Transaction struct {
	Version  int32
	TxIn     []*TxInput
	TxOut    []*TxOutput
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (tx *Transaction) AddTxIn(ti *TxInput) {
	tx.TxIn = append(tx.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (tx *Transaction) AddTxOut(to *TxOutput) {
	tx.TxOut = append(tx.TxOut, to)
}

// IsCoinBase determines whether or not a transaction is a coinbase.
func (tx *Transaction) IsCoinBase() bool {
	return len(tx.TxIn) == 1 && tx.TxIn[0].PreviousOut.IsNull()
}

// IsZerocoinSpend returns whether the transaction spends a zerocoin.  A
// spend transaction carries the proof in its first signature script.
func (tx *Transaction) IsZerocoinSpend() bool {
	return len(tx.TxIn) >= 1 && IsZerocoinSpend(tx.TxIn[0].SignScript)
}

// IsZerocoinMint returns whether any output of the transaction mints a
// zerocoin.
func (tx *Transaction) IsZerocoinMint() bool {
	for _, out := range tx.TxOut {
		if IsZerocoinMint(out.PkScript) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the transaction.
func (tx *Transaction) Clone() *Transaction {
	newTx := Transaction{
		Version:  tx.Version,
		TxIn:     make([]*TxInput, 0, len(tx.TxIn)),
		TxOut:    make([]*TxOutput, 0, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	for _, in := range tx.TxIn {
		script := make([]byte, len(in.SignScript))
		copy(script, in.SignScript)
		newTx.TxIn = append(newTx.TxIn, &TxInput{
			PreviousOut: in.PreviousOut,
			SignScript:  script,
			Sequence:    in.Sequence,
		})
	}
	for _, out := range tx.TxOut {
		script := make([]byte, len(out.PkScript))
		copy(script, out.PkScript)
		newTx.TxOut = append(newTx.TxOut, &TxOutput{
			Amount:   out.Amount,
			PkScript: script,
		})
	}
	return &newTx
}

// Serialize encodes the transaction using the original wire format: all
// integers little-endian, counts and scripts prefixed with compact var
// ints.
func (tx *Transaction) Serialize(w io.Writer) error {
	if err := binarySerializer.PutUint32(w, uint32(tx.Version)); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(tx.TxIn))); err != nil {
		return err
	}
	for _, ti := range tx.TxIn {
		if _, err := w.Write(ti.PreviousOut.Hash[:]); err != nil {
			return err
		}
		if err := binarySerializer.PutUint32(w, ti.PreviousOut.OutIndex); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignScript); err != nil {
			return err
		}
		if err := binarySerializer.PutUint32(w, ti.Sequence); err != nil {
			return err
		}
	}
	if err := WriteVarInt(w, uint64(len(tx.TxOut))); err != nil {
		return err
	}
	for _, to := range tx.TxOut {
		if err := binarySerializer.PutUint64(w, uint64(to.Amount)); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.PkScript); err != nil {
			return err
		}
	}
	return binarySerializer.PutUint32(w, tx.LockTime)
}

// TxHash generates the hash of the transaction serialized.
func (tx *Transaction) TxHash() hash.Hash {
	var buf bytes.Buffer
	// Serialization into a buffer cannot fail.
	tx.Serialize(&buf) //nolint:errcheck
	return hash.DoubleHashH(buf.Bytes())
}

// binaryFreeListType writes the fixed-width integers of the wire format;
// binarySerializer is its single instance.
type binaryFreeListType struct{}

var binarySerializer binaryFreeListType

func (binaryFreeListType) PutUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func (binaryFreeListType) PutUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	switch {
	case val < 0xfd:
		_, err := w.Write([]byte{byte(val)})
		return err
	case val <= 0xffff:
		var b [3]byte
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(val))
		_, err := w.Write(b[:])
		return err
	case val <= 0xffffffff:
		var b [5]byte
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(val))
		_, err := w.Write(b[:])
		return err
	default:
		var b [9]byte
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], val)
		_, err := w.Write(b[:])
		return err
	}
}

// WriteVarBytes serializes a variable length byte array to w as a varint
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
