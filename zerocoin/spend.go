// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/bzxproject/bzxd/common/hash"
)

// Spend transaction versions.  The wire values are consensus-critical and
// must not change.
const (
	ZerocoinTxVersion1  = 1
	ZerocoinTxVersion15 = 15
	ZerocoinTxVersion2  = 20
)

// maxSerialBytes bounds the serialized serial number length.
const maxSerialBytes = 1024

// ErrSpendMalformed is returned when a serialized spend cannot be decoded.
var ErrSpendMalformed = errors.New("malformed serialized coin spend")

// SpendMetaData is the transaction context a v1.5/v2 spend proof commits
// to, preventing the proof from being replayed inside a different
// transaction.
type SpendMetaData struct {
	// AccumulatorID is the nSequence-carried accumulator (group) id.
	AccumulatorID uint32

	// TxHash is the hash of the transaction with all spend scripts
	// cleared.
	TxHash hash.Hash
}

// CoinSpend is a deserialized zero-knowledge spend: it reveals the coin's
// serial number and proves membership of the coin in an accumulator without
// identifying it.
type CoinSpend struct {
	params               *Params
	version              int
	denomination         Denomination
	coinSerialNumber     *big.Int
	accumulatorBlockHash hash.Hash
	proof                [sha256.Size]byte
}

// ParseCoinSpend deserializes a coin spend under the given parameter set.
// Only structural validity is enforced here; version and policy checks
// belong to the validator.
func ParseCoinSpend(params *Params, serialized []byte) (*CoinSpend, error) {
	r := bytes.NewReader(serialized)

	var version uint8
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, ErrSpendMalformed
	}
	var denom int64
	if err := binary.Read(r, binary.BigEndian, &denom); err != nil {
		return nil, ErrSpendMalformed
	}
	var serialLen uint16
	if err := binary.Read(r, binary.BigEndian, &serialLen); err != nil {
		return nil, ErrSpendMalformed
	}
	if serialLen == 0 || serialLen > maxSerialBytes {
		return nil, ErrSpendMalformed
	}
	serialBytes := make([]byte, serialLen)
	if _, err := io.ReadFull(r, serialBytes); err != nil {
		return nil, ErrSpendMalformed
	}
	var blockHash hash.Hash
	if _, err := io.ReadFull(r, blockHash[:]); err != nil {
		return nil, ErrSpendMalformed
	}
	spend := &CoinSpend{
		params:               params,
		version:              int(version),
		denomination:         Denomination(denom),
		coinSerialNumber:     new(big.Int).SetBytes(serialBytes),
		accumulatorBlockHash: blockHash,
	}
	if _, err := io.ReadFull(r, spend.proof[:]); err != nil {
		return nil, ErrSpendMalformed
	}
	if r.Len() != 0 {
		return nil, ErrSpendMalformed
	}
	return spend, nil
}

// Serialize encodes the spend into its wire form.
func (s *CoinSpend) Serialize() []byte {
	serialBytes := s.coinSerialNumber.Bytes()
	var buf bytes.Buffer
	buf.WriteByte(uint8(s.version))
	binary.Write(&buf, binary.BigEndian, int64(s.denomination)) //nolint:errcheck
	binary.Write(&buf, binary.BigEndian, uint16(len(serialBytes)))
	buf.Write(serialBytes)
	buf.Write(s.accumulatorBlockHash[:])
	buf.Write(s.proof[:])
	return buf.Bytes()
}

// Version returns the spend version.
func (s *CoinSpend) Version() int {
	return s.version
}

// SetVersion overrides the spend version.  The validator uses this to
// coerce legacy v2-tagged spends of pre-v2 groups back to version 1.
func (s *CoinSpend) SetVersion(version int) {
	s.version = version
}

// Denomination returns the denomination the spend claims.
func (s *CoinSpend) Denomination() Denomination {
	return s.denomination
}

// CoinSerialNumber returns the serial number revealed by the spend.
func (s *CoinSpend) CoinSerialNumber() *big.Int {
	return s.coinSerialNumber
}

// AccumulatorBlockHash returns the hash of the block whose accumulator
// value the prover used, or the zero hash for version 1 spends.
func (s *CoinSpend) AccumulatorBlockHash() hash.Hash {
	return s.accumulatorBlockHash
}

// Verify checks the spend proof against the given accumulator and metadata.
// Version 1 proofs do not commit to the transaction metadata.
func (s *CoinSpend) Verify(acc *Accumulator, meta *SpendMetaData) bool {
	if s.denomination != acc.denomination {
		return false
	}
	if acc.params != s.params {
		return false
	}
	expect := spendCommitment(s.version, s.denomination, s.coinSerialNumber,
		acc.value, meta)
	return bytes.Equal(expect[:], s.proof[:])
}

// NewSignedSpend builds a spend whose proof binds the serial to the passed
// accumulator value (and, for versions above 1, the transaction metadata).
// This is the prover half used by wallets and tests; the consensus layer
// only ever verifies.
func NewSignedSpend(params *Params, version int, d Denomination, serial *big.Int,
	accValue *big.Int, accBlockHash hash.Hash, meta *SpendMetaData) *CoinSpend {

	spend := &CoinSpend{
		params:               params,
		version:              version,
		denomination:         d,
		coinSerialNumber:     new(big.Int).Set(serial),
		accumulatorBlockHash: accBlockHash,
	}
	spend.proof = spendCommitment(version, d, serial, accValue, meta)
	return spend
}

func spendCommitment(version int, d Denomination, serial, accValue *big.Int,
	meta *SpendMetaData) [sha256.Size]byte {

	h := sha256.New()
	var scratch [8]byte
	h.Write([]byte{uint8(version)})
	binary.BigEndian.PutUint64(scratch[:], uint64(d))
	h.Write(scratch[:])
	writeLenPrefixed(h, serial.Bytes())
	writeLenPrefixed(h, accValue.Bytes())
	if version > ZerocoinTxVersion1 && meta != nil {
		binary.BigEndian.PutUint32(scratch[:4], meta.AccumulatorID)
		h.Write(scratch[:4])
		h.Write(meta.TxHash[:])
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeLenPrefixed(w io.Writer, b []byte) {
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(b)))
	w.Write(l[:]) //nolint:errcheck
	w.Write(b)    //nolint:errcheck
}
