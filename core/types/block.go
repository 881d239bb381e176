// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"io"

	"github.com/bzxproject/bzxd/common/hash"
)

// blockHeaderLen is the serialized length of a block header: version 4 bytes
// + prev block 32 bytes + merkle root 32 bytes + timestamp 4 bytes + bits 4
// bytes + nonce 4 bytes.
const blockHeaderLen = 80

// BlockHeader defines information about a block and is used in the block and
// headers messages.
type BlockHeader struct {
	// Version of the block.  This is not the same as the protocol version.
	Version int32

	// Hash of the previous block in the block chain.
	PrevBlock hash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot hash.Hash

	// Time the block was created.  Encoded as uint32 on the wire.
	Timestamp uint32

	// Difficulty target for the block.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32
}

// Serialize encodes the header into the passed writer using the wire
// encoding.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := binarySerializer.PutUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, h.Timestamp); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, h.Bits); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, h.Nonce)
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() hash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, blockHeaderLen))
	// Serialization into a buffer cannot fail.
	h.Serialize(buf) //nolint:errcheck
	return hash.DoubleHashH(buf.Bytes())
}

// Block defines a block containing the header and transactions it is
// comprised of.
type Block struct {
	Header       BlockHeader
	Transactions []*Transaction
}

// AddTransaction adds a transaction to the block.
func (b *Block) AddTransaction(tx *Transaction) {
	b.Transactions = append(b.Transactions, tx)
}

// BlockHash computes the block identifier hash for this block.
func (b *Block) BlockHash() hash.Hash {
	return b.Header.BlockHash()
}

// BuildMerkleRoot computes the merkle root over the block's transaction
// hashes: pairs hashed together level by level, an odd node paired with
// itself.
func BuildMerkleRoot(txns []*Transaction) hash.Hash {
	if len(txns) == 0 {
		return hash.ZeroHash
	}

	level := make([]hash.Hash, 0, len(txns))
	for _, tx := range txns {
		level = append(level, tx.TxHash())
	}

	for len(level) > 1 {
		next := make([]hash.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			var concat [hash.HashSize * 2]byte
			copy(concat[:], level[i][:])
			copy(concat[hash.HashSize:], right[:])
			next = append(next, hash.DoubleHashH(concat[:]))
		}
		level = next
	}

	return level[0]
}
