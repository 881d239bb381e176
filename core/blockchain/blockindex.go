// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/zerocoin"
)

// CoinKey identifies one accumulator lineage: a denomination together with
// its group id.
type CoinKey struct {
	Denomination zerocoin.Denomination
	ID           int
}

// AccChange records the effect of one block on one accumulator lineage:
// the accumulator value after the block and the number of coins the block
// added.
type AccChange struct {
	Value *big.Int
	Count int
}

// Copy returns an independent copy of the change.
func (c *AccChange) Copy() *AccChange {
	return &AccChange{Value: new(big.Int).Set(c.Value), Count: c.Count}
}

// BlockIndex is the in-memory index entry for one block.  Nodes form a
// backward-linked chain through prev; the chain arena owns every node and
// back references never imply ownership.
//
// The zerocoin maps are written by the connect/disconnect hooks and
// nowhere else.  The chain subsystem is responsible for persisting them
// alongside the rest of the node.
type BlockIndex struct {
	// prev is the parent block index entry.
	prev *BlockIndex

	// hash is the hash of the block this node represents.
	hash hash.Hash

	// Header fields needed for difficulty retargeting.
	height    int32
	bits      uint32
	timestamp int64

	// MintedPubCoins holds, per accumulator lineage, the public coins
	// this block minted in mint order.
	MintedPubCoins map[CoinKey][]*big.Int

	// AccumulatorChanges holds this block's effect on each lineage under
	// the lineage's native modulus.
	AccumulatorChanges map[CoinKey]*AccChange

	// AlternativeAccumulatorChanges mirrors AccumulatorChanges under the
	// opposite modulus.  It is computed lazily and invalidated whenever
	// the primary entry for the key changes.
	AlternativeAccumulatorChanges map[CoinKey]*AccChange

	// SpentSerials holds the coin serials consumed by this block.
	SpentSerials *zerocoin.SerialSet
}

// NewBlockIndex creates an index entry for the given header on top of the
// given parent (nil for genesis).
func NewBlockIndex(header *types.BlockHeader, prev *BlockIndex) *BlockIndex {
	height := int32(0)
	if prev != nil {
		height = prev.height + 1
	}
	return &BlockIndex{
		prev:                          prev,
		hash:                          header.BlockHash(),
		height:                        height,
		bits:                          header.Bits,
		timestamp:                     int64(header.Timestamp),
		MintedPubCoins:                make(map[CoinKey][]*big.Int),
		AccumulatorChanges:            make(map[CoinKey]*AccChange),
		AlternativeAccumulatorChanges: make(map[CoinKey]*AccChange),
		SpentSerials:                  zerocoin.NewSerialSet(),
	}
}

// Prev returns the parent index entry.
func (bi *BlockIndex) Prev() *BlockIndex {
	return bi.prev
}

// Hash returns the block hash.
func (bi *BlockIndex) Hash() hash.Hash {
	return bi.hash
}

// Height returns the block height.
func (bi *BlockIndex) Height() int32 {
	return bi.height
}

// Bits returns the compact difficulty target of the block.
func (bi *BlockIndex) Bits() uint32 {
	return bi.bits
}

// GetBlockTime returns the block timestamp.
func (bi *BlockIndex) GetBlockTime() int64 {
	return bi.timestamp
}

// Ancestor returns the ancestor at the given height by walking the prev
// links, or nil if the height is out of range.
func (bi *BlockIndex) Ancestor(height int32) *BlockIndex {
	if height < 0 || height > bi.height {
		return nil
	}
	n := bi
	for n != nil && n.height != height {
		n = n.prev
	}
	return n
}

// Chain is the arena owning the block index entries of the active chain,
// addressable by height.
type Chain struct {
	nodes []*BlockIndex
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Genesis returns the genesis index entry, or nil for an empty chain.
func (c *Chain) Genesis() *BlockIndex {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[0]
}

// Tip returns the current tip, or nil for an empty chain.
func (c *Chain) Tip() *BlockIndex {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[len(c.nodes)-1]
}

// Height returns the height of the tip, or -1 for an empty chain.
func (c *Chain) Height() int32 {
	return int32(len(c.nodes)) - 1
}

// BlockAtHeight returns the index entry at the given height, or nil when
// out of range.
func (c *Chain) BlockAtHeight(height int32) *BlockIndex {
	if height < 0 || height >= int32(len(c.nodes)) {
		return nil
	}
	return c.nodes[height]
}

// Next returns the successor of the given entry on the chain, or nil for
// the tip.
func (c *Chain) Next(bi *BlockIndex) *BlockIndex {
	if bi == nil {
		return c.Genesis()
	}
	return c.BlockAtHeight(bi.height + 1)
}

// Contains returns whether the chain includes the given entry.
func (c *Chain) Contains(bi *BlockIndex) bool {
	return bi != nil && c.BlockAtHeight(bi.height) == bi
}

// Attach appends a new tip.  The entry's parent must be the current tip.
func (c *Chain) Attach(bi *BlockIndex) error {
	if bi.prev != c.Tip() {
		return AssertError("attached block does not extend the tip")
	}
	c.nodes = append(c.nodes, bi)
	return nil
}

// Detach removes and returns the current tip.
func (c *Chain) Detach() *BlockIndex {
	if len(c.nodes) == 0 {
		return nil
	}
	tip := c.nodes[len(c.nodes)-1]
	c.nodes = c.nodes[:len(c.nodes)-1]
	return tip
}
