// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/core/types"
)

// genesisTimestamp is the message embedded in the genesis coinbase input.
const genesisTimestamp = "Lets Swap Hexx"

// buildGenesisBlock reconstructs the chain's genesis block.  The coinbase
// input script pushes the launch difficulty, the constant 4, the timestamp
// message and the per-network extra nonce, exactly as the chain committed
// to at launch.
func buildGenesisBlock(nTime uint32, nNonce uint32, nBits uint32, nVersion int32,
	genesisReward types.Amount, extraNonce []byte) *types.Block {

	var sb types.ScriptBuilder
	sb.AddInt64(int64(nBits))
	sb.AddData([]byte{0x04})
	sb.AddData([]byte(genesisTimestamp))
	sb.AddData(extraNonce)

	coinbaseTx := &types.Transaction{Version: types.TxVersion}
	coinbaseTx.AddTxIn(&types.TxInput{
		PreviousOut: types.TxOutPoint{
			Hash:     hash.ZeroHash,
			OutIndex: types.MaxPrevOutIndex,
		},
		SignScript: sb.Script(),
		Sequence:   types.MaxTxInSequenceNum,
	})
	coinbaseTx.AddTxOut(&types.TxOutput{
		Amount:   genesisReward,
		PkScript: nil,
	})

	block := &types.Block{
		Header: types.BlockHeader{
			Version:   nVersion,
			PrevBlock: hash.ZeroHash,
			Timestamp: nTime,
			Bits:      nBits,
			Nonce:     nNonce,
		},
	}
	block.AddTransaction(coinbaseTx)
	block.Header.MerkleRoot = types.BuildMerkleRoot(block.Transactions)
	return block
}

// mainNetGenesisBlock is the genesis block for the main network.
var mainNetGenesisBlock = buildGenesisBlock(1485785935, 2610, 0x1f0fffff, 2, 0,
	[]byte{0x82, 0x3f, 0x00, 0x00})

// mainNetGenesisHash is the hash of the first block in the block chain for
// the main network.
var mainNetGenesisHash = hash.MustHexToDecodedHash(
	"322bad477efb4b33fa4b1f0b2861eaf543c61068da9898a95062fdb02ada486f")

// mainNetGenesisMerkleRoot is the hash of the first transaction in the
// genesis block for the main network.
var mainNetGenesisMerkleRoot = hash.MustHexToDecodedHash(
	"31f49b23f8a1185f85a6a6972446e72a86d50ca0e3b3ffe217d0c2fea30473db")
