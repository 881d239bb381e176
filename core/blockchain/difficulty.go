// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/core/types/pow"
	"github.com/bzxproject/bzxd/params"
)

// dgwPastBlocks is the window of ancestors Dark Gravity Wave averages over.
const dgwPastBlocks = 24

// darkGravityWave3 computes the next required difficulty as the average of
// the targets of up to the last 24 blocks, scaled by the ratio of the
// actual to the expected timespan of that window.  All intermediates use
// arbitrary precision; the timespan ratio is clamped to [2/3, 3/2].
func darkGravityWave3(lastNode *BlockIndex, par *params.Params) uint32 {
	blockReading := lastNode
	var actualTimespan int64
	var lastBlockTime int64
	countBlocks := int64(0)
	var pastDifficultyAverage *big.Int
	var pastDifficultyAveragePrev *big.Int

	// Walk back over the past window.  The loop stops before genesis;
	// the retargeter is only ever consulted far above the fork height,
	// so at least one ancestor is always available.
	for i := int64(1); blockReading != nil && blockReading.Height() > 0; i++ {
		if i > dgwPastBlocks {
			break
		}
		countBlocks++

		if countBlocks == 1 {
			pastDifficultyAverage = pow.CompactToBig(blockReading.Bits())
		} else {
			// avg' = (avg*n + target) / (n+1)
			pastDifficultyAverage = new(big.Int).Mul(
				pastDifficultyAveragePrev, big.NewInt(countBlocks))
			pastDifficultyAverage.Add(pastDifficultyAverage,
				pow.CompactToBig(blockReading.Bits()))
			pastDifficultyAverage.Div(pastDifficultyAverage,
				big.NewInt(countBlocks+1))
		}
		pastDifficultyAveragePrev = pastDifficultyAverage

		if lastBlockTime > 0 {
			actualTimespan += lastBlockTime - blockReading.GetBlockTime()
		}
		lastBlockTime = blockReading.GetBlockTime()

		if blockReading.Prev() == nil {
			break
		}
		blockReading = blockReading.Prev()
	}

	bnNew := new(big.Int).Set(pastDifficultyAverage)
	targetTimespan := countBlocks * par.PowTargetSpacing

	// Clamp the adjustment step: 1.5 expressed as 3/2 to stay in
	// integer arithmetic.
	if actualTimespan < targetTimespan*2/3 {
		actualTimespan = targetTimespan * 2 / 3
	}
	if actualTimespan > targetTimespan*3/2 {
		actualTimespan = targetTimespan * 3 / 2
	}

	bnNew.Mul(bnNew, big.NewInt(actualTimespan))
	bnNew.Div(bnNew, big.NewInt(targetTimespan))

	if bnNew.Cmp(par.PowLimit) > 0 {
		bnNew.Set(par.PowLimit)
	}

	return pow.BigToCompact(bnNew)
}

// calcNextWorkRequiredBTC is the legacy single-step retarget: the previous
// target scaled by the actual over expected timespan, the step clamped to
// [4/5, 5/4].
func calcNextWorkRequiredBTC(lastNode *BlockIndex, firstBlockTime int64,
	par *params.Params) uint32 {

	actualTimespan := lastNode.GetBlockTime() - firstBlockTime
	if actualTimespan < par.PowTargetTimespan*4/5 {
		actualTimespan = par.PowTargetTimespan * 4 / 5
	}
	if actualTimespan > par.PowTargetTimespan*5/4 {
		actualTimespan = par.PowTargetTimespan * 5 / 4
	}

	bnNew := pow.CompactToBig(lastNode.Bits())
	bnNew.Mul(bnNew, big.NewInt(actualTimespan))
	bnNew.Div(bnNew, big.NewInt(par.PowTargetTimespan))

	if bnNew.Cmp(par.PowLimit) > 0 {
		bnNew.Set(par.PowLimit)
	}

	return pow.BigToCompact(bnNew)
}

// getNextWorkRequiredBTC retargets over the last 3 blocks by going back two
// ancestors from the tip.
func getNextWorkRequiredBTC(lastNode *BlockIndex, par *params.Params) uint32 {
	firstHeight := lastNode.Height() - 2
	if firstHeight < 0 {
		return pow.BigToCompact(par.PowLimit)
	}
	first := lastNode.Ancestor(firstHeight)
	return calcNextWorkRequiredBTC(lastNode, first.GetBlockTime(), par)
}

// GetNextWorkRequired computes the required difficulty bits for the block
// following lastNode.  Three regimes apply depending on the tip height:
// Dark Gravity Wave above the DGW fork, the legacy three-block retarget
// between the fork heights, and the fixed proof of work limit before that.
func GetNextWorkRequired(lastNode *BlockIndex, header *types.BlockHeader,
	par *params.Params) uint32 {

	switch {
	case lastNode.Height() > par.HFForkDGW:
		return darkGravityWave3(lastNode, par)
	case lastNode.Height() > par.HFForkEnd:
		return getNextWorkRequiredBTC(lastNode, par)
	default:
		return pow.BigToCompact(par.PowLimit)
	}
}

// CheckProofOfWork returns whether the block hash satisfies the claimed
// difficulty: the decoded target must be positive, within range and not
// above the proof of work limit, and the hash must not exceed it.
func CheckProofOfWork(blockHash hash.Hash, bits uint32, par *params.Params) bool {
	target, negative, overflow := pow.CompactToBigFlags(bits)
	if negative || target.Sign() == 0 || overflow {
		return false
	}
	if target.Cmp(par.PowLimit) > 0 {
		return false
	}
	return pow.HashToBig(&blockHash).Cmp(target) <= 0
}
