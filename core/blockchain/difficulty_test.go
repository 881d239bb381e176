// Copyright (c) 2017-2018 The bzx developers

package blockchain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/core/types/pow"
	"github.com/bzxproject/bzxd/params"
)

// buildTestChain attaches count blocks above genesis with the given bits
// and inter-block spacing in seconds.
func buildTestChain(t *testing.T, count int, bits uint32, spacing int64) *Chain {
	t.Helper()

	chain := NewChain()
	genesisHeader := &types.BlockHeader{
		Version:   2,
		Bits:      bits,
		Timestamp: 1485785935,
		Nonce:     0,
	}
	prev := NewBlockIndex(genesisHeader, nil)
	require.NoError(t, chain.Attach(prev))

	prevHash := genesisHeader.BlockHash()
	for i := 1; i <= count; i++ {
		header := &types.BlockHeader{
			Version:   2,
			PrevBlock: prevHash,
			Bits:      bits,
			Timestamp: uint32(1485785935 + int64(i)*spacing),
			Nonce:     uint32(i),
		}
		node := NewBlockIndex(header, prev)
		require.NoError(t, chain.Attach(node))
		prev = node
		prevHash = header.BlockHash()
	}
	return chain
}

func TestDGWUniformSpacing(t *testing.T) {
	par := &params.PrivNetParams
	bits := uint32(0x1e0fffff)

	// At exactly the target spacing the 24-block window observes 23 gaps
	// against a 24-spacing expectation, so the target eases by 23/24.
	chain := buildTestChain(t, 70, bits, par.PowTargetSpacing)
	got := GetNextWorkRequired(chain.Tip(), &types.BlockHeader{}, par)

	target := pow.CompactToBig(bits)
	expected := new(big.Int).Mul(target, big.NewInt(23*par.PowTargetSpacing))
	expected.Div(expected, big.NewInt(24*par.PowTargetSpacing))
	assert.Equal(t, pow.BigToCompact(expected), got)
}

func TestDGWClampFastBlocks(t *testing.T) {
	par := &params.PrivNetParams
	bits := uint32(0x1e0fffff)

	// One-second blocks clamp the actual timespan to 2/3 of the target.
	chain := buildTestChain(t, 70, bits, 1)
	got := GetNextWorkRequired(chain.Tip(), &types.BlockHeader{}, par)

	target := pow.CompactToBig(bits)
	targetTimespan := 24 * par.PowTargetSpacing
	expected := new(big.Int).Mul(target, big.NewInt(targetTimespan*2/3))
	expected.Div(expected, big.NewInt(targetTimespan))
	assert.Equal(t, pow.BigToCompact(expected), got)
}

func TestDGWClampSlowBlocks(t *testing.T) {
	par := &params.PrivNetParams
	bits := uint32(0x1e000fff)

	// Ten-minute blocks clamp the actual timespan to 3/2 of the target.
	chain := buildTestChain(t, 70, bits, 600)
	got := GetNextWorkRequired(chain.Tip(), &types.BlockHeader{}, par)

	target := pow.CompactToBig(bits)
	targetTimespan := 24 * par.PowTargetSpacing
	expected := new(big.Int).Mul(target, big.NewInt(targetTimespan*3/2))
	expected.Div(expected, big.NewInt(targetTimespan))
	assert.Equal(t, pow.BigToCompact(expected), got)
}

func TestDGWFewerAncestors(t *testing.T) {
	par := &params.PrivNetParams
	bits := uint32(0x1e0fffff)

	// Only ten ancestors exist; the window shrinks to what is available.
	chain := buildTestChain(t, 10, bits, par.PowTargetSpacing)
	got := darkGravityWave3(chain.Tip(), par)

	target := pow.CompactToBig(bits)
	expected := new(big.Int).Mul(target, big.NewInt(9*par.PowTargetSpacing))
	expected.Div(expected, big.NewInt(10*par.PowTargetSpacing))
	assert.Equal(t, pow.BigToCompact(expected), got)
}

func TestLegacyRetargetRegime(t *testing.T) {
	par := &params.PrivNetParams
	bits := uint32(0x1e0fffff)

	// Heights between the fork points use the three-block retarget.  At
	// twice the target spacing the step clamps to 5/4.
	chain := buildTestChain(t, int(par.HFForkDGW)-5, bits, 2*par.PowTargetSpacing)
	tip := chain.Tip()
	require.True(t, tip.Height() > par.HFForkEnd && tip.Height() <= par.HFForkDGW)

	got := GetNextWorkRequired(tip, &types.BlockHeader{}, par)

	target := pow.CompactToBig(bits)
	expected := new(big.Int).Mul(target, big.NewInt(par.PowTargetTimespan*5/4))
	expected.Div(expected, big.NewInt(par.PowTargetTimespan))
	assert.Equal(t, pow.BigToCompact(expected), got)
}

func TestGenesisEraRegime(t *testing.T) {
	par := &params.PrivNetParams
	chain := buildTestChain(t, int(par.HFForkEnd)-2, 0x1e0fffff, par.PowTargetSpacing)

	assert.Equal(t, par.PowLimitBits,
		GetNextWorkRequired(chain.Tip(), &types.BlockHeader{}, par))
}

func TestDGWClampsToPowLimit(t *testing.T) {
	par := &params.PrivNetParams

	// Slow blocks at the limit difficulty cannot go above the limit.
	chain := buildTestChain(t, 70, par.PowLimitBits, 600)
	assert.Equal(t, par.PowLimitBits,
		GetNextWorkRequired(chain.Tip(), &types.BlockHeader{}, par))
}

func TestCheckProofOfWork(t *testing.T) {
	par := &params.MainNetParams

	var low hash.Hash // zero hash is below every target
	assert.True(t, CheckProofOfWork(low, par.PowLimitBits, par))

	// A hash larger than the pow limit fails the gate.
	var high hash.Hash
	high[31] = 0x10 // most significant display byte
	assert.False(t, CheckProofOfWork(high, par.PowLimitBits, par))

	// A hash exactly at the decoded target is accepted.
	target := pow.CompactToBig(par.PowLimitBits)
	exact := target.Bytes()
	var exactHash hash.Hash
	for i, b := range exact {
		exactHash[len(exact)-1-i] = b
	}
	assert.True(t, CheckProofOfWork(exactHash, par.PowLimitBits, par))

	// Negative, zero, overflow and above-limit targets are rejected.
	assert.False(t, CheckProofOfWork(low, 0x04923456, par)) // sign bit
	assert.False(t, CheckProofOfWork(low, 0x00000000, par)) // zero
	assert.False(t, CheckProofOfWork(low, 0x23000001, par)) // overflow
	assert.False(t, CheckProofOfWork(low, 0x20010000, par)) // above limit
}

func TestCheckProofOfWorkCompactRoundTrip(t *testing.T) {
	par := &params.MainNetParams
	h := hash.DoubleHashH([]byte("header"))

	for _, bits := range []uint32{0x1f0fffff, 0x1e0fffff, 0x1d00ffff, 0x1b0404cb} {
		reencoded := pow.BigToCompact(pow.CompactToBig(bits))
		assert.Equal(t, CheckProofOfWork(h, bits, par),
			CheckProofOfWork(h, reencoded, par), "bits %#x", bits)
	}
}
