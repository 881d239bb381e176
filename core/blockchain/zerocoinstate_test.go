// Copyright (c) 2017-2018 The bzx developers

package blockchain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/params"
	"github.com/bzxproject/bzxd/zerocoin"
)

// testCoinValue derives a deterministic commitment-sized value valid under
// both parameter sets.
func testCoinValue(seed int64) *big.Int {
	v := new(big.Int).Exp(big.NewInt(seed+2), big.NewInt(37),
		zerocoin.DefaultParamsV2.Modulus)
	return v
}

// testSerial derives a deterministic serial from the seed.  Seeds up to 19
// give values shorter than 24 bytes, which all share hash bucket 0.
func testSerial(seed int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(seed+3), big.NewInt(41),
		zerocoin.DefaultParams.Modulus)
}

// connectMints feeds mints through the connect hook at the given block.
func connectMints(t *testing.T, state *ZerocoinState, index *BlockIndex,
	mints []MintEntry) *ZerocoinTxInfo {
	t.Helper()

	info := NewZerocoinTxInfo()
	info.Mints = append(info.Mints, mints...)
	info.Complete()

	vstate := &ValidationState{}
	require.True(t, state.ConnectBlockZC(vstate, index, info, false))
	require.False(t, vstate.IsInvalid())
	return info
}

// connectSerials feeds spent serials through the connect hook.
func connectSerials(t *testing.T, state *ZerocoinState, index *BlockIndex,
	d zerocoin.Denomination, serials ...*big.Int) {
	t.Helper()

	info := NewZerocoinTxInfo()
	for _, s := range serials {
		info.PutSpentSerial(s, d)
	}
	info.Complete()

	vstate := &ValidationState{}
	require.True(t, state.ConnectBlockZC(vstate, index, info, false))
}

// assertStatesEqual compares two states structurally.
func assertStatesEqual(t *testing.T, want, got *ZerocoinState) {
	t.Helper()

	require.Equal(t, len(want.coinGroups), len(got.coinGroups))
	for key, wantGroup := range want.coinGroups {
		gotGroup, ok := got.coinGroups[key]
		require.True(t, ok, "missing group %v", key)
		assert.Equal(t, wantGroup.NumCoins, gotGroup.NumCoins)
		assert.Equal(t, wantGroup.FirstBlock, gotGroup.FirstBlock)
		assert.Equal(t, wantGroup.LastBlock, gotGroup.LastBlock)
	}
	for d, id := range want.latestCoinIDs {
		assert.Equal(t, id, got.latestCoinIDs[d], "latest id for %v", d)
	}
	for d, id := range got.latestCoinIDs {
		assert.Equal(t, want.latestCoinIDs[d], id, "latest id for %v", d)
	}
	assert.Equal(t, want.mintedPubCoins.size, got.mintedPubCoins.size)
	assert.True(t, want.usedCoinSerials.Equal(got.usedCoinSerials))
}

func TestAddMintGroupAllocation(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 4, par.PowLimitBits, par.PowTargetSpacing)
	block1 := chain.BlockAtHeight(1)
	block2 := chain.BlockAtHeight(2)

	d := zerocoin.ZQWilliamson // native v1 at id 1

	// The first ten mints fill group 1.
	for i := int64(0); i < 10; i++ {
		id, _ := state.AddMint(block1, d, testCoinValue(i))
		assert.Equal(t, 1, id)
	}
	group, ok := state.GetCoinGroupInfo(d, 1)
	require.True(t, ok)
	assert.Equal(t, 10, group.NumCoins)

	// The group is at capacity; a mint in a new block opens group 2.
	id, _ := state.AddMint(block2, d, testCoinValue(100))
	assert.Equal(t, 2, id)
	assert.Equal(t, 2, state.LatestCoinID(d))

	group2, ok := state.GetCoinGroupInfo(d, 2)
	require.True(t, ok)
	assert.Equal(t, 1, group2.NumCoins)
	assert.Equal(t, block2, group2.FirstBlock)
}

func TestAddMintSameBlockExceedsCap(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 2, par.PowLimitBits, par.PowTargetSpacing)
	block1 := chain.BlockAtHeight(1)

	d := zerocoin.ZQWilliamson
	// Twelve mints in one block all land in group 1 despite the cap of
	// ten: mints of one block must share an id.
	for i := int64(0); i < 12; i++ {
		id, _ := state.AddMint(block1, d, testCoinValue(i))
		assert.Equal(t, 1, id)
	}
	group, _ := state.GetCoinGroupInfo(d, 1)
	assert.Equal(t, 12, group.NumCoins)
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)
	block85 := chain.BlockAtHeight(85)
	block86 := chain.BlockAtHeight(86)

	d := zerocoin.ZQLovelace
	mints := []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(1)},
		{Denomination: d, PubCoin: testCoinValue(2)},
		{Denomination: d, PubCoin: testCoinValue(3)},
	}
	connectMints(t, state, block85, mints)
	connectSerials(t, state, block86, d, testSerial(1), testSerial(2))

	require.True(t, state.HasCoin(testCoinValue(1)))
	require.True(t, state.IsUsedCoinSerial(testSerial(1)))
	group, ok := state.GetCoinGroupInfo(d, 1)
	require.True(t, ok)
	assert.Equal(t, 3, group.NumCoins)

	// Disconnect in reverse order restores the empty state.
	state.DisconnectBlockZC(block86)
	assert.False(t, state.IsUsedCoinSerial(testSerial(1)))
	state.DisconnectBlockZC(block85)

	assertStatesEqual(t, NewZerocoinState(par), state)
	_, ok = state.GetCoinGroupInfo(d, 1)
	assert.False(t, ok)
	assert.False(t, state.HasCoin(testCoinValue(1)))
}

func TestGroupCountInvariant(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)

	d := zerocoin.ZQLovelace
	connectMints(t, state, chain.BlockAtHeight(85), []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(1)},
		{Denomination: d, PubCoin: testCoinValue(2)},
	})
	connectMints(t, state, chain.BlockAtHeight(87), []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(3)},
	})

	key := CoinKey{Denomination: d, ID: 1}
	group, ok := state.GetCoinGroupInfo(d, 1)
	require.True(t, ok)

	total := 0
	for block := group.FirstBlock; ; {
		total += len(block.MintedPubCoins[key])
		if block == group.LastBlock {
			break
		}
		block = chain.BlockAtHeight(block.Height() + 1)
	}
	assert.Equal(t, group.NumCoins, total)
	assert.Equal(t, chain.BlockAtHeight(85), group.FirstBlock)
	assert.Equal(t, chain.BlockAtHeight(87), group.LastBlock)

	assert.True(t, state.TestValidity(chain))
}

func TestAddBlockReplayMatchesConnect(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)

	d := zerocoin.ZQGoldwasser
	connectMints(t, state, chain.BlockAtHeight(85), []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(11)},
		{Denomination: d, PubCoin: testCoinValue(12)},
	})
	connectSerials(t, state, chain.BlockAtHeight(86), d, testSerial(11))
	connectMints(t, state, chain.BlockAtHeight(87), []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(13)},
	})

	replayed := NewZerocoinState(par)
	for block := chain.Genesis(); block != nil; block = chain.Next(block) {
		replayed.AddBlock(block)
	}

	assertStatesEqual(t, state, replayed)
}

func TestGetAccumulatorValueForSpend(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)
	block85 := chain.BlockAtHeight(85)
	block87 := chain.BlockAtHeight(87)

	d := zerocoin.ZQLovelace
	connectMints(t, state, block85, []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(1)},
		{Denomination: d, PubCoin: testCoinValue(2)},
	})
	connectMints(t, state, block87, []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(3)},
	})

	key := CoinKey{Denomination: d, ID: 1}

	// Up to the tip: the newest change wins, counts cover both blocks.
	n, accValue, blockHash := state.GetAccumulatorValueForSpend(chain, 90, d, 1, false)
	assert.Equal(t, 3, n)
	assert.Equal(t, block87.Hash(), blockHash)
	assert.Equal(t, 0, accValue.Cmp(block87.AccumulatorChanges[key].Value))

	// Capped below the second batch.
	n, accValue, blockHash = state.GetAccumulatorValueForSpend(chain, 86, d, 1, false)
	assert.Equal(t, 2, n)
	assert.Equal(t, block85.Hash(), blockHash)
	assert.Equal(t, 0, accValue.Cmp(block85.AccumulatorChanges[key].Value))

	// Unknown group.
	n, _, _ = state.GetAccumulatorValueForSpend(chain, 90, d, 9, false)
	assert.Equal(t, 0, n)
}

func TestGetWitnessForSpend(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)

	d := zerocoin.ZQLovelace
	c1, c2, c3 := testCoinValue(1), testCoinValue(2), testCoinValue(3)
	connectMints(t, state, chain.BlockAtHeight(85), []MintEntry{
		{Denomination: d, PubCoin: c1},
		{Denomination: d, PubCoin: c2},
	})
	connectMints(t, state, chain.BlockAtHeight(87), []MintEntry{
		{Denomination: d, PubCoin: c3},
	})

	_, accValue, _ := state.GetAccumulatorValueForSpend(chain, 90, d, 1, false)
	witness := state.GetWitnessForSpend(chain, 90, d, 1, c1, false)
	acc := zerocoin.NewAccumulatorWithValue(zerocoin.DefaultParams, accValue, d)
	assert.True(t, witness.Verify(acc))

	// Capped at the first batch the witness must match the earlier value.
	_, accValue85, _ := state.GetAccumulatorValueForSpend(chain, 85, d, 1, false)
	witness85 := state.GetWitnessForSpend(chain, 85, d, 1, c2, false)
	acc85 := zerocoin.NewAccumulatorWithValue(zerocoin.DefaultParams, accValue85, d)
	assert.True(t, witness85.Verify(acc85))

	// The full-height witness does not verify against the earlier value.
	assert.False(t, witness.Verify(acc85))
}

func TestAlternativeModulusAccumulators(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)
	block85 := chain.BlockAtHeight(85)

	d := zerocoin.ZQLovelace // native v1 at id 1
	c1, c2 := testCoinValue(21), testCoinValue(22)
	connectMints(t, state, block85, []MintEntry{
		{Denomination: d, PubCoin: c1},
		{Denomination: d, PubCoin: c2},
	})

	key := CoinKey{Denomination: d, ID: 1}
	require.Empty(t, block85.AlternativeAccumulatorChanges)

	// Requesting the opposite modulus materializes the alternative map.
	n, altValue, _ := state.GetAccumulatorValueForSpend(chain, 90, d, 1, true)
	require.Equal(t, 2, n)

	altChange, ok := block85.AlternativeAccumulatorChanges[key]
	require.True(t, ok)
	assert.Equal(t, 2, altChange.Count)
	assert.Equal(t, 0, altValue.Cmp(altChange.Value))

	// The cached value equals a manual replay under the v2 parameters.
	replay := zerocoin.NewAccumulator(zerocoin.DefaultParamsV2, d)
	require.NoError(t, replay.Accumulate(zerocoin.NewPublicCoin(zerocoin.DefaultParamsV2, c1, d)))
	require.NoError(t, replay.Accumulate(zerocoin.NewPublicCoin(zerocoin.DefaultParamsV2, c2, d)))
	assert.Equal(t, 0, altValue.Cmp(replay.Value()))

	// A witness under the alternative modulus verifies against it.
	witness := state.GetWitnessForSpend(chain, 90, d, 1, c1, true)
	acc := zerocoin.NewAccumulatorWithValue(zerocoin.DefaultParamsV2, altValue, d)
	assert.True(t, witness.Verify(acc))

	// A new mint for the lineage invalidates the block's alternative
	// entry.
	connectMints(t, state, block85, []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(23)},
	})
	_, ok = block85.AlternativeAccumulatorChanges[key]
	assert.False(t, ok)
}

func TestRecalculateAccumulators(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)
	block85 := chain.BlockAtHeight(85)

	d := zerocoin.ZQPedersen // native v2 at id 1 on privnet
	connectMints(t, state, block85, []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(31)},
		{Denomination: d, PubCoin: testCoinValue(32)},
	})

	// A clean group needs no repair.
	changes := state.RecalculateAccumulators(chain)
	assert.Equal(t, 0, changes.Cardinality())

	// Corrupt the stored value; the rebuild must flag and fix the block.
	key := CoinKey{Denomination: d, ID: 1}
	good := new(big.Int).Set(block85.AccumulatorChanges[key].Value)
	block85.AccumulatorChanges[key].Value = big.NewInt(123456789)

	changes = state.RecalculateAccumulators(chain)
	assert.Equal(t, 1, changes.Cardinality())
	assert.True(t, changes.Contains(block85))
	assert.Equal(t, 0, good.Cmp(block85.AccumulatorChanges[key].Value))
	assert.True(t, state.TestValidity(chain))
}

func TestTestValidityDetectsCorruption(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)
	block85 := chain.BlockAtHeight(85)

	d := zerocoin.ZQLovelace
	connectMints(t, state, block85, []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(41)},
	})
	require.True(t, state.TestValidity(chain))

	key := CoinKey{Denomination: d, ID: 1}
	block85.AccumulatorChanges[key].Value = big.NewInt(1)
	assert.False(t, state.TestValidity(chain))
}

func TestBuildStateFromIndex(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)

	d := zerocoin.ZQLovelace
	connectMints(t, state, chain.BlockAtHeight(85), []MintEntry{
		{Denomination: d, PubCoin: testCoinValue(51)},
	})
	connectSerials(t, state, chain.BlockAtHeight(86), d, testSerial(51))

	rebuilt := NewZerocoinState(par)
	changes := rebuilt.BuildStateFromIndex(chain)
	assert.Equal(t, 0, changes.Cardinality())
	assertStatesEqual(t, state, rebuilt)
}

func TestMempoolSerialReservation(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)

	serial := testSerial(61)
	txHash := hash.DoubleHashH([]byte("mempool tx"))

	assert.True(t, state.CanAddSpendToMempool(serial))
	assert.True(t, state.AddSpendToMempool(serial, txHash))
	assert.False(t, state.AddSpendToMempool(serial, txHash))
	assert.False(t, state.CanAddSpendToMempool(serial))
	assert.Equal(t, txHash, state.GetMempoolConflictingTxHash(serial))

	state.RemoveSpendFromMempool(serial)
	assert.True(t, state.CanAddSpendToMempool(serial))
	assert.Equal(t, hash.ZeroHash, state.GetMempoolConflictingTxHash(serial))

	// A serial already spent on chain cannot be reserved.
	state.AddSpend(serial)
	assert.False(t, state.AddSpendToMempool(serial, txHash))
}

func TestReset(t *testing.T) {
	par := &params.PrivNetParams
	state := NewZerocoinState(par)
	chain := buildTestChain(t, 90, par.PowLimitBits, par.PowTargetSpacing)

	connectMints(t, state, chain.BlockAtHeight(85), []MintEntry{
		{Denomination: zerocoin.ZQLovelace, PubCoin: testCoinValue(71)},
	})
	state.AddSpend(testSerial(71))

	state.Reset()
	assertStatesEqual(t, NewZerocoinState(par), state)
}
