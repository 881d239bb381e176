// Copyright (c) 2017-2018 The bzx developers

package blockchain

import (
	"math/big"

	"github.com/davecgh/go-spew/spew"
	mapset "github.com/deckarep/golang-set"

	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/params"
	"github.com/bzxproject/bzxd/zerocoin"
)

// CoinGroupInfo describes one accumulator group: the span of blocks holding
// its mints and the number of coins accumulated.
type CoinGroupInfo struct {
	// FirstBlock and LastBlock delimit the blocks carrying accumulator
	// changes for the group.  Both are non-owning references into the
	// chain's index arena.
	FirstBlock *BlockIndex
	LastBlock  *BlockIndex

	// NumCoins is the number of coins accumulated into the group.
	NumCoins int
}

// MintedCoinInfo locates one mint: its group and the height it entered the
// chain at.
type MintedCoinInfo struct {
	Denomination zerocoin.Denomination
	ID           int
	Height       int32
}

type mintedCoinEntry struct {
	pubCoin *big.Int
	info    MintedCoinInfo
}

// mintedCoinMultimap maps public coin values to mint records.  Duplicate
// coins are permitted in storage (they are flagged during validation), so
// one value may carry several records.  Buckets use the shared big-number
// hashing policy.
type mintedCoinMultimap struct {
	buckets map[uint64][]mintedCoinEntry
	size    int
}

func newMintedCoinMultimap() *mintedCoinMultimap {
	return &mintedCoinMultimap{buckets: make(map[uint64][]mintedCoinEntry)}
}

func (m *mintedCoinMultimap) insert(pubCoin *big.Int, info MintedCoinInfo) {
	bucket := zerocoin.BigNumBucket(pubCoin)
	m.buckets[bucket] = append(m.buckets[bucket], mintedCoinEntry{
		pubCoin: new(big.Int).Set(pubCoin),
		info:    info,
	})
	m.size++
}

// eraseOne removes a single record matching the coin and its group.  It
// returns false when no such record exists.
func (m *mintedCoinMultimap) eraseOne(pubCoin *big.Int, d zerocoin.Denomination, id int) bool {
	bucket := zerocoin.BigNumBucket(pubCoin)
	entries := m.buckets[bucket]
	for i, e := range entries {
		if e.pubCoin.Cmp(pubCoin) == 0 && e.info.Denomination == d && e.info.ID == id {
			m.buckets[bucket] = append(entries[:i], entries[i+1:]...)
			if len(m.buckets[bucket]) == 0 {
				delete(m.buckets, bucket)
			}
			m.size--
			return true
		}
	}
	return false
}

func (m *mintedCoinMultimap) has(pubCoin *big.Int) bool {
	for _, e := range m.buckets[zerocoin.BigNumBucket(pubCoin)] {
		if e.pubCoin.Cmp(pubCoin) == 0 {
			return true
		}
	}
	return false
}

// find returns the first record for the coin under the given denomination.
func (m *mintedCoinMultimap) find(pubCoin *big.Int, d zerocoin.Denomination) (MintedCoinInfo, bool) {
	for _, e := range m.buckets[zerocoin.BigNumBucket(pubCoin)] {
		if e.pubCoin.Cmp(pubCoin) == 0 && e.info.Denomination == d {
			return e.info, true
		}
	}
	return MintedCoinInfo{}, false
}

// ZerocoinState is the in-memory index over the chain's zerocoin activity:
// which coins were minted into which groups, the spent serial numbers, and
// the serials reserved by mempool transactions.
//
// All methods assume the caller holds the chain state lock; the state has
// no internal locking.
type ZerocoinState struct {
	chainParams *params.Params

	coinGroups     map[CoinKey]*CoinGroupInfo
	mintedPubCoins *mintedCoinMultimap
	latestCoinIDs  map[zerocoin.Denomination]int

	usedCoinSerials    *zerocoin.SerialSet
	mempoolCoinSerials *zerocoin.SerialMap
}

// NewZerocoinState returns an empty state bound to the given chain
// parameters.
func NewZerocoinState(chainParams *params.Params) *ZerocoinState {
	return &ZerocoinState{
		chainParams:        chainParams,
		coinGroups:         make(map[CoinKey]*CoinGroupInfo),
		mintedPubCoins:     newMintedCoinMultimap(),
		latestCoinIDs:      make(map[zerocoin.Denomination]int),
		usedCoinSerials:    zerocoin.NewSerialSet(),
		mempoolCoinSerials: zerocoin.NewSerialMap(),
	}
}

// AddMint records a newly minted coin against the given block and returns
// the group id it was assigned together with the accumulator value the
// group held before this mint (nil when the group was empty).
//
// A group accepts coins until it reaches its capacity, except that mints
// belonging to the same block always share the block's group even beyond
// the cap.  When a full group sees a new block, the next id is allocated.
func (s *ZerocoinState) AddMint(index *BlockIndex, d zerocoin.Denomination,
	pubCoin *big.Int) (int, *big.Int) {

	mintID := 1
	if s.latestCoinIDs[d] < 1 {
		s.latestCoinIDs[d] = mintID
	} else {
		mintID = s.latestCoinIDs[d]
	}

	key := CoinKey{Denomination: d, ID: mintID}
	coinGroup, ok := s.coinGroups[key]
	if !ok {
		coinGroup = &CoinGroupInfo{}
		s.coinGroups[key] = coinGroup
	}

	var previousAccValue *big.Int
	coinsPerID := s.chainParams.CoinsPerID(d, mintID)
	if coinGroup.NumCoins < coinsPerID || coinGroup.LastBlock == index {
		if coinGroup.NumCoins == 0 {
			// First coin of the group for this denomination.
			coinGroup.FirstBlock = index
			coinGroup.LastBlock = index
		} else {
			if change, ok := coinGroup.LastBlock.AccumulatorChanges[key]; ok {
				previousAccValue = new(big.Int).Set(change.Value)
			}
			coinGroup.LastBlock = index
		}
		coinGroup.NumCoins++
	} else {
		mintID++
		s.latestCoinIDs[d] = mintID
		newKey := CoinKey{Denomination: d, ID: mintID}
		s.coinGroups[newKey] = &CoinGroupInfo{
			FirstBlock: index,
			LastBlock:  index,
			NumCoins:   1,
		}
	}

	s.mintedPubCoins.insert(pubCoin, MintedCoinInfo{
		Denomination: d,
		ID:           mintID,
		Height:       index.Height(),
	})

	return mintID, previousAccValue
}

// AddSpend marks a coin serial as used.
func (s *ZerocoinState) AddSpend(serial *big.Int) {
	s.usedCoinSerials.Add(serial)
}

// IsUsedCoinSerial returns whether the serial has been consumed by a
// connected block.
func (s *ZerocoinState) IsUsedCoinSerial(serial *big.Int) bool {
	return s.usedCoinSerials.Has(serial)
}

// HasCoin returns whether the public coin has been minted.
func (s *ZerocoinState) HasCoin(pubCoin *big.Int) bool {
	return s.mintedPubCoins.has(pubCoin)
}

// AddBlock projects a block's own zerocoin maps into the state.  It is the
// replay half of block connection: applying it over a fully indexed chain
// in height order reproduces the online state exactly.
func (s *ZerocoinState) AddBlock(index *BlockIndex) {
	for key, accUpdate := range index.AccumulatorChanges {
		coinGroup, ok := s.coinGroups[key]
		if !ok {
			coinGroup = &CoinGroupInfo{}
			s.coinGroups[key] = coinGroup
		}
		if coinGroup.FirstBlock == nil {
			coinGroup.FirstBlock = index
		}
		coinGroup.LastBlock = index
		coinGroup.NumCoins += accUpdate.Count
	}

	for key, pubCoins := range index.MintedPubCoins {
		s.latestCoinIDs[key.Denomination] = key.ID
		for _, coin := range pubCoins {
			s.mintedPubCoins.insert(coin, MintedCoinInfo{
				Denomination: key.Denomination,
				ID:           key.ID,
				Height:       index.Height(),
			})
		}
	}

	if index.Height() > s.chainParams.CheckBugFixedAtBlock {
		for _, serial := range index.SpentSerials.Serials() {
			s.usedCoinSerials.Add(serial)
		}
	}
}

// RemoveBlock reverts a block's zerocoin effects, in precise reverse order
// of AddBlock.
func (s *ZerocoinState) RemoveBlock(index *BlockIndex) {
	// Roll back accumulator updates.
	for key, accUpdate := range index.AccumulatorChanges {
		coinGroup, ok := s.coinGroups[key]
		if !ok || coinGroup.NumCoins < accUpdate.Count {
			panic(AssertError("group coin count underflow on disconnect"))
		}

		coinGroup.NumCoins -= accUpdate.Count
		if coinGroup.NumCoins == 0 {
			// All the coins of this group have been erased, remove the
			// group altogether and free the id for this denomination.
			delete(s.coinGroups, key)
			s.latestCoinIDs[key.Denomination]--
		} else {
			// Roll back lastBlock to the previous block carrying a
			// change for this group.
			for {
				if coinGroup.LastBlock == coinGroup.FirstBlock {
					panic(AssertError("group last block rolled past first block"))
				}
				coinGroup.LastBlock = coinGroup.LastBlock.Prev()
				if _, ok := coinGroup.LastBlock.AccumulatorChanges[key]; ok {
					break
				}
			}
		}
	}

	// Roll back mints.
	for key, pubCoins := range index.MintedPubCoins {
		for _, coin := range pubCoins {
			if !s.mintedPubCoins.eraseOne(coin, key.Denomination, key.ID) {
				panic(AssertError("disconnected mint missing from state"))
			}
		}
	}

	// Roll back spends.
	for _, serial := range index.SpentSerials.Serials() {
		s.usedCoinSerials.Remove(serial)
	}
}

// GetCoinGroupInfo returns a copy of the group descriptor for the given
// denomination and id.
func (s *ZerocoinState) GetCoinGroupInfo(d zerocoin.Denomination, id int) (CoinGroupInfo, bool) {
	group, ok := s.coinGroups[CoinKey{Denomination: d, ID: id}]
	if !ok {
		return CoinGroupInfo{}, false
	}
	return *group, true
}

// GetMintedCoinHeightAndID returns the height and group id the public coin
// was minted at, or -1 when the coin is unknown.
func (s *ZerocoinState) GetMintedCoinHeightAndID(pubCoin *big.Int,
	d zerocoin.Denomination) (int32, int) {

	if info, ok := s.mintedPubCoins.find(pubCoin, d); ok {
		return info.Height, info.ID
	}
	return -1, 0
}

// LatestCoinID returns the highest group id in use for the denomination.
func (s *ZerocoinState) LatestCoinID(d zerocoin.Denomination) int {
	return s.latestCoinIDs[d]
}

// accChangesOf selects the primary or alternative change map of a block.
func accChangesOf(index *BlockIndex, alternative bool) map[CoinKey]*AccChange {
	if alternative {
		return index.AlternativeAccumulatorChanges
	}
	return index.AccumulatorChanges
}

// GetAccumulatorValueForSpend locates the latest accumulator value usable
// by a spend created no later than maxHeight: the value of the newest block
// at or below that height carrying a change for the group, under the
// requested modulus.  It returns the number of coins accumulated up to that
// point, the value, and the hash of the block it was taken from.
func (s *ZerocoinState) GetAccumulatorValueForSpend(chain *Chain, maxHeight int32,
	d zerocoin.Denomination, id int, useModulusV2 bool) (int, *big.Int, hash.Hash) {

	key := CoinKey{Denomination: d, ID: id}
	coinGroup, ok := s.coinGroups[key]
	if !ok {
		return 0, nil, hash.ZeroHash
	}

	if _, ok := coinGroup.LastBlock.AccumulatorChanges[key]; !ok {
		panic(AssertError("group last block carries no accumulator change"))
	}
	if _, ok := coinGroup.FirstBlock.AccumulatorChanges[key]; !ok {
		panic(AssertError("group first block carries no accumulator change"))
	}

	nativeModulusIsV2 := s.chainParams.IsZerocoinTxV2(d, id)
	useAlternative := nativeModulusIsV2 != useModulusV2
	if useAlternative {
		s.CalculateAlternativeModulusAccumulatorValues(chain, d, id)
	}

	var accValue *big.Int
	var blockHash hash.Hash
	numberOfCoins := 0
	lastBlock := coinGroup.LastBlock
	for {
		if change, ok := accChangesOf(lastBlock, useAlternative)[key]; ok {
			if lastBlock.Height() <= maxHeight {
				if numberOfCoins == 0 {
					// Latest block satisfying the conditions; remember
					// the accumulator value and block hash.
					accValue = new(big.Int).Set(change.Value)
					blockHash = lastBlock.Hash()
				}
				numberOfCoins += change.Count
			}
		}

		if lastBlock == coinGroup.FirstBlock {
			break
		}
		lastBlock = lastBlock.Prev()
	}

	return numberOfCoins, accValue, blockHash
}

// GetWitnessForSpend builds the accumulator witness for the given coin: the
// accumulation of every coin in the group up to maxHeight except the coin
// itself, under the requested modulus.
func (s *ZerocoinState) GetWitnessForSpend(chain *Chain, maxHeight int32,
	d zerocoin.Denomination, id int, pubCoin *big.Int,
	useModulusV2 bool) *zerocoin.AccumulatorWitness {

	key := CoinKey{Denomination: d, ID: id}
	coinGroup, ok := s.coinGroups[key]
	if !ok {
		panic(AssertError("witness requested for unknown coin group"))
	}

	mintHeight, coinID := s.GetMintedCoinHeightAndID(pubCoin, d)
	if coinID != id {
		panic(AssertError("witness requested for coin outside the group"))
	}

	zcParams := zerocoin.SelectParams(useModulusV2)
	nativeModulusIsV2 := s.chainParams.IsZerocoinTxV2(d, id)
	useAlternative := nativeModulusIsV2 != useModulusV2
	if useAlternative {
		s.CalculateAlternativeModulusAccumulatorValues(chain, d, id)
	}

	// Find the accumulator value preceding the mint operation.
	mintBlock := chain.BlockAtHeight(mintHeight)
	block := mintBlock
	accumulator := zerocoin.NewAccumulator(zcParams, d)
	if block != coinGroup.FirstBlock {
		for {
			block = block.Prev()
			if _, ok := accChangesOf(block, useAlternative)[key]; ok {
				break
			}
		}
		accumulator = zerocoin.NewAccumulatorWithValue(zcParams,
			accChangesOf(block, useAlternative)[key].Value, d)
	}

	// Now add to the accumulator every coin minted since that moment
	// except the coin itself.
	block = coinGroup.LastBlock
	for {
		if block.Height() <= maxHeight {
			for _, coin := range block.MintedPubCoins[key] {
				if block != mintBlock || coin.Cmp(pubCoin) != 0 {
					// Coins in the index were validated on connect.
					accumulator.Accumulate(zerocoin.NewPublicCoin(zcParams, coin, d)) //nolint:errcheck
				}
			}
		}
		if block == mintBlock {
			break
		}
		block = block.Prev()
	}

	return zerocoin.NewAccumulatorWitness(accumulator,
		zerocoin.NewPublicCoin(zcParams, pubCoin, d))
}

// CalculateAlternativeModulusAccumulatorValues lazily fills the alternative
// change map of every block in the group by replaying the group's mints
// under the opposite parameter set.  Blocks already carrying an alternative
// entry reuse the cached value.
func (s *ZerocoinState) CalculateAlternativeModulusAccumulatorValues(chain *Chain,
	d zerocoin.Denomination, id int) {

	key := CoinKey{Denomination: d, ID: id}
	altParams := zerocoin.SelectParams(!s.chainParams.IsZerocoinTxV2(d, id))
	accumulator := zerocoin.NewAccumulator(altParams, d)

	coinGroup, ok := s.coinGroups[key]
	if !ok {
		panic(AssertError("alternative accumulator requested for unknown group"))
	}

	block := coinGroup.FirstBlock
	for {
		if _, ok := block.AccumulatorChanges[key]; ok {
			if cached, ok := block.AlternativeAccumulatorChanges[key]; ok {
				// Already calculated, resume from the cached value.
				accumulator = zerocoin.NewAccumulatorWithValue(altParams, cached.Value, d)
			} else {
				mintedCoins, ok := block.MintedPubCoins[key]
				if !ok {
					panic(AssertError("accumulator change without minted coins"))
				}
				for _, coin := range mintedCoins {
					accumulator.Accumulate(zerocoin.NewPublicCoin(altParams, coin, d)) //nolint:errcheck
				}
				block.AlternativeAccumulatorChanges[key] = &AccChange{
					Value: new(big.Int).Set(accumulator.Value()),
					Count: len(mintedCoins),
				}
			}
		}

		if block == coinGroup.LastBlock {
			break
		}
		block = chain.BlockAtHeight(block.Height() + 1)
	}
}

// RecalculateAccumulators replays every natively-v2 group from its first
// block and, when the stored value of the first block disagrees with the
// replay, overwrites the group's accumulator changes.  The set of mutated
// block index entries is returned so the caller can persist them.  This
// repairs historic index corruption after a software upgrade.
func (s *ZerocoinState) RecalculateAccumulators(chain *Chain) mapset.Set {
	changes := mapset.NewSet()

	for key, coinGroup := range s.coinGroups {
		if !s.chainParams.IsZerocoinTxV2(key.Denomination, key.ID) {
			continue
		}

		acc := zerocoin.NewAccumulator(zerocoin.DefaultParamsV2, key.Denomination)

		// Calculate the accumulator over the first batch of mints.  If it
		// matches, the group needs no repair.
		block := coinGroup.FirstBlock
		for {
			if change, ok := block.AccumulatorChanges[key]; ok {
				for _, coin := range block.MintedPubCoins[key] {
					acc.Accumulate(zerocoin.NewPublicCoin(
						zerocoin.DefaultParamsV2, coin, key.Denomination)) //nolint:errcheck
				}

				if block == coinGroup.FirstBlock {
					if acc.Value().Cmp(change.Value) != 0 {
						log.Info("accumulator recalculation needed",
							"denomination", key.Denomination, "id", key.ID)
					} else {
						break
					}
				}

				block.AccumulatorChanges[key] = &AccChange{
					Value: new(big.Int).Set(acc.Value()),
					Count: len(block.MintedPubCoins[key]),
				}
				changes.Add(block)
			}

			if block == coinGroup.LastBlock {
				break
			}
			block = chain.BlockAtHeight(block.Height() + 1)
		}
	}

	return changes
}

// TestValidity replays every group and checks the stored accumulator
// values and counts against the minted coins.  It is a diagnostic used by
// consistency checks and tests.
func (s *ZerocoinState) TestValidity(chain *Chain) bool {
	for key, coinGroup := range s.coinGroups {
		zcParams := s.chainParams.ZerocoinParams(key.Denomination, key.ID)
		acc := zerocoin.NewAccumulator(zcParams, key.Denomination)

		block := coinGroup.FirstBlock
		for {
			if change, ok := block.AccumulatorChanges[key]; ok {
				minted, ok := block.MintedPubCoins[key]
				if !ok {
					log.Error("group block has no minted coins",
						"denomination", key.Denomination, "id", key.ID,
						"height", block.Height())
					return false
				}

				for _, coin := range minted {
					acc.Accumulate(zerocoin.NewPublicCoin(zcParams, coin, key.Denomination)) //nolint:errcheck
				}

				if acc.Value().Cmp(change.Value) != 0 {
					log.Error("accumulator value mismatch",
						"denomination", key.Denomination, "id", key.ID,
						"height", block.Height(),
						"group", spew.Sdump(*coinGroup))
					return false
				}
				if change.Count != len(minted) {
					log.Error("minted coin count mismatch",
						"denomination", key.Denomination, "id", key.ID,
						"height", block.Height())
					return false
				}
			}

			if block == coinGroup.LastBlock {
				break
			}
			block = chain.BlockAtHeight(block.Height() + 1)
		}
	}

	return true
}

// AddSpendToMempool reserves a serial for a mempool transaction.  It fails
// when the serial is already spent on chain or reserved by another mempool
// transaction.
func (s *ZerocoinState) AddSpendToMempool(serial *big.Int, txHash hash.Hash) bool {
	if s.IsUsedCoinSerial(serial) || s.mempoolCoinSerials.Has(serial) {
		return false
	}
	s.mempoolCoinSerials.Put(serial, txHash)
	return true
}

// CanAddSpendToMempool returns whether a spend of the serial would be
// admitted to the mempool.
func (s *ZerocoinState) CanAddSpendToMempool(serial *big.Int) bool {
	return !s.IsUsedCoinSerial(serial) && !s.mempoolCoinSerials.Has(serial)
}

// RemoveSpendFromMempool releases a serial reservation.
func (s *ZerocoinState) RemoveSpendFromMempool(serial *big.Int) {
	s.mempoolCoinSerials.Delete(serial)
}

// GetMempoolConflictingTxHash returns the hash of the mempool transaction
// holding the serial, or the zero hash when the serial is free.
func (s *ZerocoinState) GetMempoolConflictingTxHash(serial *big.Int) hash.Hash {
	txHash, _ := s.mempoolCoinSerials.Get(serial)
	return txHash
}

// Reset wipes the state back to empty.
func (s *ZerocoinState) Reset() {
	s.coinGroups = make(map[CoinKey]*CoinGroupInfo)
	s.mintedPubCoins = newMintedCoinMultimap()
	s.latestCoinIDs = make(map[zerocoin.Denomination]int)
	s.usedCoinSerials = zerocoin.NewSerialSet()
	s.mempoolCoinSerials = zerocoin.NewSerialMap()
}

// BuildStateFromIndex rebuilds the state from a fully indexed chain and
// repairs any v2 accumulator corruption found.  The set of mutated block
// index entries is returned for persistence.
func (s *ZerocoinState) BuildStateFromIndex(chain *Chain) mapset.Set {
	s.Reset()
	for block := chain.Genesis(); block != nil; block = chain.Next(block) {
		s.AddBlock(block)
	}

	changes := s.RecalculateAccumulators(chain)

	log.Debug("zerocoin state rebuilt",
		"latestID1", s.latestCoinIDs[zerocoin.ZQLovelace],
		"latestID10", s.latestCoinIDs[zerocoin.ZQGoldwasser],
		"latestID25", s.latestCoinIDs[zerocoin.ZQRackoff],
		"latestID50", s.latestCoinIDs[zerocoin.ZQPedersen],
		"latestID100", s.latestCoinIDs[zerocoin.ZQWilliamson])
	return changes
}
