// Copyright (c) 2017-2018 The bzx developers

package blockchain

import (
	"bytes"
	"math"
	"math/big"
	"sort"

	mapset "github.com/deckarep/golang-set"

	"github.com/bzxproject/bzxd/common/encode/base58"
	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/params"
	"github.com/bzxproject/bzxd/zerocoin"
)

// MempoolHeight is the sentinel height validators receive when a
// transaction is being considered for mempool admission rather than block
// inclusion.
const MempoolHeight = int32(math.MaxInt32)

// MintEntry is one mint collected from a transaction output: the
// denomination and the committed public coin.
type MintEntry struct {
	Denomination zerocoin.Denomination
	PubCoin      *big.Int
}

// SpendSerialEntry is one spent serial collected from a spend input.
type SpendSerialEntry struct {
	Serial       *big.Int
	Denomination zerocoin.Denomination
}

// ZerocoinTxInfo accumulates the zerocoin effects of a block's transactions
// while they are validated, and carries them into the connect hook once
// complete.
type ZerocoinTxInfo struct {
	// Mints are the minted coins, in Complete() order once the info is
	// complete.
	Mints []MintEntry

	// spentSerials maps each spent serial to its denomination, kept in
	// ascending serial order.
	spentSerials []SpendSerialEntry

	// ZcTransactions is the set of zerocoin transaction hashes seen.
	ZcTransactions mapset.Set

	// HasSpendV1 is set when any collected spend is version 1.
	HasSpendV1 bool

	// IsComplete is set by Complete(); a completed info is read-only.
	IsComplete bool
}

// NewZerocoinTxInfo returns an empty info.
func NewZerocoinTxInfo() *ZerocoinTxInfo {
	return &ZerocoinTxInfo{ZcTransactions: mapset.NewSet()}
}

// HasSpentSerial returns whether the serial has been collected already.
func (info *ZerocoinTxInfo) HasSpentSerial(serial *big.Int) bool {
	i := sort.Search(len(info.spentSerials), func(i int) bool {
		return info.spentSerials[i].Serial.Cmp(serial) >= 0
	})
	return i < len(info.spentSerials) && info.spentSerials[i].Serial.Cmp(serial) == 0
}

// PutSpentSerial records a spent serial with its denomination, keeping the
// collection sorted by serial.
func (info *ZerocoinTxInfo) PutSpentSerial(serial *big.Int, d zerocoin.Denomination) {
	i := sort.Search(len(info.spentSerials), func(i int) bool {
		return info.spentSerials[i].Serial.Cmp(serial) >= 0
	})
	if i < len(info.spentSerials) && info.spentSerials[i].Serial.Cmp(serial) == 0 {
		info.spentSerials[i].Denomination = d
		return
	}
	info.spentSerials = append(info.spentSerials, SpendSerialEntry{})
	copy(info.spentSerials[i+1:], info.spentSerials[i:])
	info.spentSerials[i] = SpendSerialEntry{
		Serial:       new(big.Int).Set(serial),
		Denomination: d,
	}
}

// SpentSerialEntries returns the collected serials in ascending serial
// order.
func (info *ZerocoinTxInfo) SpentSerialEntries() []SpendSerialEntry {
	return info.spentSerials
}

// Complete sorts the mints lexicographically by (denomination, serialized
// pubcoin) and freezes the info.  Old clients applied mints in exactly this
// order, so connect must too.
func (info *ZerocoinTxInfo) Complete() {
	sort.SliceStable(info.Mints, func(i, j int) bool {
		m1, m2 := info.Mints[i], info.Mints[j]
		if m1.Denomination != m2.Denomination {
			return m1.Denomination < m2.Denomination
		}
		return bytes.Compare(m1.PubCoin.Bytes(), m2.PubCoin.Bytes()) < 0
	})
	info.IsComplete = true
}

// CheckSpendSerial enforces the duplicate-serial rules for one spend at the
// given height.  Above the bug-fix height it rejects two spends of one serial
// inside one block and, when accepting into the mempool or connecting the
// tip, a spend of a serial already consumed on chain; below the v1.5 start
// height such reuse is logged only.  At or below the bug-fix height nothing
// is checked.
func (s *ZerocoinState) CheckSpendSerial(vstate *ValidationState, info *ZerocoinTxInfo,
	d zerocoin.Denomination, serial *big.Int, nHeight int32, connectTip bool) bool {

	if nHeight > s.chainParams.CheckBugFixedAtBlock {
		// Check for a zerocoin transaction in this block as well.
		if info != nil && !info.IsComplete && info.HasSpentSerial(serial) {
			return vstate.DoS(100, RejectInvalid,
				"two or more spends with same serial in the same block")
		}

		// Check for used serials in the state.  This only applies when
		// accepting into the mempool or connecting a block to the
		// existing chain.
		if s.IsUsedCoinSerial(serial) {
			if nHeight == MempoolHeight || connectTip {
				if nHeight < s.chainParams.SpendV15StartBlock {
					log.Info("reused serial inside bug window",
						"height", nHeight, "denomination", d,
						"serial", serial.String())
				} else {
					return vstate.DoS(100, RejectInvalid,
						"the coin spend serial has been used")
				}
			}
		}
	}

	return true
}

// CheckSpendTransaction validates every zerocoin spend input of the
// transaction against the accumulator history of the claimed coin group.
// nHeight is the height the transaction is being connected at, or
// MempoolHeight for mempool admission.
func (s *ZerocoinState) CheckSpendTransaction(chain *Chain, tx *types.Transaction,
	targetDenomination zerocoin.Denomination, vstate *ValidationState,
	hashTx hash.Hash, isVerifyDB bool, nHeight int32, isCheckWallet bool,
	info *ZerocoinTxInfo) bool {

	// Check the inputs only; everything else was checked before.
	log.Debug("checking spend transaction", "denomination", targetDenomination,
		"height", nHeight)

	for _, txin := range tx.TxIn {
		if !types.IsZerocoinSpend(txin.SignScript) {
			continue
		}

		if len(tx.TxIn) > 1 {
			return vstate.DoS(100, RejectMalformed,
				"CheckSpendTransaction: can't have more than one input")
		}

		pubcoinSequence := txin.Sequence
		if pubcoinSequence < 1 || pubcoinSequence >= uint32(math.MaxInt32) {
			// Coin id should be a positive integer.
			return vstate.DoS(100, NSequenceIncorrect,
				"CheckSpendTransaction: zerocoin spend nSequence is incorrect")
		}

		fModulusV2 := pubcoinSequence >= s.chainParams.ModulusV2BaseID
		fModulusV2InIndex := false
		if fModulusV2 {
			pubcoinSequence -= s.chainParams.ModulusV2BaseID
		}
		pubcoinID := int(pubcoinSequence)
		zcParams := zerocoin.SelectParams(fModulusV2)

		if len(txin.SignScript) < 4 {
			return vstate.DoS(100, RejectMalformed,
				"CheckSpendTransaction: invalid spend transaction")
		}

		// Deserialize the spend from the script tail.
		newSpend, err := zerocoin.ParseCoinSpend(zcParams, txin.SignScript[4:])
		if err != nil {
			return vstate.DoS(100, RejectMalformed,
				"CheckSpendTransaction: invalid spend transaction")
		}

		spendVersion := newSpend.Version()
		if spendVersion != zerocoin.ZerocoinTxVersion1 &&
			spendVersion != zerocoin.ZerocoinTxVersion15 &&
			spendVersion != zerocoin.ZerocoinTxVersion2 {
			return vstate.DoS(100, NSequenceIncorrect,
				"CheckSpendTransaction: incorrect spend transaction version")
		}

		if s.chainParams.IsZerocoinTxV2(targetDenomination, pubcoinID) {
			// After the threshold id all spends must be strictly 2.0.
			if spendVersion != zerocoin.ZerocoinTxVersion2 {
				return vstate.DoS(100, NSequenceIncorrect,
					"CheckSpendTransaction: zerocoin spend should be version 2.0")
			}
			fModulusV2InIndex = true
		} else {
			// Old v2.0 spends of pre-threshold groups are probably
			// incorrect, force them to version 1.
			if spendVersion == zerocoin.ZerocoinTxVersion2 {
				spendVersion = zerocoin.ZerocoinTxVersion1
				newSpend.SetVersion(zerocoin.ZerocoinTxVersion1)
			}
		}

		if fModulusV2InIndex != fModulusV2 {
			s.CalculateAlternativeModulusAccumulatorValues(chain,
				targetDenomination, pubcoinID)
		}

		var txHashForMetadata hash.Hash
		if spendVersion > zerocoin.ZerocoinTxVersion1 {
			// Obtain the hash of the transaction sans the zerocoin part.
			txTemp := tx.Clone()
			for _, txTempIn := range txTemp.TxIn {
				if types.IsZerocoinSpend(txTempIn.SignScript) {
					txTempIn.SignScript = nil
					txTempIn.PreviousOut.SetNull()
				}
			}
			txHashForMetadata = txTemp.TxHash()
		}

		log.Debug("spend deserialized", "version", newSpend.Version(),
			"metadataHash", txHashForMetadata.String(),
			"serial", newSpend.CoinSerialNumber().String())

		txHeight := chain.Height()

		if spendVersion == zerocoin.ZerocoinTxVersion1 && nHeight == MempoolHeight {
			allowedV1Height := s.chainParams.SpendV15StartBlock
			if txHeight >= allowedV1Height+s.chainParams.V15GracefulMempoolPeriod {
				log.Warn("cannot allow spend v1 into mempool",
					"after", allowedV1Height+s.chainParams.V15GracefulMempoolPeriod)
				return false
			}
		}

		// Test whether the declared modulus generation is allowed at this
		// point.
		if fModulusV2 {
			if (nHeight == MempoolHeight && txHeight < s.chainParams.ModulusV2StartBlock) ||
				nHeight < s.chainParams.ModulusV2StartBlock {
				return vstate.DoS(100, NSequenceIncorrect,
					"CheckSpendTransaction: cannot use modulus v2 at this point")
			}
		} else {
			if (nHeight == MempoolHeight && txHeight >= s.chainParams.ModulusV1MempoolStopBlock) ||
				(nHeight != MempoolHeight && nHeight >= s.chainParams.ModulusV1StopBlock) {
				return vstate.DoS(100, NSequenceIncorrect,
					"CheckSpendTransaction: cannot use modulus v1 at this point")
			}
		}

		newMetadata := &zerocoin.SpendMetaData{
			AccumulatorID: txin.Sequence,
			TxHash:        txHashForMetadata,
		}

		coinGroup, ok := s.GetCoinGroupInfo(targetDenomination, pubcoinID)
		if !ok {
			return vstate.DoS(100, NoMintZerocoin,
				"CheckSpendTransaction: no coins were minted with such parameters")
		}

		passVerify := false
		index := coinGroup.LastBlock
		key := CoinKey{Denomination: targetDenomination, ID: pubcoinID}

		// A v1.5/v2 spend can carry the hash of the last mint block seen
		// at the moment of spend, which pins verification to exactly that
		// block.
		spendHasBlockHash := false
		accumulatorBlockHashCandidate := newSpend.AccumulatorBlockHash()
		if spendVersion > zerocoin.ZerocoinTxVersion1 &&
			!accumulatorBlockHashCandidate.IsNull() {
			spendHasBlockHash = true
			accumulatorBlockHash := accumulatorBlockHashCandidate
			for index != coinGroup.FirstBlock && index.Hash() != accumulatorBlockHash {
				index = index.Prev()
			}
		}

		useAlternative := fModulusV2 != fModulusV2InIndex

		// Enumerate the accumulator changes seen in the chain starting
		// with the latest block; in most cases the latest value verifies.
		for {
			if change, ok := accChangesOf(index, useAlternative)[key]; ok {
				accumulator := zerocoin.NewAccumulatorWithValue(zcParams,
					change.Value, targetDenomination)
				log.Trace("trying accumulator", "height", index.Height())
				passVerify = newSpend.Verify(accumulator, newMetadata)
			}

			// With a pinned block hash there is no need to look further.
			if index == coinGroup.FirstBlock || spendHasBlockHash {
				break
			}
			index = index.Prev()
			if passVerify {
				break
			}
		}

		// Rare case: the accumulator value contains some but not all coins
		// from one block, so enumerate over the coins manually.  This
		// cannot happen for v1.5/v2 spends; no optimization is needed as
		// it is a rarity.
		if !passVerify && spendVersion == zerocoin.ZerocoinTxVersion1 {
			// Build the group's coins sorted by the time of mint.
			index = coinGroup.LastBlock
			pubCoins := append([]*big.Int(nil), index.MintedPubCoins[key]...)
			if index != coinGroup.FirstBlock {
				for {
					index = index.Prev()
					if coins, ok := index.MintedPubCoins[key]; ok {
						pubCoins = append(append([]*big.Int(nil), coins...), pubCoins...)
					}
					if index == coinGroup.FirstBlock {
						break
					}
				}
			}

			accumulator := zerocoin.NewAccumulator(zcParams, targetDenomination)
			for _, coin := range pubCoins {
				accumulator.Accumulate(zerocoin.NewPublicCoin(zcParams, coin, targetDenomination)) //nolint:errcheck
				if passVerify = newSpend.Verify(accumulator, newMetadata); passVerify {
					break
				}
			}

			if !passVerify {
				// One more time, now in the reverse direction.  The only
				// reason this is required is compatibility with previous
				// client versions.
				accumulator = zerocoin.NewAccumulator(zcParams, targetDenomination)
				for i := len(pubCoins) - 1; i >= 0; i-- {
					accumulator.Accumulate(zerocoin.NewPublicCoin(zcParams, pubCoins[i], targetDenomination)) //nolint:errcheck
					if passVerify = newSpend.Verify(accumulator, newMetadata); passVerify {
						break
					}
				}
			}
		}

		if !passVerify {
			log.Debug("spend verification failed", "height", nHeight)
			return false
		}

		serial := newSpend.CoinSerialNumber()
		// Do not check for duplicates in case an exact copy of this
		// transaction was already seen in this block.
		if !(info != nil && info.ZcTransactions.Contains(hashTx)) {
			if !s.CheckSpendSerial(vstate, info, newSpend.Denomination(),
				serial, nHeight, false) {
				return false
			}
		}

		if !isVerifyDB && !isCheckWallet {
			if info != nil && !info.IsComplete {
				// Add spend information to the block index.
				info.PutSpentSerial(serial, newSpend.Denomination())
				info.ZcTransactions.Add(hashTx)

				if newSpend.Version() == zerocoin.ZerocoinTxVersion1 {
					info.HasSpendV1 = true
				}
			}
		}
	}

	return true
}

// CheckMintTransaction validates a zerocoin mint output: the script layout,
// the denomination and the public coin commitment.  Duplicate mints are
// logged but tolerated for historical compatibility.
func (s *ZerocoinState) CheckMintTransaction(txout *types.TxOutput,
	vstate *ValidationState, hashTx hash.Hash, info *ZerocoinTxInfo) bool {

	if len(txout.PkScript) < 6 {
		return vstate.DoS(100, PubcoinNotValidate,
			"CheckMintTransaction: pubcoin validation failed")
	}

	pubCoin := new(big.Int).SetBytes(txout.PkScript[6:])

	hasCoin := s.HasCoin(pubCoin)
	if !hasCoin && info != nil && !info.IsComplete {
		for _, mint := range info.Mints {
			if mint.PubCoin.Cmp(pubCoin) == 0 {
				hasCoin = true
				break
			}
		}
	}

	if hasCoin {
		// Historic blocks contain duplicates; flag but do not reject.
		log.Info("double mint", "tx", hashTx.String())
	}

	d := zerocoin.Denomination(int64(txout.Amount) / types.COIN)
	if !d.Valid() || int64(txout.Amount)%types.COIN != 0 {
		return vstate.DoS(100, PubcoinNotValidate,
			"CheckMintTransaction: pubcoin denomination is invalid")
	}

	checkPubCoin := zerocoin.NewPublicCoin(zerocoin.DefaultParamsV2, pubCoin, d)
	if !checkPubCoin.Validate() {
		return vstate.DoS(100, PubcoinNotValidate,
			"CheckMintTransaction: pubcoin validation failed")
	}

	if info != nil && !info.IsComplete {
		// Update the public coin list in the info.
		info.Mints = append(info.Mints, MintEntry{
			Denomination: d,
			PubCoin:      pubCoin,
		})
		info.ZcTransactions.Add(hashTx)
	}

	return true
}

// CheckZerocoinTransaction runs the mint validator on every mint-shaped
// output and the spend validator once per output denomination of a spend
// transaction.
func (s *ZerocoinState) CheckZerocoinTransaction(chain *Chain, tx *types.Transaction,
	vstate *ValidationState, hashTx hash.Hash, isVerifyDB bool, nHeight int32,
	isCheckWallet bool, info *ZerocoinTxInfo) bool {

	for _, txout := range tx.TxOut {
		if types.IsZerocoinMint(txout.PkScript) {
			if !s.CheckMintTransaction(txout, vstate, hashTx, info) {
				return false
			}
		}
	}

	if tx.IsZerocoinSpend() {
		for _, txout := range tx.TxOut {
			if isVerifyDB {
				continue
			}
			d := zerocoin.Denomination(int64(txout.Amount) / types.COIN)
			if !d.Valid() || int64(txout.Amount)%types.COIN != 0 {
				return vstate.DoS(100, RejectInvalid,
					"CheckZerocoinTransaction: invalid spending txout value")
			}
			if !s.CheckSpendTransaction(chain, tx, d, vstate, hashTx,
				isVerifyDB, nHeight, isCheckWallet, info) {
				return false
			}
		}
	}

	return true
}

// founderScript builds the P2PKH script for a founders address constant.
func founderScript(addr string, par *params.Params) []byte {
	payload, version, err := base58.CheckDecode(addr)
	if err != nil || version != par.PubKeyHashAddrID || len(payload) != 20 {
		panic(AssertError("invalid founder address constant"))
	}
	return types.PayToPubKeyHashScript(payload)
}

// CheckZerocoinFoundersInputs enforces the fixed founders reward above the
// fee-check fork: at least one output paying each founder its amount, and at
// most two outputs matching the bznode payment.  Further outputs paying a
// founder its amount are not rejected.
func CheckZerocoinFoundersInputs(tx *types.Transaction, vstate *ValidationState,
	par *params.Params, nHeight int32) bool {

	if nHeight <= par.HFFeeCheck {
		return true
	}

	founder1Script := founderScript(par.Founder1Address, par)
	founder2Script := founderScript(par.Founder2Address, par)
	bznodePayment := par.GetBznodePayment(nHeight)

	found1 := false
	found2 := false
	totalPaymentTx := 0
	for _, out := range tx.TxOut {
		if out.Amount == par.Founder1Amount && bytes.Equal(out.PkScript, founder1Script) {
			found1 = true
			continue
		}
		if out.Amount == par.Founder2Amount && bytes.Equal(out.PkScript, founder2Script) {
			found2 = true
			continue
		}
		if out.Amount == bznodePayment {
			totalPaymentTx++
		}
	}

	if !found1 || !found2 {
		return vstate.DoS(100, RejectFounderRewardMissing,
			"CheckZerocoinFoundersInputs: founders reward missing")
	}
	if totalPaymentTx > 2 {
		return vstate.DoS(100, RejectInvalidBznodePayment,
			"CheckZerocoinFoundersInputs: invalid bznode payment")
	}

	return true
}

// ConnectBlockZC applies a block's zerocoin effects: the duplicate-serial
// rules and spend-v1 cutoff are enforced, then the block's mints are fed
// through the state and the block index maps are updated in place.  With
// justCheck set only the checks run; nothing is mutated.  A nil info means
// the block is being replayed from a fully populated index.
func (s *ZerocoinState) ConnectBlockZC(vstate *ValidationState, index *BlockIndex,
	info *ZerocoinTxInfo, justCheck bool) bool {

	if info != nil {
		if info.HasSpendV1 {
			// Don't allow v1 spends after the graceful period.
			allowV1Height := s.chainParams.SpendV15StartBlock
			if index.Height() >= allowV1Height+s.chainParams.V15GracefulPeriod {
				log.Warn("spend v1 is not allowed", "afterBlock", allowV1Height)
				return false
			}
		}

		if !justCheck {
			index.SpentSerials = zerocoin.NewSerialSet()
		}

		if index.Height() > s.chainParams.CheckBugFixedAtBlock {
			for _, entry := range info.SpentSerialEntries() {
				if !s.CheckSpendSerial(vstate, info, entry.Denomination,
					entry.Serial, index.Height(), true) {
					return false
				}

				if !justCheck {
					index.SpentSerials.Add(entry.Serial)
					s.AddSpend(entry.Serial)
				}
			}
		}

		if justCheck {
			return true
		}

		// Update the minted values and accumulators.
		for _, mint := range info.Mints {
			mintID, oldAccValue := s.AddMint(index, mint.Denomination, mint.PubCoin)

			zcParams := s.chainParams.ZerocoinParams(mint.Denomination, mintID)
			if oldAccValue == nil {
				oldAccValue = zcParams.AccumulatorBase
			}

			log.Debug("mint added", "denomination", mint.Denomination, "id", mintID)
			key := CoinKey{Denomination: mint.Denomination, ID: mintID}

			index.MintedPubCoins[key] = append(index.MintedPubCoins[key],
				new(big.Int).Set(mint.PubCoin))

			accumulator := zerocoin.NewAccumulatorWithValue(zcParams, oldAccValue,
				mint.Denomination)
			accumulator.Accumulate(zerocoin.NewPublicCoin(zcParams, mint.PubCoin,
				mint.Denomination)) //nolint:errcheck

			if change, ok := index.AccumulatorChanges[key]; ok {
				change.Value = new(big.Int).Set(accumulator.Value())
				change.Count++
			} else {
				index.AccumulatorChanges[key] = &AccChange{
					Value: new(big.Int).Set(accumulator.Value()),
					Count: 1,
				}
			}
			// Invalidate the alternative accumulator value for this
			// lineage.
			delete(index.AlternativeAccumulatorChanges, key)
		}
	} else if !justCheck {
		s.AddBlock(index)
	}

	return true
}

// DisconnectBlockZC reverts a block's zerocoin effects on reorg.
func (s *ZerocoinState) DisconnectBlockZC(index *BlockIndex) {
	s.RemoveBlock(index)
}

// ZerocoinGetSpendSerialNumber extracts the serial a spend transaction
// consumes, or zero when the transaction is not a well-formed spend.
func ZerocoinGetSpendSerialNumber(tx *types.Transaction, par *params.Params) *big.Int {
	if !tx.IsZerocoinSpend() || len(tx.TxIn) != 1 {
		return big.NewInt(0)
	}

	txin := tx.TxIn[0]
	if len(txin.SignScript) < 4 {
		return big.NewInt(0)
	}

	zcParams := zerocoin.SelectParams(txin.Sequence >= par.ModulusV2BaseID)
	spend, err := zerocoin.ParseCoinSpend(zcParams, txin.SignScript[4:])
	if err != nil {
		return big.NewInt(0)
	}
	return spend.CoinSerialNumber()
}

// ZerocoinGetNHeight returns the height a block with the given header would
// connect at, or zero when its parent is not on the chain.
func ZerocoinGetNHeight(header *types.BlockHeader, chain *Chain) int32 {
	for block := chain.Tip(); block != nil; block = block.Prev() {
		if block.Hash() == header.PrevBlock {
			return block.Height() + 1
		}
	}
	return 0
}
