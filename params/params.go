// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"math/big"

	"github.com/bzxproject/bzxd/common/hash"
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/zerocoin"
)

// Params defines a bzx network by its parameters.  These parameters may be
// used by applications to differentiate networks as well as addresses and
// keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net uint32

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *types.Block

	// GenesisHash is the starting block hash.
	GenesisHash hash.Hash

	// PowLimit defines the highest allowed proof of work value for a
	// block as a uint256.
	PowLimit *big.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// PowTargetTimespan is the retarget window in seconds for the legacy
	// retargeter.
	PowTargetTimespan int64

	// PowTargetSpacing is the desired interval between blocks in seconds.
	PowTargetSpacing int64

	// Hard fork heights; see zerocoin_params.go for the mainnet values.
	HFForkEnd  int32
	HFForkDGW  int32
	HFFeeCheck int32

	// Zerocoin activation schedule.
	CheckBugFixedAtBlock      int32
	SpendV15StartBlock        int32
	V15GracefulPeriod         int32
	V15GracefulMempoolPeriod  int32
	ModulusV2StartBlock       int32
	ModulusV1MempoolStopBlock int32
	ModulusV1StopBlock        int32
	ModulusV2BaseID           uint32

	// SpendV2IDs maps each denomination to the first group id whose
	// native modulus is v2.
	SpendV2IDs map[zerocoin.Denomination]int

	// Coins per accumulator group for each parameter generation.
	SpendV1CoinsPerID int
	SpendV2CoinsPerID int

	// Founders reward distribution, enforced above HFFeeCheck.
	Founder1Address string
	Founder2Address string
	Founder1Amount  types.Amount
	Founder2Amount  types.Amount

	// BznodePaymentAmount is the per-block bznode payment above
	// HFFeeCheck.
	BznodePaymentAmount types.Amount

	// Address encoding magics.
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
}

// IsZerocoinTxV2 reports whether the native modulus for the given
// denomination and group id is the v2 parameter set.
func (p *Params) IsZerocoinTxV2(d zerocoin.Denomination, id int) bool {
	switchID, ok := p.SpendV2IDs[d]
	if !ok {
		return false
	}
	return id >= switchID
}

// CoinsPerID returns the group capacity for the given denomination and id.
func (p *Params) CoinsPerID(d zerocoin.Denomination, id int) int {
	if p.IsZerocoinTxV2(d, id) {
		return p.SpendV2CoinsPerID
	}
	return p.SpendV1CoinsPerID
}

// ZerocoinParams returns the cryptographic parameter set native to the
// given denomination and group id.
func (p *Params) ZerocoinParams(d zerocoin.Denomination, id int) *zerocoin.Params {
	return zerocoin.SelectParams(p.IsZerocoinTxV2(d, id))
}

// GetBznodePayment returns the bznode payment amount at the given height.
func (p *Params) GetBznodePayment(height int32) types.Amount {
	if height <= p.HFFeeCheck {
		return 0
	}
	return p.BznodePaymentAmount
}
