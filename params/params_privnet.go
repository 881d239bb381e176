// Copyright (c) 2017-2018 The bzx developers

package params

import (
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/zerocoin"
)

// PrivNetParams defines the network parameters for the private test
// network.  The activation schedule is compressed so that every consensus
// regime is reachable within a few hundred blocks.
var PrivNetParams = Params{
	Name:        "privnet",
	Net:         0x627a7872, // "bzxr"
	DefaultPort: "49301",

	GenesisBlock: mainNetGenesisBlock,
	GenesisHash:  mainNetGenesisHash,

	PowLimit:          mainPowLimit,
	PowLimitBits:      0x1f0fffff,
	PowTargetTimespan: 150,
	PowTargetSpacing:  150,

	HFForkEnd:  10,
	HFForkDGW:  40,
	HFFeeCheck: 60,

	CheckBugFixedAtBlock:      80,
	SpendV15StartBlock:        100,
	V15GracefulPeriod:         20,
	V15GracefulMempoolPeriod:  10,
	ModulusV2StartBlock:       150,
	ModulusV1MempoolStopBlock: 160,
	ModulusV1StopBlock:        170,
	ModulusV2BaseID:           ZCModulusV2BaseID,

	SpendV2IDs: map[zerocoin.Denomination]int{
		zerocoin.ZQLovelace:   2,
		zerocoin.ZQGoldwasser: 2,
		zerocoin.ZQRackoff:    2,
		zerocoin.ZQPedersen:   1,
		zerocoin.ZQWilliamson: 2,
	},
	SpendV1CoinsPerID: ZCSpendV1CoinsPerID,
	SpendV2CoinsPerID: ZCSpendV2CoinsPerID,

	Founder1Address: "XWfdnGbXnBxeegrPJEvnYaNuwf6DXCruMX",
	Founder2Address: "XQ4WEZTFP83gVhhLBKavwopz7U84JucR8w",
	Founder1Amount:  types.Amount(75 * types.COIN / 10),
	Founder2Amount:  types.Amount(15 * types.COIN / 10),

	BznodePaymentAmount: types.Amount(6 * types.COIN),

	PubKeyHashAddrID: 75,
	ScriptHashAddrID: 34,
}
