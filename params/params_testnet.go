// Copyright (c) 2017-2018 The bzx developers

package params

import (
	"github.com/bzxproject/bzxd/core/types"
	"github.com/bzxproject/bzxd/zerocoin"
)

// TestNetParams defines the network parameters for the test network.  The
// schedule mirrors mainnet; only the identity and ports differ.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         0x627a7874, // "bzxt"
	DefaultPort: "39301",

	GenesisBlock: mainNetGenesisBlock,
	GenesisHash:  mainNetGenesisHash,

	PowLimit:          mainPowLimit,
	PowLimitBits:      0x1f0fffff,
	PowTargetTimespan: 150,
	PowTargetSpacing:  150,

	HFForkEnd:  HFForkEnd,
	HFForkDGW:  HFForkDGW,
	HFFeeCheck: HFFeeCheck,

	CheckBugFixedAtBlock:      ZCCheckBugFixedAtBlock,
	SpendV15StartBlock:        ZCSpendV15StartBlock,
	V15GracefulPeriod:         ZCV15GracefulPeriod,
	V15GracefulMempoolPeriod:  ZCV15GracefulMempoolPeriod,
	ModulusV2StartBlock:       ZCModulusV2StartBlock,
	ModulusV1MempoolStopBlock: ZCModulusV1MempoolStopBlock,
	ModulusV1StopBlock:        ZCModulusV1StopBlock,
	ModulusV2BaseID:           ZCModulusV2BaseID,

	SpendV2IDs: map[zerocoin.Denomination]int{
		zerocoin.ZQLovelace:   ZCV2SwitchID1,
		zerocoin.ZQGoldwasser: ZCV2SwitchID10,
		zerocoin.ZQRackoff:    ZCV2SwitchID25,
		zerocoin.ZQPedersen:   ZCV2SwitchID50,
		zerocoin.ZQWilliamson: ZCV2SwitchID100,
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
