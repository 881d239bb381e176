// Copyright (c) 2017-2018 The bzx developers

package params

// Zerocoin consensus constants.  These mirror the chain's launch-time
// parameter header; the wire/consensus values must never change.
const (
	// ZCCheckBugFixedAtBlock is the height above which duplicate-serial
	// checking applies.  At or below it spent serials are neither checked
	// nor recorded; above it, reuse of an on-chain serial is logged only
	// until ZCSpendV15StartBlock and rejected from then on.
	ZCCheckBugFixedAtBlock = 23000

	// ZCSpendV15StartBlock is the height the v1.5 spend format activated.
	ZCSpendV15StartBlock = 48000

	// ZCV15GracefulPeriod is the number of blocks after the v1.5 start
	// during which v1 spends are still accepted into blocks.
	ZCV15GracefulPeriod = 10000

	// ZCV15GracefulMempoolPeriod is the number of blocks after the v1.5
	// start during which v1 spends are still admitted to the mempool.
	ZCV15GracefulMempoolPeriod = 5000

	// ZCModulusV2StartBlock is the height modulus-v2 spends become valid.
	ZCModulusV2StartBlock = 89300

	// ZCModulusV1MempoolStopBlock is the height from which modulus-v1
	// spends are no longer admitted to the mempool.
	ZCModulusV1MempoolStopBlock = 89500

	// ZCModulusV1StopBlock is the height from which modulus-v1 spends
	// are no longer valid in blocks.
	ZCModulusV1StopBlock = 89800

	// ZCModulusV2BaseID is the offset added to a spend's accumulator id
	// to declare the modulus-v2 parameter set.
	ZCModulusV2BaseID = 1000

	// ZCSpendV1CoinsPerID and ZCSpendV2CoinsPerID cap the number of mints
	// per accumulator group for each parameter generation.  Mints in the
	// same block always share a group, so a group may exceed the cap.
	ZCSpendV1CoinsPerID = 10
	ZCSpendV2CoinsPerID = 15

	// Per-denomination group ids at which the native modulus switches to
	// v2.
	ZCV2SwitchID1   = 2
	ZCV2SwitchID10  = 2
	ZCV2SwitchID25  = 2
	ZCV2SwitchID50  = 1
	ZCV2SwitchID100 = 2
)

// Hard fork heights.
const (
	// HFForkEnd is the last height of the genesis-era fixed difficulty.
	HFForkEnd = 500

	// HFForkDGW is the height above which Dark Gravity Wave retargeting
	// applies; between HFForkEnd and here the legacy three-block retarget
	// is used.
	HFForkDGW = 2000

	// HFFeeCheck is the height above which the founders reward and
	// bznode payment rules are enforced.
	HFFeeCheck = 2100
)
