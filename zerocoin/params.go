// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"math/big"
)

// modulusV1Hex and modulusV2Hex are the trusted moduli the two parameter
// sets operate over.  The chain committed to these values at launch; they
// must never change.
const (
	modulusV1Hex = "9c713b07bde1ce1a7ac7d5752ad8037ad7f2de78c8243c65bae9b23fcdb76abc" +
		"3fcec43980a3754125fe3f15dfbe93e122b2be534910c3ec3e498559699ff08b" +
		"2d8ebc689bd1feb8383698c876da0be433b50338c1f768a9329b37982ab03d1f" +
		"c3eb5151c593450caa7c00baf2be44bae0d5e5b54f92ac66ef6464c9695b4719"

	modulusV2Hex = "864fffd2be9a8124542dfb3b9c8b4e3bf7416e92bf59dbc9219ad5cf2aa99758" +
		"43362b408ac0717f08fb461da0845008ae3091aee1cb70819463f1ad3a270adb" +
		"0438c5d61250a3a04ec1617acd161ea088bc61bdc9ff20ae0bebb4a81449679a" +
		"c8bfba2ccb8699f714b001a7456e867229f48cbd166ea733844236234e862f61"
)

// accumulatorBase is the starting value of every accumulator lineage.
const accumulatorBase = 961

// Params holds one cryptographic parameter set: the trusted modulus and the
// accumulator starting point.
type Params struct {
	// Modulus is the trusted RSA modulus all accumulator arithmetic is
	// performed under.
	Modulus *big.Int

	// AccumulatorBase is the identity value an empty accumulator starts
	// from.
	AccumulatorBase *big.Int
}

var (
	// DefaultParams is the original ("modulus v1") parameter set.
	DefaultParams = newParams(modulusV1Hex)

	// DefaultParamsV2 is the second-generation ("modulus v2") parameter
	// set the chain migrated to.
	DefaultParamsV2 = newParams(modulusV2Hex)
)

func newParams(modHex string) *Params {
	mod, ok := new(big.Int).SetString(modHex, 16)
	if !ok {
		panic("zerocoin: invalid modulus constant")
	}
	return &Params{
		Modulus:         mod,
		AccumulatorBase: big.NewInt(accumulatorBase),
	}
}

// SelectParams returns the parameter set for the given modulus generation.
func SelectParams(useModulusV2 bool) *Params {
	if useModulusV2 {
		return DefaultParamsV2
	}
	return DefaultParams
}
