// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"math/big"
)

// PublicCoin is the public commitment to a minted coin.  The commitment
// value is opaque to the consensus layer; validity is judged against the
// parameter set the coin was minted under.
type PublicCoin struct {
	params       *Params
	value        *big.Int
	denomination Denomination
}

// NewPublicCoin constructs a public coin from its commitment value under
// the given parameter set.
func NewPublicCoin(params *Params, value *big.Int, d Denomination) *PublicCoin {
	return &PublicCoin{
		params:       params,
		value:        new(big.Int).Set(value),
		denomination: d,
	}
}

// Value returns the commitment value.
func (c *PublicCoin) Value() *big.Int {
	return c.value
}

// Denomination returns the coin denomination.
func (c *PublicCoin) Denomination() Denomination {
	return c.denomination
}

// Validate checks that the commitment is well formed under the coin's
// parameter set: a legal denomination and a commitment value inside the
// multiplicative group of the modulus.
func (c *PublicCoin) Validate() bool {
	if !c.denomination.Valid() {
		return false
	}
	if c.value.Sign() <= 0 || c.value.Cmp(bigOne) == 0 {
		return false
	}
	if c.value.Cmp(c.params.Modulus) >= 0 {
		return false
	}
	return true
}

var bigOne = big.NewInt(1)
