// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"math/big"

	"github.com/pkg/errors"
)

// Accumulator is an order-insensitive commitment to a set of public coins
// under a fixed parameter set: adding a coin raises the current value to
// the coin's commitment modulo the trusted modulus.
type Accumulator struct {
	params       *Params
	value        *big.Int
	denomination Denomination
}

// NewAccumulator returns an empty accumulator (the identity value) for the
// given denomination.
func NewAccumulator(params *Params, d Denomination) *Accumulator {
	return &Accumulator{
		params:       params,
		value:        new(big.Int).Set(params.AccumulatorBase),
		denomination: d,
	}
}

// NewAccumulatorWithValue resumes an accumulator from a previously computed
// value.
func NewAccumulatorWithValue(params *Params, value *big.Int, d Denomination) *Accumulator {
	return &Accumulator{
		params:       params,
		value:        new(big.Int).Set(value),
		denomination: d,
	}
}

// Value returns the current accumulator value.
func (a *Accumulator) Value() *big.Int {
	return a.value
}

// Denomination returns the denomination the accumulator commits to.
func (a *Accumulator) Denomination() Denomination {
	return a.denomination
}

// Accumulate adds a public coin to the accumulator.  Coins of a foreign
// denomination are rejected; accumulation order does not affect the final
// value.
func (a *Accumulator) Accumulate(coin *PublicCoin) error {
	if coin.denomination != a.denomination {
		return errors.Errorf("cannot accumulate denomination %d into accumulator of %d",
			coin.denomination, a.denomination)
	}
	a.value.Exp(a.value, coin.value, a.params.Modulus)
	return nil
}

// Copy returns an independent copy of the accumulator.
func (a *Accumulator) Copy() *Accumulator {
	return NewAccumulatorWithValue(a.params, a.value, a.denomination)
}

// AccumulatorWitness proves that one particular coin is a member of an
// accumulator: it is the accumulation of every member except the coin
// itself.
type AccumulatorWitness struct {
	witness *Accumulator
	coin    *PublicCoin
}

// NewAccumulatorWitness builds a witness from a pre-seeded accumulator and
// the coin being proven.
func NewAccumulatorWitness(witness *Accumulator, coin *PublicCoin) *AccumulatorWitness {
	return &AccumulatorWitness{witness: witness, coin: coin}
}

// AddElement folds another member coin into the witness.
func (w *AccumulatorWitness) AddElement(coin *PublicCoin) error {
	return w.witness.Accumulate(coin)
}

// Value returns the current witness value.
func (w *AccumulatorWitness) Value() *big.Int {
	return w.witness.value
}

// Coin returns the coin the witness vouches for.
func (w *AccumulatorWitness) Coin() *PublicCoin {
	return w.coin
}

// Verify checks the witness against a full accumulator: the witness with
// the proven coin added must equal the accumulator.
func (w *AccumulatorWitness) Verify(acc *Accumulator) bool {
	if acc.denomination != w.witness.denomination {
		return false
	}
	full := w.witness.Copy()
	if err := full.Accumulate(w.coin); err != nil {
		return false
	}
	return full.value.Cmp(acc.value) == 0
}
