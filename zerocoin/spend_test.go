// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzxproject/bzxd/common/hash"
)

func TestCoinSpendSerializeRoundTrip(t *testing.T) {
	serial := new(big.Int).Lsh(big.NewInt(0x1234567), 200)
	blockHash := hash.DoubleHashH([]byte("block"))
	meta := &SpendMetaData{AccumulatorID: 1001, TxHash: hash.DoubleHashH([]byte("tx"))}

	spend := NewSignedSpend(DefaultParamsV2, ZerocoinTxVersion2, ZQPedersen,
		serial, big.NewInt(12345), blockHash, meta)

	decoded, err := ParseCoinSpend(DefaultParamsV2, spend.Serialize())
	require.NoError(t, err)

	assert.Equal(t, ZerocoinTxVersion2, decoded.Version())
	assert.Equal(t, ZQPedersen, decoded.Denomination())
	assert.Equal(t, 0, decoded.CoinSerialNumber().Cmp(serial))
	assert.Equal(t, blockHash, decoded.AccumulatorBlockHash())

	acc := NewAccumulatorWithValue(DefaultParamsV2, big.NewInt(12345), ZQPedersen)
	assert.True(t, decoded.Verify(acc, meta))
}

func TestCoinSpendVerifyRejectsWrongContext(t *testing.T) {
	serial := big.NewInt(987654321)
	meta := &SpendMetaData{AccumulatorID: 7, TxHash: hash.DoubleHashH([]byte("a"))}
	spend := NewSignedSpend(DefaultParams, ZerocoinTxVersion2, ZQLovelace,
		serial, big.NewInt(1000), hash.ZeroHash, meta)

	// Wrong accumulator value.
	wrongAcc := NewAccumulatorWithValue(DefaultParams, big.NewInt(1001), ZQLovelace)
	assert.False(t, spend.Verify(wrongAcc, meta))

	// Wrong metadata.
	acc := NewAccumulatorWithValue(DefaultParams, big.NewInt(1000), ZQLovelace)
	otherMeta := &SpendMetaData{AccumulatorID: 8, TxHash: meta.TxHash}
	assert.False(t, spend.Verify(acc, otherMeta))

	// Wrong denomination.
	accOther := NewAccumulatorWithValue(DefaultParams, big.NewInt(1000), ZQGoldwasser)
	assert.False(t, spend.Verify(accOther, meta))

	assert.True(t, spend.Verify(acc, meta))
}

func TestCoinSpendVersion1IgnoresMetadata(t *testing.T) {
	serial := big.NewInt(555)
	spend := NewSignedSpend(DefaultParams, ZerocoinTxVersion1, ZQLovelace,
		serial, big.NewInt(4242), hash.ZeroHash, nil)

	acc := NewAccumulatorWithValue(DefaultParams, big.NewInt(4242), ZQLovelace)
	meta := &SpendMetaData{AccumulatorID: 1, TxHash: hash.DoubleHashH([]byte("x"))}
	assert.True(t, spend.Verify(acc, meta))
	assert.True(t, spend.Verify(acc, nil))
}

func TestParseCoinSpendMalformed(t *testing.T) {
	_, err := ParseCoinSpend(DefaultParams, nil)
	assert.Equal(t, ErrSpendMalformed, err)

	_, err = ParseCoinSpend(DefaultParams, []byte{0x01, 0x02})
	assert.Equal(t, ErrSpendMalformed, err)

	spend := NewSignedSpend(DefaultParams, ZerocoinTxVersion1, ZQLovelace,
		big.NewInt(1), big.NewInt(2), hash.ZeroHash, nil)
	serialized := spend.Serialize()

	// Truncated payload.
	_, err = ParseCoinSpend(DefaultParams, serialized[:len(serialized)-1])
	assert.Equal(t, ErrSpendMalformed, err)

	// Trailing junk.
	_, err = ParseCoinSpend(DefaultParams, append(serialized, 0x00))
	assert.Equal(t, ErrSpendMalformed, err)
}
