// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bzxproject/bzxd/common/hash"
)

func TestBigNumBucketWindow(t *testing.T) {
	// 32-byte value with a recognizable little-endian layout.
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	// raw is big-endian input for SetBytes; little-endian offset 8 holds
	// bytes raw[23] down to raw[16].
	bn := new(big.Int).SetBytes(raw)

	var le [8]byte
	for i := 0; i < 8; i++ {
		le[i] = raw[len(raw)-9-i]
	}
	assert.Equal(t, binary.LittleEndian.Uint64(le[:]), BigNumBucket(bn))
}

func TestBigNumBucketShortValues(t *testing.T) {
	// Values shorter than 24 bytes all collapse into bucket 0.
	assert.Equal(t, uint64(0), BigNumBucket(big.NewInt(1)))
	short := new(big.Int).Lsh(big.NewInt(1), 183) // 23 bytes
	assert.Equal(t, uint64(0), BigNumBucket(short))
	long := new(big.Int).Lsh(big.NewInt(1), 191) // 24 bytes
	long.SetBit(long, 64, 1)                     // little-endian byte 8, inside the window
	assert.NotEqual(t, uint64(0), BigNumBucket(long))
}

func TestSerialSet(t *testing.T) {
	s := NewSerialSet()
	a := new(big.Int).Lsh(big.NewInt(7), 200)
	b := new(big.Int).Lsh(big.NewInt(9), 200)

	assert.True(t, s.Add(a))
	assert.False(t, s.Add(a))
	assert.True(t, s.Add(b))
	assert.Equal(t, 2, s.Size())
	assert.True(t, s.Has(a))

	// Short values collide into bucket 0 but remain distinct members.
	assert.True(t, s.Add(big.NewInt(1)))
	assert.True(t, s.Add(big.NewInt(2)))
	assert.True(t, s.Has(big.NewInt(1)))
	assert.True(t, s.Has(big.NewInt(2)))

	s.Remove(a)
	assert.False(t, s.Has(a))
	assert.Equal(t, 3, s.Size())

	serials := s.Serials()
	require.Len(t, serials, 3)
	for i := 1; i < len(serials); i++ {
		assert.True(t, serials[i-1].Cmp(serials[i]) < 0)
	}
}

func TestSerialSetEqual(t *testing.T) {
	a := NewSerialSet()
	b := NewSerialSet()
	v := new(big.Int).Lsh(big.NewInt(3), 250)

	a.Add(v)
	assert.False(t, a.Equal(b))
	b.Add(v)
	assert.True(t, a.Equal(b))
}

func TestSerialMap(t *testing.T) {
	m := NewSerialMap()
	serial := new(big.Int).Lsh(big.NewInt(5), 220)
	txHash := hash.DoubleHashH([]byte("tx"))

	assert.False(t, m.Has(serial))
	m.Put(serial, txHash)
	got, ok := m.Get(serial)
	require.True(t, ok)
	assert.Equal(t, txHash, got)
	assert.Equal(t, 1, m.Size())

	// Overwrite keeps a single entry.
	other := hash.DoubleHashH([]byte("tx2"))
	m.Put(serial, other)
	got, _ = m.Get(serial)
	assert.Equal(t, other, got)
	assert.Equal(t, 1, m.Size())

	m.Delete(serial)
	assert.False(t, m.Has(serial))
	assert.Equal(t, 0, m.Size())
}
