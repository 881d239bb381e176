// Copyright (c) 2017-2018 The bzx developers

package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoubleHash(t *testing.T) {
	// Double SHA-256 of the empty string, in the usual byte-reversed
	// display order.
	h := DoubleHashH(nil)
	assert.Equal(t, "56944c5d3f98413ef45cf54545538103cc9f298e0575820ad3591376e2e0f65d",
		h.String())

	assert.Equal(t, DoubleHashB(nil), h.CloneBytes())
}

func TestHashStringRoundTrip(t *testing.T) {
	s := "322bad477efb4b33fa4b1f0b2861eaf543c61068da9898a95062fdb02ada486f"
	h, err := NewHashFromStr(s)
	require.NoError(t, err)
	assert.Equal(t, s, h.String())
}

func TestNewHashLength(t *testing.T) {
	_, err := NewHash(make([]byte, 31))
	assert.Error(t, err)
	_, err = NewHash(make([]byte, 32))
	assert.NoError(t, err)
}

func TestHashIsNull(t *testing.T) {
	var h Hash
	assert.True(t, h.IsNull())
	h[0] = 1
	assert.False(t, h.IsNull())
}
