// Copyright (c) 2017-2018 The bzx developers

package base58

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase58RoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x00, 0x00, 0x01},
		{0x61},
		[]byte("Hello World"),
		{0xff, 0xfe, 0xfd},
	}
	for _, tc := range cases {
		encoded := Encode(tc)
		assert.True(t, bytes.Equal(tc, Decode(encoded)), "case %x", tc)
	}
}

func TestDecodeInvalidCharacter(t *testing.T) {
	// '0' and 'l' are not in the alphabet.
	assert.Empty(t, Decode("0invalid"))
	assert.Empty(t, Decode("lll"))
}

func TestCheckDecode(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 20)
	encoded := CheckEncode(payload, 75)

	decoded, version, err := CheckDecode(encoded)
	require.NoError(t, err)
	assert.Equal(t, byte(75), version)
	assert.Equal(t, payload, decoded)
}

func TestCheckDecodeFounderAddress(t *testing.T) {
	// One of the chain's founder reward addresses.
	payload, version, err := CheckDecode("XWfdnGbXnBxeegrPJEvnYaNuwf6DXCruMX")
	require.NoError(t, err)
	assert.Equal(t, byte(75), version)
	assert.Len(t, payload, 20)
}

func TestCheckDecodeErrors(t *testing.T) {
	_, _, err := CheckDecode("abc")
	assert.Equal(t, ErrInvalidFormat, err)

	// Corrupt a checksum character.
	encoded := CheckEncode([]byte{0x01, 0x02}, 1)
	corrupted := encoded[:len(encoded)-1] + "1"
	if corrupted == encoded {
		corrupted = encoded[:len(encoded)-1] + "2"
	}
	_, _, err = CheckDecode(corrupted)
	assert.Equal(t, ErrChecksum, err)
}
