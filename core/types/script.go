// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package types

// Script opcodes used by the consensus core.  Only the handful of opcodes
// this codebase actually inspects or emits are defined; full script
// execution is owned by the script engine.
const (
	OpDup           = 0x76
	OpEqualVerify   = 0x88
	OpHash160       = 0xa9
	OpChecksig      = 0xac
	OpPushData1     = 0x4c
	OpPushData2     = 0x4d
	OpPushData4     = 0x4e
	OpZerocoinMint  = 0xc1
	OpZerocoinSpend = 0xc2
)

// IsZerocoinMint returns whether the passed public key script is a zerocoin
// mint output.  The pubcoin payload of a mint script starts at byte 6.
func IsZerocoinMint(pkScript []byte) bool {
	return len(pkScript) > 0 && pkScript[0] == OpZerocoinMint
}

// IsZerocoinSpend returns whether the passed signature script is a zerocoin
// spend.  The serialized proof payload of a spend script starts at byte 4.
func IsZerocoinSpend(sigScript []byte) bool {
	return len(sigScript) > 0 && sigScript[0] == OpZerocoinSpend
}

// PayToPubKeyHashScript returns a standard P2PKH script paying to the passed
// 20-byte public key hash.
func PayToPubKeyHashScript(pubKeyHash []byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, OpDup, OpHash160, byte(len(pubKeyHash)))
	script = append(script, pubKeyHash...)
	script = append(script, OpEqualVerify, OpChecksig)
	return script
}

// ScriptBuilder incrementally assembles a script from data pushes.  It
// implements just enough of the original CScript stream operators for the
// genesis coinbase construction.
type ScriptBuilder struct {
	script []byte
}

// AddData pushes the passed bytes onto the script using the canonical
// minimal push opcode for the data length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	l := len(data)
	switch {
	case l < OpPushData1:
		b.script = append(b.script, byte(l))
	case l <= 0xff:
		b.script = append(b.script, OpPushData1, byte(l))
	case l <= 0xffff:
		b.script = append(b.script, OpPushData2, byte(l), byte(l>>8))
	default:
		b.script = append(b.script, OpPushData4, byte(l), byte(l>>8),
			byte(l>>16), byte(l>>24))
	}
	b.script = append(b.script, data...)
	return b
}

// AddInt64 pushes the number serialized the way the original script stream
// serialized integers: little-endian, minimal length, with an extra zero
// byte when the top bit of the most significant byte is set.
func (b *ScriptBuilder) AddInt64(v int64) *ScriptBuilder {
	return b.AddData(scriptNumBytes(v))
}

// Script returns the assembled script bytes.
func (b *ScriptBuilder) Script() []byte {
	return b.script
}

func scriptNumBytes(v int64) []byte {
	if v == 0 {
		return nil
	}

	neg := v < 0
	if neg {
		v = -v
	}

	var result []byte
	for v > 0 {
		result = append(result, byte(v&0xff))
		v >>= 8
	}

	// A negative number gets its sign bit in the most significant byte,
	// which may require an extra byte when that bit is already occupied.
	if result[len(result)-1]&0x80 != 0 {
		extra := byte(0)
		if neg {
			extra = 0x80
		}
		result = append(result, extra)
	} else if neg {
		result[len(result)-1] |= 0x80
	}

	return result
}
