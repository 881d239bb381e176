// Copyright (c) 2017-2018 The bzx developers

package zerocoin

import (
	"encoding/binary"
	"math/big"
	"sort"

	"github.com/bzxproject/bzxd/common/hash"
)

// BigNumBucket hashes a big integer into a bucket the way the original
// state did: take the little-endian byte representation and read 8 bytes at
// offset 8.  Values shorter than 24 bytes all land in bucket 0; such values
// are rare enough that the collision cost is acceptable.
func BigNumBucket(bn *big.Int) uint64 {
	be := bn.Bytes()
	if len(be) < 24 {
		return 0
	}
	// big.Int bytes are big-endian; the window at little-endian offset 8
	// sits 16 bytes off the big-endian tail.
	var le [8]byte
	for i := 0; i < 8; i++ {
		le[i] = be[len(be)-9-i]
	}
	return binary.LittleEndian.Uint64(le[:])
}

// SerialSet is a set of coin serial numbers bucketed by BigNumBucket.  The
// explicit buckets reproduce the collision behavior of the original
// unordered containers; do not change the hashing policy.
type SerialSet struct {
	buckets map[uint64][]*big.Int
	size    int
}

// NewSerialSet returns an empty serial set.
func NewSerialSet() *SerialSet {
	return &SerialSet{buckets: make(map[uint64][]*big.Int)}
}

// Add inserts the serial into the set.  It returns false if the serial was
// already present.
func (s *SerialSet) Add(serial *big.Int) bool {
	bucket := BigNumBucket(serial)
	for _, v := range s.buckets[bucket] {
		if v.Cmp(serial) == 0 {
			return false
		}
	}
	s.buckets[bucket] = append(s.buckets[bucket], new(big.Int).Set(serial))
	s.size++
	return true
}

// Remove deletes the serial from the set.  Removing an absent serial is a
// no-op.
func (s *SerialSet) Remove(serial *big.Int) {
	bucket := BigNumBucket(serial)
	vals := s.buckets[bucket]
	for i, v := range vals {
		if v.Cmp(serial) == 0 {
			s.buckets[bucket] = append(vals[:i], vals[i+1:]...)
			if len(s.buckets[bucket]) == 0 {
				delete(s.buckets, bucket)
			}
			s.size--
			return
		}
	}
}

// Has returns whether the serial is in the set.
func (s *SerialSet) Has(serial *big.Int) bool {
	for _, v := range s.buckets[BigNumBucket(serial)] {
		if v.Cmp(serial) == 0 {
			return true
		}
	}
	return false
}

// Size returns the number of serials in the set.
func (s *SerialSet) Size() int {
	return s.size
}

// Serials returns every serial in ascending numeric order.  Callers that
// persist or replay the set rely on this order being deterministic.
func (s *SerialSet) Serials() []*big.Int {
	out := make([]*big.Int, 0, s.size)
	for _, vals := range s.buckets {
		out = append(out, vals...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// Equal reports whether both sets hold exactly the same serials.
func (s *SerialSet) Equal(other *SerialSet) bool {
	if s.size != other.size {
		return false
	}
	for _, vals := range s.buckets {
		for _, v := range vals {
			if !other.Has(v) {
				return false
			}
		}
	}
	return true
}

type serialMapEntry struct {
	serial *big.Int
	txHash hash.Hash
}

// SerialMap maps coin serial numbers to transaction hashes, bucketed with
// the same policy as SerialSet.
type SerialMap struct {
	buckets map[uint64][]serialMapEntry
	size    int
}

// NewSerialMap returns an empty serial map.
func NewSerialMap() *SerialMap {
	return &SerialMap{buckets: make(map[uint64][]serialMapEntry)}
}

// Put inserts or overwrites the mapping for the serial.
func (m *SerialMap) Put(serial *big.Int, txHash hash.Hash) {
	bucket := BigNumBucket(serial)
	for i, e := range m.buckets[bucket] {
		if e.serial.Cmp(serial) == 0 {
			m.buckets[bucket][i].txHash = txHash
			return
		}
	}
	m.buckets[bucket] = append(m.buckets[bucket], serialMapEntry{
		serial: new(big.Int).Set(serial),
		txHash: txHash,
	})
	m.size++
}

// Get returns the transaction hash mapped to the serial, if any.
func (m *SerialMap) Get(serial *big.Int) (hash.Hash, bool) {
	for _, e := range m.buckets[BigNumBucket(serial)] {
		if e.serial.Cmp(serial) == 0 {
			return e.txHash, true
		}
	}
	return hash.ZeroHash, false
}

// Has returns whether the serial is present.
func (m *SerialMap) Has(serial *big.Int) bool {
	_, ok := m.Get(serial)
	return ok
}

// Delete removes the mapping for the serial, if present.
func (m *SerialMap) Delete(serial *big.Int) {
	bucket := BigNumBucket(serial)
	entries := m.buckets[bucket]
	for i, e := range entries {
		if e.serial.Cmp(serial) == 0 {
			m.buckets[bucket] = append(entries[:i], entries[i+1:]...)
			if len(m.buckets[bucket]) == 0 {
				delete(m.buckets, bucket)
			}
			m.size--
			return
		}
	}
}

// Size returns the number of mappings.
func (m *SerialMap) Size() int {
	return m.size
}
