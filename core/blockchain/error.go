// Copyright (c) 2017-2018 The bzx developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// RejectCode is the numeric reason a transaction or block was rejected.
//
// NOTE: These values travel on the wire inside reject messages and are
// serialized into peer ban state; they must remain stable.
type RejectCode uint8

const (
	// RejectMalformed indicates a structurally invalid transaction.
	RejectMalformed RejectCode = 0x01

	// RejectInvalid is the generic consensus-invalid code.
	RejectInvalid RejectCode = 0x10

	// NSequenceIncorrect indicates a zerocoin spend whose sequence-carried
	// group id, version or modulus is not acceptable.
	NSequenceIncorrect RejectCode = 0x53

	// PubcoinNotValidate indicates a mint whose public coin failed
	// validation or whose denomination is not a legal value.
	PubcoinNotValidate RejectCode = 0x54

	// NoMintZerocoin indicates a spend referencing a coin group no mints
	// exist for.
	NoMintZerocoin RejectCode = 0x55

	// RejectFounderRewardMissing indicates a block missing one of the
	// fixed founder reward outputs.
	RejectFounderRewardMissing RejectCode = 0x56

	// RejectInvalidBznodePayment indicates a block carrying more bznode
	// payment outputs than allowed.
	RejectInvalidBznodePayment RejectCode = 0x57
)

// ValidationState collects the verdict of a validator: whether the subject
// is invalid, how heavily the sender should be penalized, and the reject
// reason to relay.
type ValidationState struct {
	invalid      bool
	dosScore     int
	rejectCode   RejectCode
	rejectReason string
}

// DoS marks the state invalid with the given denial-of-service score and
// reject reason.  It always returns false so validators can reject with
// `return state.DoS(...)`.
func (s *ValidationState) DoS(score int, code RejectCode, reason string) bool {
	if !s.invalid {
		s.invalid = true
		s.rejectCode = code
		s.rejectReason = reason
	}
	s.dosScore += score
	return false
}

// Invalid marks the state invalid without penalizing the sender.
func (s *ValidationState) Invalid(code RejectCode, reason string) bool {
	return s.DoS(0, code, reason)
}

// IsInvalid returns whether a validator has rejected the subject.
func (s *ValidationState) IsInvalid() bool {
	return s.invalid
}

// DoSScore returns the accumulated denial-of-service score.
func (s *ValidationState) DoSScore() int {
	return s.dosScore
}

// RejectCode returns the recorded reject code.
func (s *ValidationState) RejectCode() RejectCode {
	return s.rejectCode
}

// RejectReason returns the recorded human-readable reject reason.
func (s *ValidationState) RejectReason() string {
	return s.rejectReason
}

// String implements the fmt.Stringer interface.
func (s *ValidationState) String() string {
	if !s.invalid {
		return "valid"
	}
	return fmt.Sprintf("invalid: %s (code %#x, dos %d)", s.rejectReason,
		uint8(s.rejectCode), s.dosScore)
}
