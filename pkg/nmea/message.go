// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import (
	"errors"
	"fmt"
)

// Sentinel errors. Parse wraps them in a *SentenceError.
var (
	ErrInvalidChecksum = errors.New("invalid checksum")
	ErrInvalidMessage  = errors.New("invalid message")
	ErrMissingChecksum = errors.New("missing checksum")
)

// SentenceError reports a sentence that was framed but could not be decoded.
type SentenceError struct {
	Kind   Kind
	Talker Talker
	Err    error
}

func (e *SentenceError) Error() string {
	return fmt.Sprintf("%s%s: %v", e.Talker, e.Kind, e.Err)
}

func (e *SentenceError) Unwrap() error {
	return e.Err
}

// Header carries what every record shares.
type Header struct {
	Talker Talker
	// ReceivedAt is the caller supplied reception time, in the caller's unit.
	ReceivedAt Option[uint64]
}

// MessageHeader returns the shared header.
func (h Header) MessageHeader() Header {
	return h
}

// Message is a decoded sentence. The concrete type is one of *GGA, *RMC,
// *GSA, *GSV, *GLL, *VTG or *GNS.
type Message interface {
	Kind() Kind
	MessageHeader() Header
}
