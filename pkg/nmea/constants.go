// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package nmea decodes NMEA 0183 sentences from a raw byte stream.
//
// The decoder is stateless: every call to Parse or Scan is a pure function of
// the slice passed in, and reports how many bytes it consumed so the caller can
// advance its buffer. Scan and the DecodeXXX functions never allocate; Parse
// allocates only the record it returns. Nothing retains the input slice.
//
// Supported sentences: GGA, RMC, GSA, GSV, GLL, VTG and GNS from the GP, GL,
// GA, GB/BD, GN and QZ talkers.
package nmea

// Framing bytes
const (
	StartByte    = '$'
	ChecksumByte = '*'
	FieldSep     = ','
	CR           = '\r'
	LF           = '\n'
)

// Size limits
const (
	MaxSentenceSize = 82 // '$' through checksum, excluding CR LF
	MaxFields       = 20
	MaxFieldSize    = 16
	AddressSize     = 5 // talker (2) + kind (3)
)

// Scanner states (internal)
const (
	stateBody = iota
	stateChecksum
)

// Talker identifies the constellation that produced a sentence.
type Talker uint8

// Talker values
const (
	TalkerUnknown Talker = iota
	TalkerGPS
	TalkerGLONASS
	TalkerGalileo
	TalkerBeiDou
	TalkerMultiGNSS
	TalkerQZSS
)

// Kind identifies the sentence type.
type Kind uint8

// Kind values
const (
	KindUnknown Kind = iota
	KindGGA
	KindRMC
	KindGSA
	KindGSV
	KindGLL
	KindVTG
	KindGNS
)

// Hemisphere indicators
const (
	North = 'N'
	South = 'S'
	East  = 'E'
	West  = 'W'
)

// Status values carried by RMC and GLL
const (
	StatusActive = 'A'
	StatusVoid   = 'V'
)

// GSA fix types
const (
	FixTypeNone = 1
	FixType2D   = 2
	FixType3D   = 3
)

// GGA fix quality values. Receivers may send other values; they pass through.
const (
	FixQualityInvalid   = 0
	FixQualityGPS       = 1
	FixQualityDGPS      = 2
	FixQualityPPS       = 3
	FixQualityRTK       = 4
	FixQualityFloatRTK  = 5
	FixQualityEstimated = 6
	FixQualityManual    = 7
	FixQualitySimulated = 8
)
