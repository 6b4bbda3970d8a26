// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// Resolve maps a five byte address ("GPGGA") to its talker and kind. Either
// part may come back unknown; this never fails.
func Resolve(address [AddressSize]byte) (Talker, Kind) {
	return ParseTalker([2]byte{address[0], address[1]}),
		ParseKind([3]byte{address[2], address[3], address[4]})
}

// ParseTalker maps a two byte talker id to a Talker.
func ParseTalker(id [2]byte) Talker {
	switch id {
	case [2]byte{'G', 'P'}:
		return TalkerGPS
	case [2]byte{'G', 'L'}:
		return TalkerGLONASS
	case [2]byte{'G', 'A'}:
		return TalkerGalileo
	case [2]byte{'G', 'B'}, [2]byte{'B', 'D'}:
		return TalkerBeiDou
	case [2]byte{'G', 'N'}:
		return TalkerMultiGNSS
	case [2]byte{'Q', 'Z'}:
		return TalkerQZSS
	}
	return TalkerUnknown
}

// ParseKind maps a three byte sentence formatter to a Kind.
func ParseKind(id [3]byte) Kind {
	switch id {
	case [3]byte{'G', 'G', 'A'}:
		return KindGGA
	case [3]byte{'R', 'M', 'C'}:
		return KindRMC
	case [3]byte{'G', 'S', 'A'}:
		return KindGSA
	case [3]byte{'G', 'S', 'V'}:
		return KindGSV
	case [3]byte{'G', 'L', 'L'}:
		return KindGLL
	case [3]byte{'V', 'T', 'G'}:
		return KindVTG
	case [3]byte{'G', 'N', 'S'}:
		return KindGNS
	}
	return KindUnknown
}

// splitAddress separates the address field from the rest of a sentence body.
// ok is false when the address is not exactly AddressSize bytes. payload is
// nil when the body holds no field separator.
func splitAddress(body []byte) (address [AddressSize]byte, payload []byte, hasPayload, ok bool) {
	end := len(body)
	for i, b := range body {
		if b == FieldSep {
			end = i
			break
		}
	}
	if end != AddressSize {
		return address, nil, false, false
	}
	copy(address[:], body[:AddressSize])
	if end < len(body) {
		return address, body[end+1:], true, true
	}
	return address, nil, false, true
}

var talkerIDs = [...]string{
	TalkerUnknown:   "??",
	TalkerGPS:       "GP",
	TalkerGLONASS:   "GL",
	TalkerGalileo:   "GA",
	TalkerBeiDou:    "GB",
	TalkerMultiGNSS: "GN",
	TalkerQZSS:      "QZ",
}

var kindIDs = [...]string{
	KindUnknown: "???",
	KindGGA:     "GGA",
	KindRMC:     "RMC",
	KindGSA:     "GSA",
	KindGSV:     "GSV",
	KindGLL:     "GLL",
	KindVTG:     "VTG",
	KindGNS:     "GNS",
}

// String returns the two letter talker id. BeiDou renders as "GB".
func (t Talker) String() string {
	if int(t) < len(talkerIDs) {
		return talkerIDs[t]
	}
	return talkerIDs[TalkerUnknown]
}

// String returns the three letter sentence formatter.
func (k Kind) String() string {
	if int(k) < len(kindIDs) {
		return kindIDs[k]
	}
	return kindIDs[KindUnknown]
}
