// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// GSAChannels is the number of PRN slots in a GSA sentence.
const GSAChannels = 12

// GSA is GNSS DOP and Active Satellites.
//
//	$--GSA,a,x,xx,xx,xx,xx,xx,xx,xx,xx,xx,xx,xx,xx,x.x,x.x,x.x,h*hh
type GSA struct {
	Header
	Mode    byte // 'M' manual, 'A' automatic
	FixType uint8

	// PRNs holds the satellites used in the solution, one per channel.
	// Channels are independent; an empty channel does not end the list.
	PRNs [GSAChannels]Option[uint8]
	PDOP Option[float32]
	HDOP Option[float32]
	VDOP Option[float32]

	SystemID Option[uint8] // NMEA 4.1 and later
}

func (*GSA) Kind() Kind { return KindGSA }

// DecodeGSA decodes GSA fields.
func DecodeGSA(f *Fields, h Header) (m GSA, ok bool) {
	m.Header = h

	mode := f.Char(0)
	fix := FieldAs[uint8](f, 1)
	if !mode.Valid || !fix.Valid {
		return GSA{}, false
	}
	m.Mode = mode.Value
	m.FixType = fix.Value

	for i := range m.PRNs {
		m.PRNs[i] = FieldAs[uint8](f, 2+i)
	}
	m.PDOP = FieldAs[float32](f, 14)
	m.HDOP = FieldAs[float32](f, 15)
	m.VDOP = FieldAs[float32](f, 16)
	m.SystemID = hexDigitField(f, 17)
	return m, true
}

// UsedSatellites returns how many PRN channels are populated.
func (m *GSA) UsedSatellites() int {
	n := 0
	for _, prn := range m.PRNs {
		if prn.Valid {
			n++
		}
	}
	return n
}

// hexDigitField reads a single hex digit field, as used by the NMEA 4.1
// system and signal identifiers.
func hexDigitField(f *Fields, i int) Option[uint8] {
	raw, ok := f.Raw(i)
	if !ok || len(raw) != 1 {
		return None[uint8]()
	}
	v, ok := hexValue(raw[0])
	if !ok {
		return None[uint8]()
	}
	return Some(v)
}
