// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// GSVSlots is the number of satellites one GSV sentence can describe.
const GSVSlots = 4

// SatelliteInfo describes one satellite in view. Each value is independent.
type SatelliteInfo struct {
	PRN       Option[uint8]
	Elevation Option[uint16] // degrees
	Azimuth   Option[uint16] // degrees true
	SNR       Option[uint8]  // dB-Hz
}

// GSV is GNSS Satellites in View. A full view spans MessageCount sentences.
//
//	$--GSV,x,x,xx,xx,xx,xxx,xx,...,h*hh
type GSV struct {
	Header
	MessageCount     uint8
	MessageIndex     uint8
	SatellitesInView uint8

	// Satellites holds up to four slots. A slot is present when any of its
	// four fields is present.
	Satellites [GSVSlots]Option[SatelliteInfo]

	SignalID Option[uint8] // NMEA 4.1 and later
}

func (*GSV) Kind() Kind { return KindGSV }

// DecodeGSV decodes GSV fields.
func DecodeGSV(f *Fields, h Header) (m GSV, ok bool) {
	m.Header = h

	count := FieldAs[uint8](f, 0)
	index := FieldAs[uint8](f, 1)
	inView := FieldAs[uint8](f, 2)
	if !count.Valid || !index.Valid || !inView.Valid {
		return GSV{}, false
	}
	m.MessageCount = count.Value
	m.MessageIndex = index.Value
	m.SatellitesInView = inView.Value

	// A single hex digit after at least one complete slot is the signal id.
	// Anything else trailing is the PRN of a partial slot.
	slots := *f
	if n := f.Len(); n-3 >= 5 && (n-3)%4 == 1 {
		if id := hexDigitField(f, n-1); id.Valid {
			m.SignalID = id
			slots.count--
		}
	}

	for slot := range m.Satellites {
		base := 3 + slot*4
		info := SatelliteInfo{
			PRN:       FieldAs[uint8](&slots, base),
			Elevation: FieldAs[uint16](&slots, base+1),
			Azimuth:   FieldAs[uint16](&slots, base+2),
			SNR:       FieldAs[uint8](&slots, base+3),
		}
		if info.PRN.Valid || info.Elevation.Valid || info.Azimuth.Valid || info.SNR.Valid {
			m.Satellites[slot] = Some(info)
		}
	}
	return m, true
}

// SatelliteCount returns how many slots are present.
func (m *GSV) SatelliteCount() int {
	n := 0
	for _, s := range m.Satellites {
		if s.Valid {
			n++
		}
	}
	return n
}
