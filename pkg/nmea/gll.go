// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// GLL is Geographic Position, Latitude/Longitude.
//
//	$--GLL,llll.ll,a,yyyyy.yy,a,hhmmss.ss,A,m*hh
type GLL struct {
	Header
	Latitude  float64
	LatHemi   byte
	Longitude float64
	LonHemi   byte
	Time      Text
	Status    byte

	Mode Option[byte] // NMEA 2.3 and later
}

func (*GLL) Kind() Kind { return KindGLL }

// DecodeGLL decodes GLL fields.
func DecodeGLL(f *Fields, h Header) (m GLL, ok bool) {
	m.Header = h

	lat, latHemi, lon, lonHemi, posOK := position(f, 0)
	time := f.Text(4)
	status := f.Char(5)
	if !posOK || !time.Valid || !status.Valid {
		return GLL{}, false
	}
	m.Latitude, m.LatHemi = lat, latHemi
	m.Longitude, m.LonHemi = lon, lonHemi
	m.Time = time.Value
	m.Status = status.Value
	m.Mode = f.Char(6)
	return m, true
}
