// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// GNS is GNSS Fix Data. Mode holds one indicator character per constellation
// (GPS, GLONASS, Galileo, BeiDou, ...).
//
//	$--GNS,hhmmss.ss,llll.ll,a,yyyyy.yy,a,c--c,xx,x.x,x.x,x.x,x.x,x.x,a*hh
type GNS struct {
	Header
	Time       Text
	Latitude   float64
	LatHemi    byte
	Longitude  float64
	LonHemi    byte
	Mode       Text
	Satellites uint8

	HDOP            Option[float32]
	Altitude        Option[float32]
	GeoidSeparation Option[float32]
	DiffAge         Option[float32]
	DiffStation     Option[Text]
	NavStatus       Option[byte] // NMEA 4.1 and later
}

func (*GNS) Kind() Kind { return KindGNS }

// DecodeGNS decodes GNS fields.
func DecodeGNS(f *Fields, h Header) (m GNS, ok bool) {
	m.Header = h

	time := f.Text(0)
	lat, latHemi, lon, lonHemi, posOK := position(f, 1)
	mode := f.Text(5)
	sats := FieldAs[uint8](f, 6)
	if !time.Valid || !posOK || !mode.Valid || !sats.Valid {
		return GNS{}, false
	}
	m.Time = time.Value
	m.Latitude, m.LatHemi = lat, latHemi
	m.Longitude, m.LonHemi = lon, lonHemi
	m.Mode = mode.Value
	m.Satellites = sats.Value

	m.HDOP = FieldAs[float32](f, 7)
	m.Altitude = FieldAs[float32](f, 8)
	m.GeoidSeparation = FieldAs[float32](f, 9)
	m.DiffAge = FieldAs[float32](f, 10)
	m.DiffStation = f.Text(11)
	m.NavStatus = f.Char(12)
	return m, true
}
