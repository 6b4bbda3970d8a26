// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// GGA is Global Positioning System Fix Data.
//
//	$--GGA,hhmmss.ss,llll.ll,a,yyyyy.yy,a,x,xx,x.x,x.x,M,x.x,M,x.x,xxxx*hh
type GGA struct {
	Header
	Time       Text
	Latitude   float64 // DDMM.MMMM as transmitted
	LatHemi    byte
	Longitude  float64 // DDDMM.MMMM as transmitted
	LonHemi    byte
	FixQuality uint8

	Satellites      Option[uint8]
	HDOP            Option[float32]
	Altitude        Option[float32]
	AltitudeUnits   Option[byte]
	GeoidSeparation Option[float32]
	GeoidUnits      Option[byte]
	DiffAge         Option[float32]
	DiffStation     Option[Text]
}

func (*GGA) Kind() Kind { return KindGGA }

// DecodeGGA decodes GGA fields. ok is false when a mandatory field is missing
// or malformed.
func DecodeGGA(f *Fields, h Header) (m GGA, ok bool) {
	m.Header = h

	time := f.Text(0)
	lat, latHemi, lon, lonHemi, posOK := position(f, 1)
	quality := FieldAs[uint8](f, 5)
	if !time.Valid || !posOK || !quality.Valid {
		return GGA{}, false
	}

	m.Time = time.Value
	m.Latitude, m.LatHemi = lat, latHemi
	m.Longitude, m.LonHemi = lon, lonHemi
	m.FixQuality = quality.Value

	m.Satellites = FieldAs[uint8](f, 6)
	m.HDOP = FieldAs[float32](f, 7)
	m.Altitude = FieldAs[float32](f, 8)
	m.AltitudeUnits = f.Char(9)
	m.GeoidSeparation = FieldAs[float32](f, 10)
	m.GeoidUnits = f.Char(11)
	m.DiffAge = FieldAs[float32](f, 12)
	m.DiffStation = f.Text(13)
	return m, true
}

// position reads latitude, hemisphere, longitude, hemisphere starting at
// field i. All four are required.
func position(f *Fields, i int) (lat float64, latHemi byte, lon float64, lonHemi byte, ok bool) {
	la := FieldAs[float64](f, i)
	ns := f.Char(i + 1)
	lo := FieldAs[float64](f, i+2)
	ew := f.Char(i + 3)
	if !la.Valid || !ns.Valid || !lo.Valid || !ew.Valid {
		return 0, 0, 0, 0, false
	}
	return la.Value, ns.Value, lo.Value, ew.Value, true
}
