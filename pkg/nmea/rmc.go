// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// RMC is Recommended Minimum Navigation Information.
//
//	$--RMC,hhmmss.ss,A,llll.ll,a,yyyyy.yy,a,x.x,x.x,ddmmyy,x.x,a,m*hh
type RMC struct {
	Header
	Time       Text
	Status     byte // StatusActive or StatusVoid
	Latitude   float64
	LatHemi    byte
	Longitude  float64
	LonHemi    byte
	SpeedKnots float32
	TrackAngle float32 // degrees true
	Date       Text

	MagneticVariation Option[float32]
	MagneticHemi      Option[byte]
	Mode              Option[byte] // NMEA 2.3 and later
}

func (*RMC) Kind() Kind { return KindRMC }

// DecodeRMC decodes RMC fields.
func DecodeRMC(f *Fields, h Header) (m RMC, ok bool) {
	m.Header = h

	time := f.Text(0)
	status := f.Char(1)
	lat, latHemi, lon, lonHemi, posOK := position(f, 2)
	speed := FieldAs[float32](f, 6)
	track := FieldAs[float32](f, 7)
	date := f.Text(8)
	if !time.Valid || !status.Valid || !posOK || !speed.Valid || !track.Valid || !date.Valid {
		return RMC{}, false
	}

	m.Time = time.Value
	m.Status = status.Value
	m.Latitude, m.LatHemi = lat, latHemi
	m.Longitude, m.LonHemi = lon, lonHemi
	m.SpeedKnots = speed.Value
	m.TrackAngle = track.Value
	m.Date = date.Value

	m.MagneticVariation = FieldAs[float32](f, 9)
	m.MagneticHemi = f.Char(10)
	m.Mode = f.Char(11)
	return m, true
}
