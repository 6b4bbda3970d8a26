// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// VTG is Track Made Good and Ground Speed. Every field is optional, so a
// sentence of empty fields still decodes.
//
//	$--VTG,x.x,T,x.x,M,x.x,N,x.x,K,m*hh
type VTG struct {
	Header
	TrackTrue        Option[float32]
	TrackTrueRef     Option[byte] // 'T'
	TrackMagnetic    Option[float32]
	TrackMagneticRef Option[byte] // 'M'
	SpeedKnots       Option[float32]
	SpeedKnotsUnit   Option[byte] // 'N'
	SpeedKPH         Option[float32]
	SpeedKPHUnit     Option[byte] // 'K'

	Mode Option[byte] // NMEA 2.3 and later
}

func (*VTG) Kind() Kind { return KindVTG }

// DecodeVTG decodes VTG fields. It always succeeds.
func DecodeVTG(f *Fields, h Header) (m VTG, ok bool) {
	m.Header = h
	m.TrackTrue = FieldAs[float32](f, 0)
	m.TrackTrueRef = f.Char(1)
	m.TrackMagnetic = FieldAs[float32](f, 2)
	m.TrackMagneticRef = f.Char(3)
	m.SpeedKnots = FieldAs[float32](f, 4)
	m.SpeedKnotsUnit = f.Char(5)
	m.SpeedKPH = FieldAs[float32](f, 6)
	m.SpeedKPHUnit = f.Char(7)
	m.Mode = f.Char(8)
	return m, true
}
