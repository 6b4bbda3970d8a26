// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package export flattens decoded sentences into a wire record shared by the
// MQTT publisher and the fix store.
package export

import (
	"github.com/Thermoquad/sextant/pkg/nmea"
)

// Record is the flattened form of one decoded sentence. Coordinates are
// signed decimal degrees. Absent values are nil and omitted when encoded.
//
// CBOR uses small integer keys so a GGA record fits in a single MQTT frame on
// constrained links.
type Record struct {
	Kind       string  `json:"kind" cbor:"1,keyasint"`
	Talker     string  `json:"talker" cbor:"2,keyasint"`
	ReceivedAt *uint64 `json:"received_at,omitempty" cbor:"3,keyasint,omitempty"`

	Time   string `json:"time,omitempty" cbor:"4,keyasint,omitempty"`
	Date   string `json:"date,omitempty" cbor:"5,keyasint,omitempty"`
	Status string `json:"status,omitempty" cbor:"6,keyasint,omitempty"`
	Mode   string `json:"mode,omitempty" cbor:"7,keyasint,omitempty"`

	Latitude   *float64 `json:"lat,omitempty" cbor:"8,keyasint,omitempty"`
	Longitude  *float64 `json:"lon,omitempty" cbor:"9,keyasint,omitempty"`
	Altitude   *float64 `json:"alt,omitempty" cbor:"10,keyasint,omitempty"`
	SpeedKnots *float64 `json:"speed_kn,omitempty" cbor:"11,keyasint,omitempty"`
	Track      *float64 `json:"track,omitempty" cbor:"12,keyasint,omitempty"`

	FixQuality *uint8   `json:"fix_quality,omitempty" cbor:"13,keyasint,omitempty"`
	FixType    *uint8   `json:"fix_type,omitempty" cbor:"14,keyasint,omitempty"`
	Satellites *uint8   `json:"sats,omitempty" cbor:"15,keyasint,omitempty"`
	HDOP       *float64 `json:"hdop,omitempty" cbor:"16,keyasint,omitempty"`
	PDOP       *float64 `json:"pdop,omitempty" cbor:"17,keyasint,omitempty"`
	VDOP       *float64 `json:"vdop,omitempty" cbor:"18,keyasint,omitempty"`

	UsedPRNs     []uint8     `json:"used_prns,omitempty" cbor:"19,keyasint,omitempty"`
	MessageIndex *uint8      `json:"msg_index,omitempty" cbor:"20,keyasint,omitempty"`
	MessageCount *uint8      `json:"msg_count,omitempty" cbor:"21,keyasint,omitempty"`
	InView       *uint8      `json:"in_view,omitempty" cbor:"22,keyasint,omitempty"`
	Sky          []Satellite `json:"sky,omitempty" cbor:"23,keyasint,omitempty"`
}

// Satellite is one GSV slot.
type Satellite struct {
	PRN       *uint8  `json:"prn,omitempty" cbor:"1,keyasint,omitempty"`
	Elevation *uint16 `json:"elev,omitempty" cbor:"2,keyasint,omitempty"`
	Azimuth   *uint16 `json:"az,omitempty" cbor:"3,keyasint,omitempty"`
	SNR       *uint8  `json:"snr,omitempty" cbor:"4,keyasint,omitempty"`
}

// HasPosition reports whether the record carries a latitude and longitude.
func (r *Record) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Degrees converts a DDMM.MMMM or DDDMM.MMMM coordinate to signed decimal
// degrees. South and West are negative.
func Degrees(v float64, hemi byte) float64 {
	deg := float64(int(v / 100))
	d := deg + (v-deg*100)/60
	if hemi == nmea.South || hemi == nmea.West {
		d = -d
	}
	return d
}

// FromMessage flattens m. It returns false for a nil message.
func FromMessage(m nmea.Message) (Record, bool) {
	if m == nil {
		return Record{}, false
	}

	h := m.MessageHeader()
	r := Record{
		Kind:   m.Kind().String(),
		Talker: nmea.FormatTalker(h.Talker),
	}
	if ts, ok := h.ReceivedAt.Get(); ok {
		r.ReceivedAt = &ts
	}

	switch v := m.(type) {
	case *nmea.GGA:
		r.Time = clock(v.Time)
		r.setPosition(v.Latitude, v.LatHemi, v.Longitude, v.LonHemi)
		r.FixQuality = ptr(v.FixQuality)
		r.Satellites = opt(v.Satellites)
		r.HDOP = optFloat(v.HDOP)
		r.Altitude = optFloat(v.Altitude)

	case *nmea.RMC:
		r.Time = clock(v.Time)
		r.Date = calendar(v.Date)
		r.Status = string(v.Status)
		r.setPosition(v.Latitude, v.LatHemi, v.Longitude, v.LonHemi)
		r.SpeedKnots = ptr(float64(v.SpeedKnots))
		r.Track = ptr(float64(v.TrackAngle))
		r.Mode = optChar(v.Mode)

	case *nmea.GSA:
		r.Mode = string(v.Mode)
		r.FixType = ptr(v.FixType)
		for _, prn := range v.PRNs {
			if p, ok := prn.Get(); ok {
				r.UsedPRNs = append(r.UsedPRNs, p)
			}
		}
		r.PDOP = optFloat(v.PDOP)
		r.HDOP = optFloat(v.HDOP)
		r.VDOP = optFloat(v.VDOP)

	case *nmea.GSV:
		r.MessageIndex = ptr(v.MessageIndex)
		r.MessageCount = ptr(v.MessageCount)
		r.InView = ptr(v.SatellitesInView)
		for _, slot := range v.Satellites {
			s, ok := slot.Get()
			if !ok {
				continue
			}
			r.Sky = append(r.Sky, Satellite{
				PRN:       opt(s.PRN),
				Elevation: opt(s.Elevation),
				Azimuth:   opt(s.Azimuth),
				SNR:       opt(s.SNR),
			})
		}

	case *nmea.GLL:
		r.Time = clock(v.Time)
		r.Status = string(v.Status)
		r.setPosition(v.Latitude, v.LatHemi, v.Longitude, v.LonHemi)
		r.Mode = optChar(v.Mode)

	case *nmea.VTG:
		r.Track = optFloat(v.TrackTrue)
		r.SpeedKnots = optFloat(v.SpeedKnots)
		r.Mode = optChar(v.Mode)

	case *nmea.GNS:
		r.Time = clock(v.Time)
		r.setPosition(v.Latitude, v.LatHemi, v.Longitude, v.LonHemi)
		r.Mode = v.Mode.String()
		r.Satellites = ptr(v.Satellites)
		r.HDOP = optFloat(v.HDOP)
		r.Altitude = optFloat(v.Altitude)
		r.Status = optChar(v.NavStatus)
	}

	return r, true
}

func (r *Record) setPosition(lat float64, latHemi byte, lon float64, lonHemi byte) {
	r.Latitude = ptr(Degrees(lat, latHemi))
	r.Longitude = ptr(Degrees(lon, lonHemi))
}

// clock renders a parseable UTC time, or the raw text when it does not parse.
func clock(t nmea.Text) string {
	if u, ok := nmea.ParseUTCTime(t); ok {
		return u.String()
	}
	return t.String()
}

func calendar(d nmea.Text) string {
	if date, ok := nmea.ParseDate(d); ok {
		return date.String()
	}
	return d.String()
}

func ptr[T any](v T) *T { return &v }

func opt[T any](o nmea.Option[T]) *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

func optFloat(o nmea.Option[float32]) *float64 {
	if v, ok := o.Get(); ok {
		f := float64(v)
		return &f
	}
	return nil
}

func optChar(o nmea.Option[byte]) string {
	if c, ok := o.Get(); ok {
		return string(c)
	}
	return ""
}
