// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import (
	"errors"
	"fmt"
	"strings"
)

// FormatMessage formats a record into a human-readable string
func FormatMessage(m Message) string {
	h := m.MessageHeader()
	result := fmt.Sprintf("%s %s", FormatTalker(h.Talker), FormatKind(m.Kind()))
	if ts, ok := h.ReceivedAt.Get(); ok {
		result += fmt.Sprintf(" rx=%d", ts)
	}
	result += "\n"

	switch msg := m.(type) {
	case *GGA:
		result += fmt.Sprintf("  Time: %s, Fix: %s\n", formatTime(msg.Time), formatFixQuality(msg.FixQuality))
		result += fmt.Sprintf("  Position: %s %s\n",
			formatCoordinate(msg.Latitude, msg.LatHemi, 2), formatCoordinate(msg.Longitude, msg.LonHemi, 3))
		result += fmt.Sprintf("  Satellites: %s, HDOP: %s\n", formatOpt(msg.Satellites), formatOpt(msg.HDOP))
		result += fmt.Sprintf("  Altitude: %s%s, Geoid: %s%s\n",
			formatOpt(msg.Altitude), formatUnit(msg.AltitudeUnits),
			formatOpt(msg.GeoidSeparation), formatUnit(msg.GeoidUnits))
		if msg.DiffAge.Valid || msg.DiffStation.Valid {
			result += fmt.Sprintf("  Differential: age %s, station %s\n",
				formatOpt(msg.DiffAge), formatOptText(msg.DiffStation))
		}

	case *RMC:
		result += fmt.Sprintf("  Time: %s %s, Status: %s\n", formatDate(msg.Date), formatTime(msg.Time), formatStatus(msg.Status))
		result += fmt.Sprintf("  Position: %s %s\n",
			formatCoordinate(msg.Latitude, msg.LatHemi, 2), formatCoordinate(msg.Longitude, msg.LonHemi, 3))
		result += fmt.Sprintf("  Speed: %.1f kn, Track: %.1f°\n", msg.SpeedKnots, msg.TrackAngle)
		if msg.MagneticVariation.Valid {
			result += fmt.Sprintf("  Magnetic variation: %.1f°%s\n", msg.MagneticVariation.Value, formatUnit(msg.MagneticHemi))
		}
		if msg.Mode.Valid {
			result += fmt.Sprintf("  Mode: %s\n", formatMode(msg.Mode.Value))
		}

	case *GSA:
		prns := []string{}
		for _, prn := range msg.PRNs {
			if prn.Valid {
				prns = append(prns, fmt.Sprintf("%d", prn.Value))
			}
		}
		result += fmt.Sprintf("  Mode: %c, Fix: %s\n", msg.Mode, formatFixType(msg.FixType))
		result += fmt.Sprintf("  Satellites: [%s]\n", strings.Join(prns, " "))
		result += fmt.Sprintf("  PDOP: %s, HDOP: %s, VDOP: %s\n", formatOpt(msg.PDOP), formatOpt(msg.HDOP), formatOpt(msg.VDOP))
		if msg.SystemID.Valid {
			result += fmt.Sprintf("  System: %d\n", msg.SystemID.Value)
		}

	case *GSV:
		result += fmt.Sprintf("  Message %d of %d, %d in view\n", msg.MessageIndex, msg.MessageCount, msg.SatellitesInView)
		for _, s := range msg.Satellites {
			if !s.Valid {
				continue
			}
			sat := s.Value
			result += fmt.Sprintf("  PRN %s: elev %s, az %s, SNR %s\n",
				formatOpt(sat.PRN), formatOpt(sat.Elevation), formatOpt(sat.Azimuth), formatOpt(sat.SNR))
		}
		if msg.SignalID.Valid {
			result += fmt.Sprintf("  Signal: %d\n", msg.SignalID.Value)
		}

	case *GLL:
		result += fmt.Sprintf("  Time: %s, Status: %s\n", formatTime(msg.Time), formatStatus(msg.Status))
		result += fmt.Sprintf("  Position: %s %s\n",
			formatCoordinate(msg.Latitude, msg.LatHemi, 2), formatCoordinate(msg.Longitude, msg.LonHemi, 3))
		if msg.Mode.Valid {
			result += fmt.Sprintf("  Mode: %s\n", formatMode(msg.Mode.Value))
		}

	case *VTG:
		result += fmt.Sprintf("  Track: %s°T %s°M\n", formatOpt(msg.TrackTrue), formatOpt(msg.TrackMagnetic))
		result += fmt.Sprintf("  Speed: %s kn, %s km/h\n", formatOpt(msg.SpeedKnots), formatOpt(msg.SpeedKPH))
		if msg.Mode.Valid {
			result += fmt.Sprintf("  Mode: %s\n", formatMode(msg.Mode.Value))
		}

	case *GNS:
		result += fmt.Sprintf("  Time: %s, Mode: %s, Satellites: %d\n", formatTime(msg.Time), msg.Mode.String(), msg.Satellites)
		result += fmt.Sprintf("  Position: %s %s\n",
			formatCoordinate(msg.Latitude, msg.LatHemi, 2), formatCoordinate(msg.Longitude, msg.LonHemi, 3))
		result += fmt.Sprintf("  HDOP: %s, Altitude: %s, Geoid: %s\n",
			formatOpt(msg.HDOP), formatOpt(msg.Altitude), formatOpt(msg.GeoidSeparation))
		if msg.NavStatus.Valid {
			result += fmt.Sprintf("  Navigational status: %c\n", msg.NavStatus.Value)
		}
	}

	return result
}

// FormatKind returns the human-readable name for a sentence kind
func FormatKind(k Kind) string {
	switch k {
	case KindGGA:
		return "GGA (fix data)"
	case KindRMC:
		return "RMC (recommended minimum)"
	case KindGSA:
		return "GSA (DOP and active satellites)"
	case KindGSV:
		return "GSV (satellites in view)"
	case KindGLL:
		return "GLL (geographic position)"
	case KindVTG:
		return "VTG (track and ground speed)"
	case KindGNS:
		return "GNS (GNSS fix data)"
	default:
		return "UNKNOWN"
	}
}

// FormatTalker returns the constellation name for a talker
func FormatTalker(t Talker) string {
	switch t {
	case TalkerGPS:
		return "GPS"
	case TalkerGLONASS:
		return "GLONASS"
	case TalkerGalileo:
		return "Galileo"
	case TalkerBeiDou:
		return "BeiDou"
	case TalkerMultiGNSS:
		return "GNSS"
	case TalkerQZSS:
		return "QZSS"
	default:
		return "UNKNOWN"
	}
}

// FormatError formats a parse error for display
func FormatError(err error) string {
	var se *SentenceError
	if !errors.As(err, &se) {
		return err.Error()
	}
	name := se.Kind.String()
	if se.Talker != TalkerUnknown {
		name = se.Talker.String() + name
	}
	switch {
	case errors.Is(err, ErrInvalidChecksum):
		return fmt.Sprintf("%s: checksum mismatch", name)
	case errors.Is(err, ErrMissingChecksum):
		return fmt.Sprintf("%s: checksum missing", name)
	case errors.Is(err, ErrInvalidMessage):
		return fmt.Sprintf("%s: mandatory field missing or malformed", name)
	default:
		return se.Error()
	}
}

// formatCoordinate renders DDMM.MMMM as degrees and minutes
func formatCoordinate(v float64, hemi byte, degreeDigits int) string {
	degrees := int(v / 100)
	minutes := v - float64(degrees*100)
	return fmt.Sprintf("%0*d°%07.4f'%c", degreeDigits, degrees, minutes, hemi)
}

func formatTime(t Text) string {
	if ut, ok := ParseUTCTime(t); ok {
		return ut.String()
	}
	return t.String()
}

func formatDate(d Text) string {
	if date, ok := ParseDate(d); ok {
		return date.String()
	}
	return d.String()
}

func formatStatus(s byte) string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusVoid:
		return "VOID"
	default:
		return fmt.Sprintf("UNKNOWN(%c)", s)
	}
}

func formatMode(m byte) string {
	switch m {
	case 'A':
		return "AUTONOMOUS"
	case 'D':
		return "DIFFERENTIAL"
	case 'E':
		return "ESTIMATED"
	case 'F':
		return "FLOAT_RTK"
	case 'M':
		return "MANUAL"
	case 'N':
		return "NO_FIX"
	case 'P':
		return "PRECISE"
	case 'R':
		return "RTK"
	case 'S':
		return "SIMULATED"
	default:
		return fmt.Sprintf("UNKNOWN(%c)", m)
	}
}

func formatFixQuality(q uint8) string {
	switch q {
	case FixQualityInvalid:
		return "INVALID"
	case FixQualityGPS:
		return "GPS"
	case FixQualityDGPS:
		return "DGPS"
	case FixQualityPPS:
		return "PPS"
	case FixQualityRTK:
		return "RTK"
	case FixQualityFloatRTK:
		return "FLOAT_RTK"
	case FixQualityEstimated:
		return "ESTIMATED"
	case FixQualityManual:
		return "MANUAL"
	case FixQualitySimulated:
		return "SIMULATED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", q)
	}
}

func formatFixType(t uint8) string {
	switch t {
	case FixTypeNone:
		return "NONE"
	case FixType2D:
		return "2D"
	case FixType3D:
		return "3D"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", t)
	}
}

func formatOpt[T Number](o Option[T]) string {
	if !o.Valid {
		return "-"
	}
	return fmt.Sprint(o.Value)
}

func formatOptText(o Option[Text]) string {
	if !o.Valid {
		return "-"
	}
	return o.Value.String()
}

func formatUnit(o Option[byte]) string {
	if !o.Valid {
		return ""
	}
	return " " + string(o.Value)
}
