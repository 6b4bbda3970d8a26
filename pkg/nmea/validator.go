// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import "fmt"

// AnomalyType represents different types of sentence anomalies
type AnomalyType int

const (
	AnomalyInvalidCoordinate AnomalyType = iota
	AnomalyInvalidHemisphere
	AnomalyInvalidTime
	AnomalyInvalidDate
	AnomalyInvalidStatus
	AnomalyInvalidSatellite
	AnomalyInvalidValue
	AnomalyChecksumError
	AnomalyDecodeError
)

var anomalyNames = [...]string{
	"invalid_coordinate",
	"invalid_hemisphere",
	"invalid_time",
	"invalid_date",
	"invalid_status",
	"invalid_satellite",
	"invalid_value",
	"checksum_error",
	"decode_error",
}

func (a AnomalyType) String() string {
	if a < 0 || int(a) >= len(anomalyNames) {
		return "unknown"
	}
	return anomalyNames[a]
}

// ValidationError represents a sentence whose fields decoded but whose
// values are out of their domain
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateMessage checks decoded values for domain validity.
// Returns a slice of validation errors (empty if the record is plausible).
// Decoding itself stays permissive; this is a separate, reporting-only pass.
func ValidateMessage(m Message) []ValidationError {
	errors := []ValidationError{}

	switch msg := m.(type) {
	case *GGA:
		errors = append(errors, validateTime("GGA", msg.Time)...)
		errors = append(errors, validatePosition("GGA", msg.Latitude, msg.LatHemi, msg.Longitude, msg.LonHemi)...)
	case *RMC:
		errors = append(errors, validateTime("RMC", msg.Time)...)
		errors = append(errors, validateStatus("RMC", msg.Status)...)
		errors = append(errors, validatePosition("RMC", msg.Latitude, msg.LatHemi, msg.Longitude, msg.LonHemi)...)
		errors = append(errors, validateDate("RMC", msg.Date)...)
		if msg.TrackAngle < 0 || msg.TrackAngle >= 360 {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidValue,
				Message: fmt.Sprintf("RMC track angle %.1f out of range (0-359.9)", msg.TrackAngle),
				Details: map[string]interface{}{"track": msg.TrackAngle},
			})
		}
	case *GSA:
		errors = append(errors, validateGSA(msg)...)
	case *GSV:
		errors = append(errors, validateGSV(msg)...)
	case *GLL:
		errors = append(errors, validateTime("GLL", msg.Time)...)
		errors = append(errors, validateStatus("GLL", msg.Status)...)
		errors = append(errors, validatePosition("GLL", msg.Latitude, msg.LatHemi, msg.Longitude, msg.LonHemi)...)
	case *GNS:
		errors = append(errors, validateTime("GNS", msg.Time)...)
		errors = append(errors, validatePosition("GNS", msg.Latitude, msg.LatHemi, msg.Longitude, msg.LonHemi)...)
	}

	return errors
}

// validatePosition checks DDMM.MMMM / DDDMM.MMMM values and hemispheres
func validatePosition(kind string, lat float64, latHemi byte, lon float64, lonHemi byte) []ValidationError {
	errors := []ValidationError{}

	if !validCoordinate(lat, 90) {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidCoordinate,
			Message: fmt.Sprintf("%s latitude %.4f out of range (max 9000.0000)", kind, lat),
			Details: map[string]interface{}{"latitude": lat},
		})
	}
	if latHemi != North && latHemi != South {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidHemisphere,
			Message: fmt.Sprintf("%s latitude hemisphere %q (expected N or S)", kind, latHemi),
			Details: map[string]interface{}{"hemisphere": string(latHemi)},
		})
	}
	if !validCoordinate(lon, 180) {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidCoordinate,
			Message: fmt.Sprintf("%s longitude %.4f out of range (max 18000.0000)", kind, lon),
			Details: map[string]interface{}{"longitude": lon},
		})
	}
	if lonHemi != East && lonHemi != West {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidHemisphere,
			Message: fmt.Sprintf("%s longitude hemisphere %q (expected E or W)", kind, lonHemi),
			Details: map[string]interface{}{"hemisphere": string(lonHemi)},
		})
	}

	return errors
}

// validCoordinate splits degrees from minutes and checks both
func validCoordinate(v float64, maxDegrees int) bool {
	if v < 0 {
		return false
	}
	degrees := int(v / 100)
	minutes := v - float64(degrees*100)
	if minutes >= 60 {
		return false
	}
	if degrees > maxDegrees || (degrees == maxDegrees && minutes > 0) {
		return false
	}
	return true
}

func validateTime(kind string, t Text) []ValidationError {
	if _, ok := ParseUTCTime(t); ok {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyInvalidTime,
		Message: fmt.Sprintf("%s time %q is not a valid hhmmss[.sss]", kind, t.String()),
		Details: map[string]interface{}{"time": t.String()},
	}}
}

func validateDate(kind string, d Text) []ValidationError {
	if _, ok := ParseDate(d); ok {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyInvalidDate,
		Message: fmt.Sprintf("%s date %q is not a valid ddmmyy", kind, d.String()),
		Details: map[string]interface{}{"date": d.String()},
	}}
}

func validateStatus(kind string, status byte) []ValidationError {
	if status == StatusActive || status == StatusVoid {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyInvalidStatus,
		Message: fmt.Sprintf("%s status %q (expected A or V)", kind, status),
		Details: map[string]interface{}{"status": string(status)},
	}}
}

// validateGSA checks fix type and mode
func validateGSA(m *GSA) []ValidationError {
	errors := []ValidationError{}

	if m.FixType < FixTypeNone || m.FixType > FixType3D {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("GSA fix type=%d (valid 1-3)", m.FixType),
			Details: map[string]interface{}{"fix_type": m.FixType},
		})
	}
	if m.Mode != 'A' && m.Mode != 'M' {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("GSA mode %q (expected A or M)", m.Mode),
			Details: map[string]interface{}{"mode": string(m.Mode)},
		})
	}

	return errors
}

// validateGSV checks sequencing and satellite geometry
func validateGSV(m *GSV) []ValidationError {
	errors := []ValidationError{}

	if m.MessageIndex == 0 || m.MessageIndex > m.MessageCount {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("GSV message %d of %d", m.MessageIndex, m.MessageCount),
			Details: map[string]interface{}{"index": m.MessageIndex, "count": m.MessageCount},
		})
	}

	for slot, s := range m.Satellites {
		if !s.Valid {
			continue
		}
		sat := s.Value
		if sat.Elevation.Valid && sat.Elevation.Value > 90 {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidSatellite,
				Message: fmt.Sprintf("GSV slot %d elevation=%d (max 90)", slot, sat.Elevation.Value),
				Details: map[string]interface{}{"slot": slot, "elevation": sat.Elevation.Value},
			})
		}
		if sat.Azimuth.Valid && sat.Azimuth.Value > 359 {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidSatellite,
				Message: fmt.Sprintf("GSV slot %d azimuth=%d (max 359)", slot, sat.Azimuth.Value),
				Details: map[string]interface{}{"slot": slot, "azimuth": sat.Azimuth.Value},
			})
		}
		if sat.SNR.Valid && sat.SNR.Value > 99 {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidSatellite,
				Message: fmt.Sprintf("GSV slot %d SNR=%d (max 99)", slot, sat.SNR.Value),
				Details: map[string]interface{}{"slot": slot, "snr": sat.SNR.Value},
			})
		}
	}

	return errors
}
