// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks sentence statistics and error rates.
// It is not safe for concurrent use; callers serialize access.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalSentences   uint64
	ValidSentences   uint64
	PerKind          [KindGNS + 1]uint64
	ChecksumErrors   uint64
	MissingChecksums uint64
	InvalidMessages  uint64
	UnknownSentences uint64
	TooLong          uint64
	NoiseBytes       uint64
	AnomalousValues  uint64
	InvalidPositions uint64
	InvalidTimes     uint64
	InvalidSatellite uint64

	// Rates (calculated)
	SentenceRate float64 // sentences/sec
	ErrorRate    float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// UpdateScan accounts for framing: bytes skipped as noise and oversized
// sentences. Complete sentences are counted by Update.
func (s *Statistics) UpdateScan(res ScanResult) {
	switch res.Status {
	case ScanNoise:
		s.NoiseBytes += uint64(res.Consumed)
	case ScanIncomplete:
		s.NoiseBytes += uint64(res.Consumed)
	case ScanTooLong:
		s.NoiseBytes += uint64(res.Start)
		s.TooLong++
	case ScanComplete:
		s.NoiseBytes += uint64(res.Start)
	}
}

// Update updates statistics based on one decode outcome and its validation
// errors. A nil message with a nil error is an unsupported sentence.
func (s *Statistics) Update(msg Message, parseErr error, validationErrors []ValidationError) {
	s.TotalSentences++
	s.LastUpdateTime = time.Now()

	// Handle parse errors
	if parseErr != nil {
		switch {
		case errors.Is(parseErr, ErrInvalidChecksum):
			s.ChecksumErrors++
		case errors.Is(parseErr, ErrMissingChecksum):
			s.MissingChecksums++
		default:
			s.InvalidMessages++
		}
		return
	}

	if msg == nil {
		s.UnknownSentences++
		return
	}
	if k := msg.Kind(); int(k) < len(s.PerKind) {
		s.PerKind[k]++
	}

	// Handle validation errors
	if len(validationErrors) == 0 {
		s.ValidSentences++
		return
	}
	s.AnomalousValues++
	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyInvalidCoordinate, AnomalyInvalidHemisphere:
			s.InvalidPositions++
		case AnomalyInvalidTime, AnomalyInvalidDate:
			s.InvalidTimes++
		case AnomalyInvalidSatellite:
			s.InvalidSatellite++
		}
	}
}

// Errors returns the number of sentences that failed to decode or validate
func (s *Statistics) Errors() uint64 {
	return s.ChecksumErrors + s.MissingChecksums + s.InvalidMessages + s.AnomalousValues
}

// CalculateRates calculates sentence and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.SentenceRate = float64(s.TotalSentences) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	percent := func(n uint64) float64 {
		if s.TotalSentences == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalSentences)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Sentences: %8d\n", s.TotalSentences)
	result += fmt.Sprintf("Valid Sentences: %8d (%.1f%%)\n", s.ValidSentences, percent(s.ValidSentences))

	for k := KindGGA; k <= KindGNS; k++ {
		if s.PerKind[k] > 0 {
			result += fmt.Sprintf("  %s:             %5d\n", k, s.PerKind[k])
		}
	}

	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, percent(s.ChecksumErrors))
	}
	if s.MissingChecksums > 0 {
		result += fmt.Sprintf("No Checksum:     %8d (%.1f%%)\n", s.MissingChecksums, percent(s.MissingChecksums))
	}
	if s.InvalidMessages > 0 {
		result += fmt.Sprintf("Invalid Msgs:    %8d (%.1f%%)\n", s.InvalidMessages, percent(s.InvalidMessages))
	}
	if s.UnknownSentences > 0 {
		result += fmt.Sprintf("Unsupported:     %8d (%.1f%%)\n", s.UnknownSentences, percent(s.UnknownSentences))
	}
	if s.AnomalousValues > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, percent(s.AnomalousValues))
		if s.InvalidPositions > 0 {
			result += fmt.Sprintf("  Bad Position:     %5d\n", s.InvalidPositions)
		}
		if s.InvalidTimes > 0 {
			result += fmt.Sprintf("  Bad Time/Date:    %5d\n", s.InvalidTimes)
		}
		if s.InvalidSatellite > 0 {
			result += fmt.Sprintf("  Bad Satellite:    %5d\n", s.InvalidSatellite)
		}
	}
	if s.TooLong > 0 {
		result += fmt.Sprintf("Too Long:        %8d\n", s.TooLong)
	}
	if s.NoiseBytes > 0 {
		result += fmt.Sprintf("Noise Bytes:     %8d\n", s.NoiseBytes)
	}

	result += fmt.Sprintf("Sentence Rate:   %8.1f sent/sec\n", s.SentenceRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
