// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import "bytes"

// ScanStatus describes what Scan found at the front of a buffer.
type ScanStatus uint8

const (
	// ScanIncomplete means a sentence has started but the buffer ends before
	// its terminator. Leading noise is consumed; the partial sentence is not.
	ScanIncomplete ScanStatus = iota
	// ScanComplete means a terminated sentence was found.
	ScanComplete
	// ScanTooLong means a sentence exceeded MaxSentenceSize before its
	// terminator. Everything up to the next '$' is consumed.
	ScanTooLong
	// ScanNoise means the buffer holds no '$' and was consumed whole.
	ScanNoise
)

// ChecksumState is the checksum verdict for a complete sentence.
type ChecksumState uint8

const (
	ChecksumAbsent ChecksumState = iota
	ChecksumValid
	ChecksumInvalid
)

// ScanResult is the outcome of one Scan call. Body and the offsets refer to
// the buffer that was scanned.
type ScanResult struct {
	Status   ScanStatus
	Checksum ChecksumState

	// Start is the offset of '$'. For a complete sentence End is the offset
	// just past its terminator; for an oversized one it is the offset of the
	// byte that broke the limit.
	Start int
	End   int

	// Consumed is how many bytes the caller should drop from the front of the
	// buffer before scanning again.
	Consumed int

	// Body is the text between '$' and '*' (or the terminator).
	Body []byte
}

// Scan finds the first sentence boundary in buf. It never reads past
// len(buf) and never retains buf.
//
// A '$' seen inside a sentence restarts it; the bytes before are noise. CR
// or LF terminates a sentence and any CR/LF run directly after it is consumed
// with it.
func Scan(buf []byte) ScanResult {
	start := bytes.IndexByte(buf, StartByte)
	if start < 0 {
		if len(buf) == 0 {
			return ScanResult{Status: ScanIncomplete}
		}
		return ScanResult{Status: ScanNoise, Consumed: len(buf)}
	}

	state := stateBody
	star := -1
	var claimed [2]byte
	digits := 0
	extra := false // bytes after the two checksum digits

	for i := start + 1; i < len(buf); i++ {
		b := buf[i]

		// Handle framing bytes
		if b == StartByte {
			start = i
			state = stateBody
			star = -1
			digits = 0
			extra = false
			continue
		}

		if b == CR || b == LF {
			end := skipLineEnd(buf, i)
			res := ScanResult{
				Status:   ScanComplete,
				Start:    start,
				End:      end,
				Consumed: end,
			}
			if state == stateBody {
				res.Body = buf[start+1 : i]
				res.Checksum = ChecksumAbsent
				return res
			}
			res.Body = buf[start+1 : star]
			if digits == 2 && !extra && VerifyChecksum(res.Body, claimed) {
				res.Checksum = ChecksumValid
			} else {
				res.Checksum = ChecksumInvalid
			}
			return res
		}

		// '$' through this byte must fit
		if i-start+1 > MaxSentenceSize {
			next := len(buf)
			if j := bytes.IndexByte(buf[i+1:], StartByte); j >= 0 {
				next = i + 1 + j
			}
			return ScanResult{
				Status:   ScanTooLong,
				Start:    start,
				End:      i,
				Consumed: next,
			}
		}

		// State machine
		switch state {
		case stateBody:
			if b == ChecksumByte {
				star = i
				state = stateChecksum
			}

		case stateChecksum:
			if digits < 2 {
				claimed[digits] = b
				digits++
			} else {
				extra = true
			}
		}
	}

	return ScanResult{
		Status:   ScanIncomplete,
		Start:    start,
		Consumed: start,
	}
}

// skipLineEnd returns the offset just past the CR/LF run starting at i.
func skipLineEnd(buf []byte, i int) int {
	for i < len(buf) && (buf[i] == CR || buf[i] == LF) {
		i++
	}
	return i
}
