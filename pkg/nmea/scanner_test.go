// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import (
	"strings"
	"testing"
)

// ============================================================
// Scanner Tests
// ============================================================

func TestScan_CompleteWithChecksum(t *testing.T) {
	buf := []byte(ggaSentence)
	res := Scan(buf)

	if res.Status != ScanComplete {
		t.Fatalf("Status = %v, want complete", res.Status)
	}
	if res.Checksum != ChecksumValid {
		t.Errorf("Checksum = %v, want valid", res.Checksum)
	}
	if res.Start != 0 || res.End != len(buf) || res.Consumed != len(buf) {
		t.Errorf("Start=%d End=%d Consumed=%d, want 0 %d %d", res.Start, res.End, res.Consumed, len(buf), len(buf))
	}
	if string(res.Body) != ggaBody {
		t.Errorf("Body = %q, want %q", res.Body, ggaBody)
	}
}

func TestScan_ChecksumStates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ChecksumState
	}{
		{"valid upper", "$" + gllBody + "*1D\r\n", ChecksumValid},
		{"valid lower", "$" + gllBody + "*1d\r\n", ChecksumValid},
		{"mismatch", "$" + gllBody + "*00\r\n", ChecksumInvalid},
		{"non-hex", "$" + gllBody + "*ZZ\r\n", ChecksumInvalid},
		{"one digit", "$" + gllBody + "*1\r\n", ChecksumInvalid},
		{"no digits", "$" + gllBody + "*\r\n", ChecksumInvalid},
		{"extra digit", "$" + gllBody + "*1DX\r\n", ChecksumInvalid},
		{"absent", "$" + gllBody + "\r\n", ChecksumAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Scan([]byte(tt.input))
			if res.Status != ScanComplete {
				t.Fatalf("Status = %v, want complete", res.Status)
			}
			if res.Checksum != tt.want {
				t.Errorf("Checksum = %v, want %v", res.Checksum, tt.want)
			}
			if res.Consumed != len(tt.input) {
				t.Errorf("Consumed = %d, want %d", res.Consumed, len(tt.input))
			}
			if string(res.Body) != gllBody {
				t.Errorf("Body = %q, want %q", res.Body, gllBody)
			}
		})
	}
}

func TestScan_LineEndings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		consumed int
	}{
		{"CRLF", "$GPVTG,,,,,,,,\r\n", 16},
		{"LF only", "$GPVTG,,,,,,,,\n", 15},
		{"CR only", "$GPVTG,,,,,,,,\r", 15},
		{"doubled", "$GPVTG,,,,,,,,\r\n\r\n", 18},
		{"terminator then next", "$GPVTG,,,,,,,,\r\n$GP", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Scan([]byte(tt.input))
			if res.Status != ScanComplete {
				t.Fatalf("Status = %v, want complete", res.Status)
			}
			if res.Consumed != tt.consumed {
				t.Errorf("Consumed = %d, want %d", res.Consumed, tt.consumed)
			}
			if string(res.Body) != "GPVTG,,,,,,,," {
				t.Errorf("Body = %q", res.Body)
			}
		})
	}
}

func TestScan_Noise(t *testing.T) {
	res := Scan([]byte("hello world\r\n"))
	if res.Status != ScanNoise || res.Consumed != 13 {
		t.Errorf("got %v consumed %d, want noise consumed 13", res.Status, res.Consumed)
	}
}

func TestScan_Empty(t *testing.T) {
	res := Scan(nil)
	if res.Status != ScanIncomplete || res.Consumed != 0 {
		t.Errorf("got %v consumed %d, want incomplete consumed 0", res.Status, res.Consumed)
	}
}

func TestScan_Incomplete(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		consumed int
	}{
		{"garbage prefix", "garbage$GPRM", 7},
		{"starts with dollar", "$GPRM", 0},
		{"inside checksum", "$GPGLL,1*1", 0},
		{"only dollar", "$", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Scan([]byte(tt.input))
			if res.Status != ScanIncomplete {
				t.Fatalf("Status = %v, want incomplete", res.Status)
			}
			if res.Consumed != tt.consumed {
				t.Errorf("Consumed = %d, want %d", res.Consumed, tt.consumed)
			}
		})
	}
}

func TestScan_RestartOnDollar(t *testing.T) {
	input := "$GPGG" + ggaSentence
	res := Scan([]byte(input))
	if res.Status != ScanComplete || res.Checksum != ChecksumValid {
		t.Fatalf("got %v/%v, want complete/valid", res.Status, res.Checksum)
	}
	if res.Start != 5 {
		t.Errorf("Start = %d, want 5", res.Start)
	}
	if res.Consumed != len(input) {
		t.Errorf("Consumed = %d, want %d", res.Consumed, len(input))
	}
}

func TestScan_RestartInsideChecksum(t *testing.T) {
	input := "$GPGLL,1*4" + ggaSentence
	res := Scan([]byte(input))
	if res.Status != ScanComplete || res.Checksum != ChecksumValid {
		t.Fatalf("got %v/%v, want complete/valid", res.Status, res.Checksum)
	}
	if string(res.Body) != ggaBody {
		t.Errorf("Body = %q", res.Body)
	}
}

func TestScan_LengthLimit(t *testing.T) {
	// 82 bytes from '$' is the largest legal sentence
	exact := "$" + strings.Repeat("A", MaxSentenceSize-1) + "\r\n"
	res := Scan([]byte(exact))
	if res.Status != ScanComplete {
		t.Errorf("82 byte sentence: Status = %v, want complete", res.Status)
	}

	over := "$" + strings.Repeat("A", MaxSentenceSize) + "\r\n"
	res = Scan([]byte(over))
	if res.Status != ScanTooLong {
		t.Fatalf("83 byte sentence: Status = %v, want too long", res.Status)
	}
	if res.Consumed != len(over) {
		t.Errorf("Consumed = %d, want %d", res.Consumed, len(over))
	}
}

func TestScan_TooLongStopsAtNextDollar(t *testing.T) {
	junk := "$" + strings.Repeat("A", 90)
	input := junk + ggaSentence
	res := Scan([]byte(input))
	if res.Status != ScanTooLong {
		t.Fatalf("Status = %v, want too long", res.Status)
	}
	if res.Consumed != len(junk) {
		t.Errorf("Consumed = %d, want %d", res.Consumed, len(junk))
	}

	next := Scan([]byte(input[res.Consumed:]))
	if next.Status != ScanComplete || next.Checksum != ChecksumValid {
		t.Errorf("following sentence: got %v/%v", next.Status, next.Checksum)
	}
}

func TestScan_TooLongAtEndOfBuffer(t *testing.T) {
	input := "xx$" + strings.Repeat("B", 100)
	res := Scan([]byte(input))
	if res.Status != ScanTooLong || res.Consumed != len(input) {
		t.Errorf("got %v consumed %d, want too long consumed %d", res.Status, res.Consumed, len(input))
	}
}

func TestScan_PartialWithinLimitIsIncomplete(t *testing.T) {
	input := "$" + strings.Repeat("A", MaxSentenceSize-1)
	res := Scan([]byte(input))
	if res.Status != ScanIncomplete || res.Consumed != 0 {
		t.Errorf("got %v consumed %d, want incomplete consumed 0", res.Status, res.Consumed)
	}
}
