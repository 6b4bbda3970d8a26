// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

const hexDigits = "0123456789ABCDEF"

// Checksum computes the XOR of every byte in body. body must exclude the
// leading '$' and the '*' delimiter.
func Checksum(body []byte) byte {
	var sum byte
	for _, b := range body {
		sum ^= b
	}
	return sum
}

// VerifyChecksum compares the checksum of body against two ASCII hex digits.
// Upper and lower case digits are accepted; any other byte is a mismatch.
func VerifyChecksum(body []byte, claimed [2]byte) bool {
	hi, ok := hexValue(claimed[0])
	if !ok {
		return false
	}
	lo, ok := hexValue(claimed[1])
	if !ok {
		return false
	}
	return Checksum(body) == hi<<4|lo
}

// FormatChecksum renders a checksum as two upper case hex digits.
func FormatChecksum(sum byte) [2]byte {
	return [2]byte{hexDigits[sum>>4], hexDigits[sum&0x0F]}
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

func isHex(c byte) bool {
	_, ok := hexValue(c)
	return ok
}
