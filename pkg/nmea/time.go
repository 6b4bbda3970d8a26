// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import (
	"fmt"
	"time"
)

// UTCTime is a decoded hhmmss.sss time of day.
type UTCTime struct {
	Hour       uint8
	Minute     uint8
	Second     uint8 // 60 allowed for leap seconds
	Nanosecond uint32
}

// Date is a decoded ddmmyy date.
type Date struct {
	Day   uint8
	Month uint8
	Year  uint16 // full year; two digit years pivot at 80
}

// ParseUTCTime decodes a time field. ok is false when the text is malformed
// or out of range.
func ParseUTCTime(t Text) (UTCTime, bool) {
	b := t.Bytes()
	if len(b) < 6 {
		return UTCTime{}, false
	}
	hh, ok1 := twoDigits(b[0:2])
	mm, ok2 := twoDigits(b[2:4])
	ss, ok3 := twoDigits(b[4:6])
	if !ok1 || !ok2 || !ok3 || hh > 23 || mm > 59 || ss > 60 {
		return UTCTime{}, false
	}
	out := UTCTime{Hour: hh, Minute: mm, Second: ss}

	frac := b[6:]
	if len(frac) == 0 {
		return out, true
	}
	if frac[0] != '.' || len(frac) == 1 || len(frac) > 10 {
		return UTCTime{}, false
	}
	scale := uint32(100_000_000)
	for _, c := range frac[1:] {
		if c < '0' || c > '9' {
			return UTCTime{}, false
		}
		out.Nanosecond += uint32(c-'0') * scale
		scale /= 10
	}
	return out, true
}

// ParseDate decodes a date field, checking the day against the month.
func ParseDate(t Text) (Date, bool) {
	b := t.Bytes()
	if len(b) != 6 {
		return Date{}, false
	}
	dd, ok1 := twoDigits(b[0:2])
	mo, ok2 := twoDigits(b[2:4])
	yy, ok3 := twoDigits(b[4:6])
	if !ok1 || !ok2 || !ok3 || mo < 1 || mo > 12 || dd < 1 {
		return Date{}, false
	}
	year := 2000 + uint16(yy)
	if yy >= 80 {
		year = 1900 + uint16(yy)
	}
	if dd > daysIn(mo, year) {
		return Date{}, false
	}
	return Date{Day: dd, Month: mo, Year: year}, true
}

// Duration returns the time of day as an offset from midnight.
func (t UTCTime) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

func (t UTCTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%03d", t.Hour, t.Minute, t.Second, t.Nanosecond/1_000_000)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time combines a date and a time of day into a UTC instant.
func (d Date) Time(t UTCTime) time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC).Add(t.Duration())
}

func twoDigits(b []byte) (uint8, bool) {
	if b[0] < '0' || b[0] > '9' || b[1] < '0' || b[1] > '9' {
		return 0, false
	}
	return (b[0]-'0')*10 + (b[1] - '0'), true
}

func daysIn(month uint8, year uint16) uint8 {
	switch month {
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}
