// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

import (
	"strconv"
	"unsafe"
)

// Option holds a value that may be absent from the sentence.
type Option[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Or returns the value, or def when absent.
func (o Option[T]) Or(def T) T {
	if o.Valid {
		return o.Value
	}
	return def
}

// Text is a fixed-capacity copy of a textual field. Records hold Text rather
// than string so decoding does not allocate and never aliases the input.
type Text struct {
	buf [MaxFieldSize]byte
	n   uint8
}

// NewText copies b, truncating at MaxFieldSize.
func NewText(b []byte) Text {
	var t Text
	t.n = uint8(copy(t.buf[:], b))
	return t
}

// String returns the text as a string.
func (t Text) String() string {
	return string(t.buf[:t.n])
}

// Bytes returns a view of the text.
func (t *Text) Bytes() []byte {
	return t.buf[:t.n]
}

// Len returns the number of bytes held.
func (t Text) Len() int {
	return int(t.n)
}

// IsEmpty reports whether the text has no bytes.
func (t Text) IsEmpty() bool {
	return t.n == 0
}

// Number is the closed set of types FieldAs converts to.
type Number interface {
	int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// Fields is a bounded, ordered view of the comma-separated fields of one
// sentence. Each entry borrows from the buffer given to SplitFields.
type Fields struct {
	fields [MaxFields][]byte
	count  int
}

// SplitFields splits payload on ',' into at most MaxFields fields. Fields
// longer than MaxFieldSize are truncated and fields past MaxFields dropped.
// An empty payload yields a single empty field.
func SplitFields(payload []byte) Fields {
	var f Fields
	start := 0
	for i := 0; i <= len(payload); i++ {
		if i < len(payload) && payload[i] != FieldSep {
			continue
		}
		if f.count < MaxFields {
			field := payload[start:i]
			if len(field) > MaxFieldSize {
				field = field[:MaxFieldSize]
			}
			f.fields[f.count] = field[:len(field):len(field)]
			f.count++
		}
		start = i + 1
	}
	return f
}

// Len returns the number of fields present.
func (f *Fields) Len() int {
	return f.count
}

// Raw returns field i and whether the index is in range. A present field may
// be empty.
func (f *Fields) Raw(i int) ([]byte, bool) {
	if i < 0 || i >= f.count {
		return nil, false
	}
	return f.fields[i], true
}

// IsEmpty reports whether field i is absent or empty.
func (f *Fields) IsEmpty(i int) bool {
	raw, ok := f.Raw(i)
	return !ok || len(raw) == 0
}

// Char returns the first byte of field i.
func (f *Fields) Char(i int) Option[byte] {
	raw, ok := f.Raw(i)
	if !ok || len(raw) == 0 {
		return None[byte]()
	}
	return Some(raw[0])
}

// Text returns a copy of field i.
func (f *Fields) Text(i int) Option[Text] {
	raw, ok := f.Raw(i)
	if !ok || len(raw) == 0 {
		return None[Text]()
	}
	return Some(NewText(raw))
}

// FieldAs parses field i as T. The result is absent when the index is out of
// range, the field is empty, or the text is not a plain decimal number that
// fits T.
func FieldAs[T Number](f *Fields, i int) Option[T] {
	raw, ok := f.Raw(i)
	if !ok || len(raw) == 0 {
		return None[T]()
	}

	var zero T
	bits := int(unsafe.Sizeof(zero)) * 8

	switch any(zero).(type) {
	case float32, float64:
		if !isDecimal(raw, true) {
			return None[T]()
		}
		v, err := strconv.ParseFloat(bytesToString(raw), bits)
		if err != nil {
			return None[T]()
		}
		return Some(T(v))

	case int, int8, int16, int32, int64:
		if !isDecimal(raw, false) {
			return None[T]()
		}
		v, err := strconv.ParseInt(bytesToString(raw), 10, bits)
		if err != nil {
			return None[T]()
		}
		return Some(T(v))

	default:
		if !isDecimal(raw, false) {
			return None[T]()
		}
		if raw[0] == '+' {
			raw = raw[1:]
		}
		v, err := strconv.ParseUint(bytesToString(raw), 10, bits)
		if err != nil {
			return None[T]()
		}
		return Some(T(v))
	}
}

// isDecimal reports whether b is an optional sign followed by digits, with at
// most one decimal point when allowPoint is set. At least one digit is
// required.
func isDecimal(b []byte, allowPoint bool) bool {
	if len(b) > 0 && (b[0] == '+' || b[0] == '-') {
		b = b[1:]
	}
	digits := 0
	point := false
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && allowPoint && !point:
			point = true
		default:
			return false
		}
	}
	return digits > 0
}

// bytesToString views b as a string without copying. The result must not
// outlive the call it is passed to.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}
