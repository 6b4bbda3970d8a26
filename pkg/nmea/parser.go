// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package nmea

// Parser ties the scanner, the field store and the decoders together. A
// Parser is immutable once built and safe for concurrent use. The zero value
// is ready to use.
type Parser struct {
	requireChecksum bool
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithRequireChecksum rejects sentences that carry no checksum with
// ErrMissingChecksum. By default they are accepted unverified.
func WithRequireChecksum(require bool) ParserOption {
	return func(p *Parser) {
		p.requireChecksum = require
	}
}

// NewParser creates a parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequiresChecksum reports whether the parser rejects unchecked sentences.
func (p *Parser) RequiresChecksum() bool {
	return p.requireChecksum
}

// ParseOption adjusts a single Parse call.
type ParseOption struct {
	receivedAt Option[uint64]
}

// WithTimestamp stamps the decoded record with a reception time.
func WithTimestamp(ts uint64) ParseOption {
	return ParseOption{receivedAt: Some(ts)}
}

var defaultParser Parser

// Parse decodes the first sentence in buf with the default parser.
func Parse(buf []byte, opts ...ParseOption) (Message, int, error) {
	return defaultParser.Parse(buf, opts...)
}

// ParseAll decodes every complete sentence in buf with the default parser.
func ParseAll(buf []byte, fn func(Message, error), opts ...ParseOption) int {
	return defaultParser.ParseAll(buf, fn, opts...)
}

// Parse decodes the first sentence in buf. n is always the number of bytes
// the caller should drop before the next call.
//
// The outcomes are:
//   - msg != nil: a decoded record
//   - msg == nil, err == nil: nothing to report (partial input, noise, an
//     oversized sentence or an unsupported kind)
//   - err != nil: a *SentenceError wrapping ErrInvalidChecksum,
//     ErrMissingChecksum or ErrInvalidMessage
func (p *Parser) Parse(buf []byte, opts ...ParseOption) (msg Message, n int, err error) {
	res := Scan(buf)
	msg, err = p.Decode(res, opts...)
	return msg, res.Consumed, err
}

// Decode turns an already scanned result into a record. Results other than
// ScanComplete decode to nothing. Callers that want to observe framing, such
// as noise and oversized sentences, scan themselves and then call Decode.
func (p *Parser) Decode(res ScanResult, opts ...ParseOption) (Message, error) {
	if res.Status != ScanComplete {
		return nil, nil
	}

	var talker Talker
	var kind Kind
	address, payload, hasPayload, addrOK := splitAddress(res.Body)
	if addrOK {
		talker, kind = Resolve(address)
	}

	// Checksum is judged before the kind so corrupt input is always visible
	switch res.Checksum {
	case ChecksumInvalid:
		return nil, &SentenceError{Kind: kind, Talker: talker, Err: ErrInvalidChecksum}
	case ChecksumAbsent:
		if p.requireChecksum {
			return nil, &SentenceError{Kind: kind, Talker: talker, Err: ErrMissingChecksum}
		}
	}

	if kind == KindUnknown {
		return nil, nil
	}

	h := Header{Talker: talker}
	for _, opt := range opts {
		if opt.receivedAt.Valid {
			h.ReceivedAt = opt.receivedAt
		}
	}

	var fields Fields
	if hasPayload {
		fields = SplitFields(payload)
	}

	msg, ok := decode(kind, &fields, h)
	if !ok {
		return nil, &SentenceError{Kind: kind, Talker: talker, Err: ErrInvalidMessage}
	}
	return msg, nil
}

// ParseAll calls Parse until buf is exhausted or only a partial sentence
// remains, invoking fn for every record and every error. It returns the
// number of bytes consumed; the remainder should be kept for the next read.
func (p *Parser) ParseAll(buf []byte, fn func(Message, error), opts ...ParseOption) int {
	off := 0
	for off < len(buf) {
		msg, n, err := p.Parse(buf[off:], opts...)
		if n == 0 {
			break
		}
		off += n
		if msg != nil || err != nil {
			fn(msg, err)
		}
	}
	return off
}

func decode(kind Kind, f *Fields, h Header) (Message, bool) {
	switch kind {
	case KindGGA:
		if m, ok := DecodeGGA(f, h); ok {
			return &m, true
		}
	case KindRMC:
		if m, ok := DecodeRMC(f, h); ok {
			return &m, true
		}
	case KindGSA:
		if m, ok := DecodeGSA(f, h); ok {
			return &m, true
		}
	case KindGSV:
		if m, ok := DecodeGSV(f, h); ok {
			return &m, true
		}
	case KindGLL:
		if m, ok := DecodeGLL(f, h); ok {
			return &m, true
		}
	case KindVTG:
		if m, ok := DecodeVTG(f, h); ok {
			return &m, true
		}
	case KindGNS:
		if m, ok := DecodeGNS(f, h); ok {
			return &m, true
		}
	}
	return nil, false
}
