// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"io"
	"time"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

// sentenceEvent is one framing outcome and, for complete sentences, its
// decode and validation results. scan.Body aliases the stream buffer and is
// only valid during the callback.
type sentenceEvent struct {
	at    time.Time
	scan  nmea.ScanResult
	raw   string
	msg   nmea.Message
	err   error
	verrs []nmea.ValidationError
}

// complete reports whether the event carries a framed sentence.
func (e *sentenceEvent) complete() bool {
	return e.scan.Status == nmea.ScanComplete
}

// sentenceStream carries partial sentences across reads.
type sentenceStream struct {
	parser  *nmea.Parser
	pending []byte
	now     func() time.Time

	// lastCR is set when the previous read ended on the CR of a CR LF pair
	lastCR bool
}

func newSentenceStream(parser *nmea.Parser) *sentenceStream {
	return &sentenceStream{
		parser:  parser,
		pending: make([]byte, 0, 2*nmea.MaxSentenceSize),
		now:     time.Now,
	}
}

// Feed appends data and reports every outcome the buffer now yields.
func (s *sentenceStream) Feed(data []byte, fn func(sentenceEvent)) {
	if s.lastCR && len(data) > 0 && data[0] == nmea.LF {
		data = data[1:]
	}
	s.lastCR = false

	s.pending = append(s.pending, data...)
	buf := s.pending

	for len(buf) > 0 {
		res := nmea.Scan(buf)
		if res.Consumed == 0 {
			break
		}

		ev := sentenceEvent{at: s.now(), scan: res}
		switch res.Status {
		case nmea.ScanComplete:
			ev.raw = string(trimLineEnd(buf[res.Start:res.End]))
			ev.msg, ev.err = s.parser.Decode(res, nmea.WithTimestamp(uint64(ev.at.UnixMilli())))
			if ev.msg != nil {
				ev.verrs = nmea.ValidateMessage(ev.msg)
			}
		case nmea.ScanTooLong:
			ev.raw = string(buf[res.Start:res.End])
		}
		fn(ev)

		if res.Status == nmea.ScanComplete && res.Consumed == len(buf) {
			s.lastCR = buf[len(buf)-1] == nmea.CR
		}
		buf = buf[res.Consumed:]
	}

	s.pending = append(s.pending[:0], buf...)
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (s *sentenceStream) Pending() int {
	return len(s.pending)
}

// readStream reads conn until it fails or reaches EOF, feeding every chunk
// through stream. EOF is reported as a nil error.
func readStream(conn Connection, stream *sentenceStream, fn func(sentenceEvent)) error {
	buf := make([]byte, 512)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			stream.Feed(buf[:n], fn)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// isEndOfInput reports whether err marks a normal end of the input
func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed)
}

func trimLineEnd(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == nmea.CR || b[len(b)-1] == nmea.LF) {
		b = b[:len(b)-1]
	}
	return b
}
