// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/Thermoquad/sextant/internal/export"
	"github.com/Thermoquad/sextant/internal/store"
	"github.com/Thermoquad/sextant/pkg/nmea"
)

func sentence(body string) string {
	sum := nmea.FormatChecksum(nmea.Checksum([]byte(body)))
	return "$" + body + "*" + string(sum[:]) + "\r\n"
}

const (
	ggaBody = "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"
	gsvBody = "GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45"
	rmcBody = "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
)

// bufferConnection replays a byte slice in fixed size reads
type bufferConnection struct {
	r     *bytes.Reader
	chunk int
	err   error
}

func (b *bufferConnection) Read(p []byte) (int, error) {
	if len(p) > b.chunk {
		p = p[:b.chunk]
	}
	n, err := b.r.Read(p)
	if err == io.EOF && b.err != nil {
		return n, b.err
	}
	return n, err
}

func (b *bufferConnection) Close() error { return nil }

func fixedClock(s *sentenceStream) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
}

// ============================================================================
// Stream framing
// ============================================================================

func TestSentenceStream_SplitAcrossFeeds(t *testing.T) {
	s := newSentenceStream(&nmea.Parser{})
	fixedClock(s)
	full := sentence(ggaBody)

	var events []sentenceEvent
	collect := func(ev sentenceEvent) { events = append(events, ev) }

	s.Feed([]byte(full[:30]), collect)
	if len(events) != 0 {
		t.Fatalf("partial sentence produced %d events", len(events))
	}
	if s.Pending() != 30 {
		t.Fatalf("Pending()=%d, want 30", s.Pending())
	}

	s.Feed([]byte(full[30:]), collect)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if !ev.complete() || ev.err != nil || ev.msg == nil || ev.msg.Kind() != nmea.KindGGA {
		t.Fatalf("event=%+v", ev)
	}
	if ev.raw != strings.TrimRight(full, "\r\n") {
		t.Errorf("raw=%q", ev.raw)
	}
	if ts, ok := ev.msg.MessageHeader().ReceivedAt.Get(); !ok || ts != uint64(ev.at.UnixMilli()) {
		t.Errorf("ReceivedAt=%v ok=%v", ts, ok)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending()=%d after complete sentence", s.Pending())
	}
}

func TestSentenceStream_LineEndSplitAcrossFeeds(t *testing.T) {
	s := newSentenceStream(&nmea.Parser{})
	full := sentence(ggaBody)

	var events []sentenceEvent
	collect := func(ev sentenceEvent) { events = append(events, ev) }

	s.Feed([]byte(full[:len(full)-1]), collect)
	s.Feed([]byte(full[len(full)-1:]+full), collect)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for i, ev := range events {
		if ev.msg == nil || ev.scan.Start != 0 {
			t.Errorf("event %d: msg=%v start=%d", i, ev.msg, ev.scan.Start)
		}
	}
}

func TestSentenceStream_Outcomes(t *testing.T) {
	s := newSentenceStream(&nmea.Parser{})
	stream := "xx" +
		sentence(ggaBody) +
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*00\r\n" +
		"$" + strings.Repeat("B", 100) + "\r\n" +
		sentence("GPXYZ,1") +
		sentence("GPGLL,4916.45,N,12311.12,W,225444,X,")

	var events []sentenceEvent
	s.Feed([]byte(stream), func(ev sentenceEvent) { events = append(events, ev) })

	if len(events) != 5 {
		t.Fatalf("got %d events, want 5", len(events))
	}
	if events[0].scan.Start != 2 || events[0].msg == nil {
		t.Errorf("first sentence: start=%d msg=%v", events[0].scan.Start, events[0].msg)
	}
	if !errors.Is(events[1].err, nmea.ErrInvalidChecksum) {
		t.Errorf("second event err=%v", events[1].err)
	}
	if events[2].scan.Status != nmea.ScanTooLong {
		t.Errorf("third event status=%v", events[2].scan.Status)
	}
	if events[3].msg != nil || events[3].err != nil || !events[3].complete() {
		t.Errorf("unsupported event=%+v", events[3])
	}
	if len(events[4].verrs) == 0 {
		t.Error("GLL with status X should carry validation errors")
	}
}

func TestReadStream_ChunkedConnection(t *testing.T) {
	data := sentence(ggaBody) + sentence(gsvBody) + sentence(rmcBody)
	for _, chunk := range []int{1, 7, 64, 512} {
		conn := &bufferConnection{r: bytes.NewReader([]byte(data)), chunk: chunk}
		var kinds []nmea.Kind
		err := readStream(conn, newSentenceStream(&nmea.Parser{}), func(ev sentenceEvent) {
			if ev.msg != nil {
				kinds = append(kinds, ev.msg.Kind())
			}
		})
		if err != nil {
			t.Fatalf("chunk %d: readStream() error: %v", chunk, err)
		}
		if len(kinds) != 3 || kinds[0] != nmea.KindGGA || kinds[1] != nmea.KindGSV || kinds[2] != nmea.KindRMC {
			t.Errorf("chunk %d: kinds=%v", chunk, kinds)
		}
	}
}

func TestReadStream_FileReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.nmea")
	data := "garbage" + sentence(ggaBody) + sentence(rmcBody)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	conn, name, err := openConnection(config.ConnectionConfig{File: path})
	if err != nil {
		t.Fatalf("openConnection() error: %v", err)
	}
	defer conn.Close()
	if !strings.Contains(name, "capture.nmea") {
		t.Errorf("name=%q", name)
	}

	var kinds []nmea.Kind
	if err := readStream(conn, newSentenceStream(&nmea.Parser{}), func(ev sentenceEvent) {
		if ev.msg != nil {
			kinds = append(kinds, ev.msg.Kind())
		}
	}); err != nil {
		t.Fatalf("readStream() error: %v", err)
	}
	if len(kinds) != 2 || kinds[0] != nmea.KindGGA || kinds[1] != nmea.KindRMC {
		t.Errorf("kinds=%v", kinds)
	}
}

func TestOpenConnection_MissingFile(t *testing.T) {
	_, _, err := openConnection(config.ConnectionConfig{File: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatal("expected error for missing capture file")
	}
}

func TestReadStream_PropagatesError(t *testing.T) {
	boom := errors.New("port unplugged")
	conn := &bufferConnection{r: bytes.NewReader([]byte(sentence(ggaBody))), chunk: 512, err: boom}

	count := 0
	err := readStream(conn, newSentenceStream(&nmea.Parser{}), func(ev sentenceEvent) {
		if ev.msg != nil {
			count++
		}
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if count != 1 {
		t.Errorf("decoded %d sentences before the error, want 1", count)
	}
	if isEndOfInput(err) {
		t.Error("a port error is not end of input")
	}
	if !isEndOfInput(io.EOF) || !isEndOfInput(ErrConnectionClosed) {
		t.Error("EOF and closed WebSocket should be end of input")
	}
}

func TestReadStream_RequireChecksum(t *testing.T) {
	conn := &bufferConnection{r: bytes.NewReader([]byte("$" + ggaBody + "\r\n")), chunk: 512}
	var got error
	parser := nmea.NewParser(nmea.WithRequireChecksum(true))
	readStream(conn, newSentenceStream(parser), func(ev sentenceEvent) {
		if ev.complete() {
			got = ev.err
		}
	})
	if !errors.Is(got, nmea.ErrMissingChecksum) {
		t.Fatalf("err=%v, want ErrMissingChecksum", got)
	}
}

// ============================================================================
// Discovery survey
// ============================================================================

func TestSurvey(t *testing.T) {
	s := newSurvey()
	stream := sentence(ggaBody) + sentence(ggaBody) + sentence("GLGSV,1,1,01,65,10,100,30") +
		sentence("PUBX,00,081350.00") + sentence("GPTXT,01,01,02,ANTSTATUS=OK") +
		"$GPGGA,1*00\r\n"
	newSentenceStream(&nmea.Parser{}).Feed([]byte(stream), s.record)

	lines := s.lines()
	if len(lines) != 3 {
		t.Fatalf("lines=%q, want 3", lines)
	}
	if !strings.Contains(lines[0], "GPGGA") || !strings.HasSuffix(lines[0], " 2") {
		t.Errorf("most frequent first: %q", lines[0])
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "GLGSV  GLONASS") {
		t.Errorf("missing GLONASS GSV line in %q", joined)
	}
	if !strings.Contains(joined, "GPTXT  GPS      unsupported") {
		t.Errorf("missing unsupported TXT line in %q", joined)
	}
	if strings.Contains(joined, "PUBX") {
		t.Errorf("proprietary short address should be skipped: %q", joined)
	}
	if s.errors != 1 {
		t.Errorf("errors=%d, want 1", s.errors)
	}
}

// ============================================================================
// TUI model
// ============================================================================

func TestModel_HandleEvents(t *testing.T) {
	m := initialModel("Replay: test", time.Second, false)
	s := newSentenceStream(&nmea.Parser{})
	stream := "noise" + sentence(ggaBody) + sentence(gsvBody) + sentence(rmcBody) +
		"$GPGGA,123519*00\r\n"
	s.Feed([]byte(stream), func(ev sentenceEvent) {
		next, _ := m.Update(eventMsg(ev))
		m = next.(model)
	})

	if !m.synchronized || m.stats.TotalSentences != 4 || m.stats.ChecksumErrors != 1 {
		t.Fatalf("synchronized=%v stats=%+v", m.synchronized, m.stats)
	}
	if m.stats.NoiseBytes != 5 {
		t.Errorf("NoiseBytes=%d, want 5", m.stats.NoiseBytes)
	}
	if len(m.sky) != 4 || len(m.skyTable.Rows()) != 4 {
		t.Errorf("sky=%d rows=%d, want 4", len(m.sky), len(m.skyTable.Rows()))
	}
	if row := m.skyTable.Rows()[0]; row[0] != "GPS" || row[1] != "1" || row[4] != "46" {
		t.Errorf("first sky row=%v", row)
	}

	fix := strings.Join(m.fixSummary(), "\n")
	for _, want := range []string{"Position: 48.117300, 11.516667", "UTC: 12:35:19.000", "Speed: 22.4 kn"} {
		if !strings.Contains(fix, want) {
			t.Errorf("fix summary missing %q:\n%s", want, fix)
		}
	}

	last := m.errorLog[len(m.errorLog)-1]
	if !last.isError || !strings.Contains(last.message, "checksum mismatch") {
		t.Errorf("last log entry=%+v", last)
	}
	if !strings.Contains(m.View(), "SEXTANT - ERROR DETECTION") {
		t.Error("View() missing title")
	}
}

func TestModel_PruneSky(t *testing.T) {
	m := initialModel("", time.Second, false)
	s := newSentenceStream(&nmea.Parser{})
	fixedClock(s)
	s.Feed([]byte(sentence(gsvBody)), func(ev sentenceEvent) {
		next, _ := m.Update(eventMsg(ev))
		m = next.(model)
	})
	seen := s.now()

	next, _ := m.Update(tickMsg(seen.Add(skyTimeout / 2)))
	m = next.(model)
	if len(m.sky) != 4 {
		t.Fatalf("sky pruned too early: %d", len(m.sky))
	}

	next, _ = m.Update(tickMsg(seen.Add(2 * skyTimeout)))
	m = next.(model)
	if len(m.sky) != 0 || len(m.skyTable.Rows()) != 0 {
		t.Errorf("stale satellites kept: %d", len(m.sky))
	}
}

func TestModel_StreamClosed(t *testing.T) {
	m := initialModel("", time.Second, false)
	next, _ := m.Update(streamClosedMsg{err: io.EOF})
	m = next.(model)
	if !m.closed || m.errorLog[0].isError {
		t.Errorf("EOF should close quietly: %+v", m.errorLog)
	}

	next, _ = m.Update(streamClosedMsg{err: errors.New("device reset")})
	m = next.(model)
	if last := m.errorLog[len(m.errorLog)-1]; !last.isError {
		t.Errorf("read error should be logged as error: %+v", last)
	}
}

// ============================================================================
// History output
// ============================================================================

func TestFormatEntry(t *testing.T) {
	lat, lon, alt := 48.1173, 11.516667, 545.4
	sats := uint8(8)
	e := store.Entry{
		ID:         12,
		RecordedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Record: export.Record{
			Kind: "GGA", Talker: "GPS", Time: "12:35:19.000",
			Latitude: &lat, Longitude: &lon, Altitude: &alt, Satellites: &sats,
		},
	}
	line := formatEntry(e)
	for _, want := range []string{"    12 ", "GGA", "GPS", "12:35:19.000", "48.117300,11.516667", "alt=545.4", "sats=8"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatEntry() = %q, missing %q", line, want)
		}
	}
}
