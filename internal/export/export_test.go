// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package export

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

func sentence(body string) []byte {
	sum := nmea.FormatChecksum(nmea.Checksum([]byte(body)))
	return []byte("$" + body + "*" + string(sum[:]) + "\r\n")
}

func mustParse(t *testing.T, body string, opts ...nmea.ParseOption) nmea.Message {
	t.Helper()
	msg, _, err := nmea.Parse(sentence(body), opts...)
	if err != nil || msg == nil {
		t.Fatalf("Parse(%q) = %v, %v", body, msg, err)
	}
	return msg
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ============================================================================
// Flattening
// ============================================================================

func TestDegrees(t *testing.T) {
	cases := []struct {
		v    float64
		hemi byte
		want float64
	}{
		{4807.038, nmea.North, 48 + 7.038/60},
		{4807.038, nmea.South, -(48 + 7.038/60)},
		{12311.12, nmea.West, -(123 + 11.12/60)},
		{0, nmea.East, 0},
	}
	for _, tc := range cases {
		if got := Degrees(tc.v, tc.hemi); !near(got, tc.want) {
			t.Errorf("Degrees(%v, %c) = %v, want %v", tc.v, tc.hemi, got, tc.want)
		}
	}
}

func TestFromMessage_Nil(t *testing.T) {
	if _, ok := FromMessage(nil); ok {
		t.Fatal("FromMessage(nil) should report false")
	}
}

func TestFromMessage_GGA(t *testing.T) {
	msg := mustParse(t, "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,", nmea.WithTimestamp(42))
	r, ok := FromMessage(msg)
	if !ok {
		t.Fatal("FromMessage returned false")
	}

	if r.Kind != "GGA" || r.Talker != "GPS" {
		t.Errorf("kind=%q talker=%q", r.Kind, r.Talker)
	}
	if r.ReceivedAt == nil || *r.ReceivedAt != 42 {
		t.Errorf("ReceivedAt=%v, want 42", r.ReceivedAt)
	}
	if r.Time != "12:35:19.000" {
		t.Errorf("Time=%q", r.Time)
	}
	if !r.HasPosition() || !near(*r.Latitude, 48+7.038/60) || !near(*r.Longitude, 11+31.0/60) {
		t.Errorf("position=%v,%v", r.Latitude, r.Longitude)
	}
	if r.FixQuality == nil || *r.FixQuality != 1 {
		t.Errorf("FixQuality=%v", r.FixQuality)
	}
	if r.Satellites == nil || *r.Satellites != 8 {
		t.Errorf("Satellites=%v", r.Satellites)
	}
	if r.HDOP == nil || *r.HDOP != float64(float32(0.9)) {
		t.Errorf("HDOP=%v", r.HDOP)
	}
	if r.Altitude == nil || *r.Altitude != float64(float32(545.4)) {
		t.Errorf("Altitude=%v", r.Altitude)
	}
}

func TestFromMessage_RMC(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))

	if r.Date != "1994-03-23" || r.Status != "A" {
		t.Errorf("date=%q status=%q", r.Date, r.Status)
	}
	if r.SpeedKnots == nil || *r.SpeedKnots != float64(float32(22.4)) {
		t.Errorf("SpeedKnots=%v", r.SpeedKnots)
	}
	if r.Track == nil || *r.Track != float64(float32(84.4)) {
		t.Errorf("Track=%v", r.Track)
	}
	if r.Mode != "" {
		t.Errorf("Mode=%q, want empty", r.Mode)
	}
}

func TestFromMessage_GSA(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1"))

	if want := []uint8{4, 5, 9, 12, 24}; !reflect.DeepEqual(r.UsedPRNs, want) {
		t.Errorf("UsedPRNs=%v, want %v", r.UsedPRNs, want)
	}
	if r.FixType == nil || *r.FixType != nmea.FixType3D || r.Mode != "A" {
		t.Errorf("fix=%v mode=%q", r.FixType, r.Mode)
	}
	if r.HasPosition() {
		t.Error("GSA record should carry no position")
	}
}

func TestFromMessage_GSV(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,,228,"))

	if *r.MessageIndex != 1 || *r.MessageCount != 2 || *r.InView != 8 {
		t.Errorf("index=%d count=%d view=%d", *r.MessageIndex, *r.MessageCount, *r.InView)
	}
	if len(r.Sky) != 4 {
		t.Fatalf("len(Sky)=%d, want 4", len(r.Sky))
	}
	last := r.Sky[3]
	if *last.PRN != 14 || last.Elevation != nil || *last.Azimuth != 228 || last.SNR != nil {
		t.Errorf("last slot=%+v", last)
	}
}

func TestFromMessage_GLLAndVTG(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPGLL,4916.45,N,12311.12,W,225444,A,"))
	if !near(*r.Longitude, -(123+11.12/60)) || r.Time != "22:54:44.000" {
		t.Errorf("GLL lon=%v time=%q", *r.Longitude, r.Time)
	}

	r, _ = FromMessage(mustParse(t, "GPVTG,054.7,T,034.4,M,005.5,N,010.2,K"))
	if r.Track == nil || *r.Track != float64(float32(54.7)) || r.HasPosition() {
		t.Errorf("VTG track=%v", r.Track)
	}
}

func TestFromMessage_GNS(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GNGNS,014035.00,4332.69262,S,17235.48549,E,RR,13,0.9,25.63,11.24,,,V"))

	if r.Talker != "GNSS" || r.Mode != "RR" || r.Status != "V" {
		t.Errorf("talker=%q mode=%q status=%q", r.Talker, r.Mode, r.Status)
	}
	if *r.Latitude >= 0 {
		t.Errorf("southern latitude should be negative, got %v", *r.Latitude)
	}
}

// ============================================================================
// Encoding
// ============================================================================

func TestEncode_JSONOmitsAbsent(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPVTG,054.7,T,,M,,N,,K"))
	data, err := Encode(JSON, r)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON %s: %v", data, err)
	}
	if _, ok := m["track"]; !ok {
		t.Errorf("missing track in %s", data)
	}
	for _, key := range []string{"lat", "lon", "speed_kn", "received_at", "sky"} {
		if _, ok := m[key]; ok {
			t.Errorf("absent %q should be omitted: %s", key, data)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45", nmea.WithTimestamp(7)))

	for _, enc := range []Encoding{JSON, CBOR} {
		t.Run(string(enc), func(t *testing.T) {
			data, err := Encode(enc, r)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got, err := Decode(enc, data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if !reflect.DeepEqual(got, r) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, r)
			}
		})
	}
}

func TestEncode_CBORIsCompact(t *testing.T) {
	r, _ := FromMessage(mustParse(t, "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
	j, _ := Encode(JSON, r)
	c, err := Encode(CBOR, r)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if len(c) >= len(j) {
		t.Errorf("CBOR (%d bytes) should be smaller than JSON (%d bytes)", len(c), len(j))
	}
}

func TestEncode_UnknownEncoding(t *testing.T) {
	_, err := Encode("xml", Record{})
	if err == nil || !strings.Contains(err.Error(), "unknown encoding") {
		t.Fatalf("err=%v", err)
	}
	if _, err := Decode("xml", nil); err == nil {
		t.Fatal("Decode with unknown encoding should fail")
	}
}

func TestEncoding_ContentType(t *testing.T) {
	if JSON.ContentType() != "application/json" || CBOR.ContentType() != "application/cbor" {
		t.Fatal("unexpected content types")
	}
}
