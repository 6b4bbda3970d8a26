// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sextant.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg=%+v want defaults", cfg)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Connection.Baud != 4800 || cfg.Stats.Interval != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
connection:
  port: /dev/ttyUSB0
  baud: 9600
parser:
  require_checksum: true
stats:
  interval: 2s
mqtt:
  enable: true
  broker: tcp://broker:1883
  encoding: cbor
  qos: 1
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Connection.Port != "/dev/ttyUSB0" || cfg.Connection.Baud != 9600 {
		t.Fatalf("connection=%+v", cfg.Connection)
	}
	if !cfg.Parser.RequireChecksum || cfg.Stats.Interval != 2*time.Second {
		t.Fatalf("parser=%+v stats=%+v", cfg.Parser, cfg.Stats)
	}
	if !cfg.MQTT.Enable || cfg.MQTT.Encoding != EncodingCBOR || cfg.MQTT.QoS != 1 {
		t.Fatalf("mqtt=%+v", cfg.MQTT)
	}
	// Untouched keys keep their defaults
	if cfg.MQTT.TopicPrefix != "sextant" || cfg.Store.Path != "sextant.db" {
		t.Fatalf("defaults lost: mqtt=%+v store=%+v", cfg.MQTT, cfg.Store)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"two sources", "connection:\n  port: /dev/ttyS0\n  file: log.nmea\n", "mutually exclusive"},
		{"bad baud", "connection:\n  baud: 0\n", "connection.baud"},
		{"bad url", "connection:\n  url: http://host\n", "connection.url"},
		{"bad interval", "stats:\n  interval: 0s\n", "stats.interval"},
		{"mqtt broker", "mqtt:\n  enable: true\n  broker: ''\n", "mqtt.broker is required"},
		{"mqtt qos", "mqtt:\n  qos: 3\n", "mqtt.qos"},
		{"mqtt encoding", "mqtt:\n  encoding: xml\n", "mqtt.encoding"},
		{"store path", "store:\n  enable: true\n  path: ''\n", "store.path is required"},
		{"metrics listen", "metrics:\n  enable: true\n  listen: ''\n", "metrics.listen is required"},
		{"log level", "log:\n  level: loud\n", "log.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.contents))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error=%q want substring %q", err.Error(), tc.want)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "connection: [unclosed\n"))
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("error=%v want parse error", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Connection.URL = "wss://gateway.local/nmea"
	cfg.Store.Enable = true
	cfg.Stats.Interval = 10 * time.Second

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("got %+v want %+v", got, cfg)
	}
}
