// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the sextant YAML configuration. Command line flags
// override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Parser     ParserConfig     `yaml:"parser"`
	Stats      StatsConfig      `yaml:"stats"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Store      StoreConfig      `yaml:"store"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

type ConnectionConfig struct {
	Port        string `yaml:"port"`
	Baud        int    `yaml:"baud"`
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
	File        string `yaml:"file"`
}

type ParserConfig struct {
	RequireChecksum bool `yaml:"require_checksum"`
}

type StatsConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type MQTTConfig struct {
	Enable      bool   `yaml:"enable"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
	Retained    bool   `yaml:"retained"`
	Encoding    string `yaml:"encoding"`
}

type StoreConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type MetricsConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Encodings accepted by mqtt.encoding
const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"
)

var logLevels = []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

// Default returns the configuration used when no file is present. 4800 baud
// is the NMEA 0183 standard rate.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{Baud: 4800},
		Stats:      StatsConfig{Interval: 5 * time.Second},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "sextant",
			TopicPrefix: "sextant",
			Encoding:    EncodingJSON,
		},
		Store:   StoreConfig{Path: "sextant.db"},
		Metrics: MetricsConfig{Listen: ":9108"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Validate checks value ranges and cross-field requirements.
func (c Config) Validate() error {
	sources := 0
	for _, s := range []string{c.Connection.Port, c.Connection.URL, c.Connection.File} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return errors.New("connection: port, url and file are mutually exclusive")
	}
	if c.Connection.Baud <= 0 {
		return fmt.Errorf("connection.baud must be positive, got %d", c.Connection.Baud)
	}
	if c.Connection.URL != "" && !strings.HasPrefix(c.Connection.URL, "ws://") && !strings.HasPrefix(c.Connection.URL, "wss://") {
		return fmt.Errorf("connection.url must start with ws:// or wss://, got %q", c.Connection.URL)
	}
	if c.Stats.Interval <= 0 {
		return errors.New("stats.interval must be positive")
	}

	if c.MQTT.Enable && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.MQTT.Encoding != EncodingJSON && c.MQTT.Encoding != EncodingCBOR {
		return fmt.Errorf("mqtt.encoding must be json or cbor, got %q", c.MQTT.Encoding)
	}

	if c.Store.Enable && c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Metrics.Enable && c.Metrics.Listen == "" {
		return errors.New("metrics.listen is required")
	}

	level := strings.ToLower(c.Log.Level)
	for _, l := range logLevels {
		if level == l {
			return nil
		}
	}
	return fmt.Errorf("log.level %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", "))
}
