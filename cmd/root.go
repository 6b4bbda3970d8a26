// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/sextant/internal/config"
)

var log = logging.Logger("sextant")

var (
	configPath string
	cfg        config.Config

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Replay flags
	replayFile string

	requireChecksum bool
	logLevel        string
)

var rootCmd = &cobra.Command{
	Use:   "sextant",
	Short: "NMEA 0183 GNSS Sentence Analyzer",
	Long: `Sextant - A CLI tool for monitoring and analyzing NMEA 0183 GNSS receivers.

Decodes GGA, RMC, GSA, GSV, GLL, VTG and GNS sentences from any talker, reports
checksum failures, malformed sentences and out of range values, and can forward
fixes to MQTT, a SQLite log and a Prometheus endpoint.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 4800]
  WebSocket: --url ws://host/path [--username user]
  Replay:    --file capture.nmea (use - for stdin)

Settings are read from --config (YAML) first; flags given on the command line
override the file.

For WebSocket authentication, the password is read from the SEXTANT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 4800, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&replayFile, "file", "f", "", "Replay a captured NMEA log (- for stdin)")

	rootCmd.PersistentFlags().BoolVar(&requireChecksum, "require-checksum", false, "Reject sentences without a checksum")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the configuration file and lays explicitly set flags over it.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Connection.Port = portName
	}
	if flags.Changed("baud") {
		cfg.Connection.Baud = baudRate
	}
	if flags.Changed("url") {
		cfg.Connection.URL = wsURL
	}
	if flags.Changed("username") {
		cfg.Connection.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		cfg.Connection.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("file") {
		cfg.Connection.File = replayFile
	}
	if flags.Changed("require-checksum") {
		cfg.Parser.RequireChecksum = requireChecksum
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.LevelFromString(strings.ToLower(cfg.Log.Level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logging.SetAllLoggers(level)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
