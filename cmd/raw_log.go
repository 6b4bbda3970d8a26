// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

var (
	rawLogEcho bool
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display decoded sentences in human-readable format",
	Long: `Continuously decode and display NMEA 0183 sentences as they arrive.

Each supported sentence is printed with its talker, kind and decoded fields.
Checksum failures and malformed sentences are printed as errors; unsupported
sentence kinds are skipped silently.

Supports serial, WebSocket and replay connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogEcho, "echo", false, "Print the raw sentence above each decoded record")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Sextant - Raw Sentence Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	parser := nmea.NewParser(nmea.WithRequireChecksum(cfg.Parser.RequireChecksum))
	stream := newSentenceStream(parser)

	err = readStream(conn, stream, func(ev sentenceEvent) {
		switch {
		case ev.scan.Status == nmea.ScanTooLong:
			fmt.Printf("[ERROR] sentence exceeds %d bytes, discarded\n", nmea.MaxSentenceSize)
		case !ev.complete():
			return
		case ev.err != nil:
			fmt.Printf("[ERROR] %s\n", nmea.FormatError(ev.err))
			if rawLogEcho {
				fmt.Printf("  %s\n", ev.raw)
			}
		case ev.msg != nil:
			if rawLogEcho {
				fmt.Printf("%s\n", ev.raw)
			}
			fmt.Printf("[%s] %s", ev.at.Format("15:04:05.000"), nmea.FormatMessage(ev.msg))
		}
	})
	if err != nil {
		if err == ErrConnectionClosed {
			log.Infof("Connection closed")
			return nil
		}
		return fmt.Errorf("read error: %w", err)
	}

	if n := stream.Pending(); n > 0 {
		fmt.Printf("[WARN] %d trailing bytes without a line terminator\n", n)
	}
	return nil
}
