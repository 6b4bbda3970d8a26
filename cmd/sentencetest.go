// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

var (
	sentenceTestTimeout int
)

var sentenceTestCmd = &cobra.Command{
	Use:   "sentence_test",
	Short: "Test connection by waiting for a valid NMEA sentence",
	Long: `Wait for a valid, supported NMEA sentence on the connection until timeout.

This command connects to a serial port, WebSocket or capture file and waits
for any supported sentence that decodes cleanly. Noise, corrupt sentences and
unsupported kinds are skipped.

Exit codes:
  0 - Sentence received before timeout
  1 - Timeout (or end of capture) without receiving a valid sentence
  2 - Connection error

Useful for checking receiver wiring and baud rate.`,
	RunE: runSentenceTest,
}

func init() {
	rootCmd.AddCommand(sentenceTestCmd)
	sentenceTestCmd.Flags().IntVar(&sentenceTestTimeout, "timeout", 10, "Timeout in seconds to wait for a sentence")
}

func runSentenceTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Sextant - Sentence Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", sentenceTestTimeout)
	fmt.Printf("Waiting for valid NMEA sentence...\n\n")

	parser := nmea.NewParser(nmea.WithRequireChecksum(cfg.Parser.RequireChecksum))
	stream := newSentenceStream(parser)

	sentenceCh := make(chan sentenceEvent, 1)
	errCh := make(chan error, 1)

	go func() {
		var skipped uint64
		found := false
		err := readStream(conn, stream, func(ev sentenceEvent) {
			if found {
				return
			}
			if ev.msg == nil {
				if ev.complete() {
					skipped += uint64(len(ev.raw))
				} else {
					skipped += uint64(ev.scan.Consumed)
				}
				return
			}
			found = true
			if skipped > 0 {
				fmt.Printf("(skipped %d bytes before first valid sentence)\n", skipped)
			}
			sentenceCh <- ev
		})
		if found {
			return
		}
		errCh <- err
	}()

	select {
	case ev := <-sentenceCh:
		h := ev.msg.MessageHeader()
		fmt.Printf("SUCCESS: Received valid sentence\n")
		fmt.Printf("  Talker: %s\n", nmea.FormatTalker(h.Talker))
		fmt.Printf("  Kind: %s\n", nmea.FormatKind(ev.msg.Kind()))
		fmt.Printf("  Checksum: %s\n", checksumLabel(ev.scan.Checksum))
		fmt.Printf("  Sentence: %s\n", ev.raw)
		os.Exit(0)

	case err := <-errCh:
		if err == nil || isEndOfInput(err) {
			fmt.Fprintf(os.Stderr, "END OF INPUT: No valid sentence received\n")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(sentenceTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid sentence received within %d seconds\n", sentenceTestTimeout)
		os.Exit(1)
	}

	return nil
}

func checksumLabel(c nmea.ChecksumState) string {
	switch c {
	case nmea.ChecksumValid:
		return "valid"
	case nmea.ChecksumInvalid:
		return "invalid"
	default:
		return "absent"
	}
}
