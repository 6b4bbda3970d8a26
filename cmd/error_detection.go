// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

var (
	showAll       bool
	statsInterval time.Duration
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze corrupt sentences and anomalous values",
	Long: `Track sentence errors, framing noise, and anomalous values with statistics.

This command validates each sentence and detects:
  - Checksum mismatches and missing checksums
  - Malformed sentences (missing or unparseable mandatory fields)
  - Oversized sentences and line noise between sentences
  - Out of range values (coordinates, times, dates, satellite data)
  - Statistics and trends (sentence rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display valid sentences too.

Sentences are validated in real-time, with errors highlighted immediately and
periodic statistics summaries displayed at configurable intervals.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all sentences (not just errors)")
	errorDetectionCmd.Flags().DurationVar(&statsInterval, "stats-interval", 5*time.Second, "Statistics update interval")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("stats-interval") {
		cfg.Stats.Interval = statsInterval
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	parser := nmea.NewParser(nmea.WithRequireChecksum(cfg.Parser.RequireChecksum))
	if useTUI {
		return runTUIMode(conn, connInfo, parser)
	}
	return runTextMode(conn, connInfo, parser)
}

// printParseError prints a checksum or decode failure in highlighted format
func printParseError(ev sentenceEvent) {
	timestamp := ev.at.Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mSENTENCE ERROR:\033[0m %s\n", timestamp, nmea.FormatError(ev.err))
	fmt.Printf("  %s\n", ev.raw)
	fmt.Printf("  >>> SENTENCE REJECTED <<<\n\n")
}

// printTooLong prints an oversized sentence
func printTooLong(ev sentenceEvent) {
	timestamp := ev.at.Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mTOO LONG:\033[0m sentence exceeds %d bytes\n", timestamp, nmea.MaxSentenceSize)
	fmt.Printf("  %.40s...\n\n", ev.raw)
}

// printValidationErrors prints the anomalies found in a decoded sentence
func printValidationErrors(ev sentenceEvent) {
	timestamp := ev.at.Format("15:04:05.000")
	h := ev.msg.MessageHeader()

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s %s\n", timestamp,
		nmea.FormatTalker(h.Talker), nmea.FormatKind(ev.msg.Kind()))
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, err := range ev.verrs {
		switch err.Type {
		case nmea.AnomalyInvalidCoordinate, nmea.AnomalyInvalidHemisphere:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if lat, ok := err.Details["latitude"].(float64); ok {
				fmt.Printf("    latitude=%.4f (DDMM.MMMM)\n", lat)
			}
			if lon, ok := err.Details["longitude"].(float64); ok {
				fmt.Printf("    longitude=%.4f (DDDMM.MMMM)\n", lon)
			}

		case nmea.AnomalyInvalidTime, nmea.AnomalyInvalidDate:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		case nmea.AnomalyInvalidSatellite, nmea.AnomalyInvalidValue:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
			if slot, ok := err.Details["slot"].(int); ok {
				fmt.Printf("    slot=%d\n", slot+1)
			}

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}

	fmt.Printf("  %s\n", ev.raw)
	fmt.Printf("  >>> SENTENCE FLAGGED <<<\n\n")
}

// eventMsg carries one stream event into the TUI
type eventMsg sentenceEvent

// streamClosedMsg reports the end of the input
type streamClosedMsg struct {
	err error
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(conn Connection, connInfo string, parser *nmea.Parser) error {
	m := initialModel(connInfo, cfg.Stats.Interval, showAll)
	p := tea.NewProgram(m)

	go func() {
		stream := newSentenceStream(parser)
		err := readStream(conn, stream, func(ev sentenceEvent) {
			p.Send(eventMsg(ev))
		})
		p.Send(streamClosedMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(conn Connection, connInfo string, parser *nmea.Parser) error {
	fmt.Printf("Sextant - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %s\n", cfg.Stats.Interval)
	if showAll {
		fmt.Printf("Mode: All sentences\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := nmea.NewStatistics()
	stream := newSentenceStream(parser)
	synchronized := false

	statsTicker := time.NewTicker(cfg.Stats.Interval)
	defer statsTicker.Stop()

	// Channel for non-blocking reads
	dataCh := make(chan []byte, 10)
	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, 512)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				dataCh <- data
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	handle := func(ev sentenceEvent) {
		stats.UpdateScan(ev.scan)

		switch {
		case ev.scan.Status == nmea.ScanTooLong:
			printTooLong(ev)
			return
		case !ev.complete():
			return
		}

		if !synchronized {
			synchronized = true
			if stats.NoiseBytes > 0 {
				fmt.Printf("[SYNC] Synchronized after skipping %d bytes\n\n", stats.NoiseBytes)
			} else {
				fmt.Printf("[SYNC] Synchronized\n\n")
			}
		}

		stats.Update(ev.msg, ev.err, ev.verrs)

		switch {
		case ev.err != nil:
			printParseError(ev)
		case ev.msg == nil:
			if showAll {
				fmt.Printf("[%s] unsupported: %s\n\n", ev.at.Format("15:04:05.000"), ev.raw)
			}
		case len(ev.verrs) > 0:
			printValidationErrors(ev)
		case showAll:
			fmt.Print(nmea.FormatMessage(ev.msg))
		}
	}

	for {
		select {
		case data := <-dataCh:
			stream.Feed(data, handle)

		case err := <-errCh:
			// Drain what was read before the error
			for len(dataCh) > 0 {
				stream.Feed(<-dataCh, handle)
			}
			fmt.Println()
			fmt.Print(stats.String())
			if isEndOfInput(err) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}
