// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/Thermoquad/sextant/pkg/nmea"
)

var (
	discoveryTimeout   int
	discoveryListPorts bool
)

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Discover which talkers and sentences a receiver emits",
	Long: `Listen for a fixed period and report every talker and sentence kind seen.

Multi-constellation receivers mix talkers (GP, GL, GA, GB/BD, GN, QZ) and often
emit kinds this tool does not decode. Discovery tallies them all, including
unsupported kinds, so the output configuration of a receiver can be checked.

Use --list-ports to enumerate local serial ports instead of listening.

Examples:
  # Survey a USB receiver for 5 seconds
  sextant discovery --port /dev/ttyUSB0

  # Survey a capture file
  sextant discovery --file capture.nmea

Exit codes:
  0 - Discovery successful (at least one sentence seen)
  1 - Discovery failed (no sentences before timeout)
  2 - Connection error`,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	discoveryCmd.Flags().IntVar(&discoveryTimeout, "timeout", 5, "Listening time in seconds")
	discoveryCmd.Flags().BoolVar(&discoveryListPorts, "list-ports", false, "List serial ports and exit")
}

// survey tallies sentence addresses by talker and kind
type survey struct {
	mu     sync.Mutex
	counts map[string]int
	errors int
}

func newSurvey() *survey {
	return &survey{counts: make(map[string]int)}
}

// record counts one framed sentence. The address is read from the raw text
// so unsupported kinds are counted too.
func (s *survey) record(ev sentenceEvent) {
	if !ev.complete() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.err != nil {
		s.errors++
		return
	}
	if len(ev.raw) < 1+nmea.AddressSize {
		return
	}
	if len(ev.raw) > 1+nmea.AddressSize {
		if c := ev.raw[1+nmea.AddressSize]; c != nmea.FieldSep && c != nmea.ChecksumByte {
			return
		}
	}
	s.counts[ev.raw[1:1+nmea.AddressSize]]++
}

// lines returns one line per address, most frequent first
func (s *survey) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]string, 0, len(s.counts))
	for a := range s.counts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		if s.counts[addrs[i]] != s.counts[addrs[j]] {
			return s.counts[addrs[i]] > s.counts[addrs[j]]
		}
		return addrs[i] < addrs[j]
	})

	lines := make([]string, 0, len(addrs))
	for _, a := range addrs {
		var id [nmea.AddressSize]byte
		copy(id[:], a)
		talker, kind := nmea.Resolve(id)

		desc := "unsupported"
		if kind != nmea.KindUnknown {
			desc = nmea.FormatKind(kind)
		}
		lines = append(lines, fmt.Sprintf("  %s  %-8s %-30s %6d", a, nmea.FormatTalker(talker), desc, s.counts[a]))
	}
	return lines
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	if discoveryListPorts {
		ports, err := serial.GetPortsList()
		if err != nil {
			return fmt.Errorf("failed to list serial ports: %v", err)
		}
		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Sextant - Sentence Discovery\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n\n", discoveryTimeout)

	parser := nmea.NewParser(nmea.WithRequireChecksum(cfg.Parser.RequireChecksum))
	stream := newSentenceStream(parser)
	s := newSurvey()

	done := make(chan error, 1)
	go func() {
		done <- readStream(conn, stream, s.record)
	}()

	select {
	case err := <-done:
		if err != nil && !isEndOfInput(err) {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			os.Exit(2)
		}
	case <-time.After(time.Duration(discoveryTimeout) * time.Second):
	}

	lines := s.lines()
	if len(lines) == 0 {
		fmt.Fprintf(os.Stderr, "No sentences received\n")
		os.Exit(1)
	}

	fmt.Printf("  ADDR   TALKER   KIND                            COUNT\n")
	for _, l := range lines {
		fmt.Println(l)
	}
	s.mu.Lock()
	if s.errors > 0 {
		fmt.Printf("\n  %d sentences failed checksum or decoding\n", s.errors)
	}
	s.mu.Unlock()
	return nil
}
