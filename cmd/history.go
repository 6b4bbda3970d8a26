// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/sextant/internal/store"
)

var (
	historyStore string
	historyKind  string
	historyLimit int
	historyTrack time.Duration
	historyJSON  bool
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the SQLite sentence log written by publish",
	Long: `Print records from the sentence log.

Without flags, the most recent records are listed newest first. --track lists
positions recorded within the given window, oldest first. --prune deletes
records older than the given age and exits.

Examples:
  sextant history --store fixes.db --kind GGA --limit 20
  sextant history --store fixes.db --track 1h --json
  sextant history --store fixes.db --prune 720h`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyStore, "store", "", "SQLite log path (defaults to store.path)")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Only show this sentence kind (GGA, RMC, ...)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of records")
	historyCmd.Flags().DurationVar(&historyTrack, "track", 0, "List positions recorded within this window")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print records as JSON lines")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete records older than this age")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := cfg.Store.Path
	if cmd.Flags().Changed("store") {
		path = historyStore
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sentence log %s: %w", path, err)
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if historyPrune > 0 {
		n, err := st.Prune(time.Now().Add(-historyPrune))
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d records\n", n)
		return nil
	}

	var entries []store.Entry
	if historyTrack > 0 {
		entries, err = st.Track(time.Now().Add(-historyTrack), historyLimit)
	} else {
		entries, err = st.Recent(strings.ToUpper(historyKind), historyLimit)
	}
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, e := range entries {
			if err := enc.Encode(e.Record); err != nil {
				return err
			}
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("No records")
		return printCounts(st)
	}
	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
	return nil
}

func formatEntry(e store.Entry) string {
	r := e.Record
	line := fmt.Sprintf("%6d %s %-4s %-8s", e.ID, e.RecordedAt.Local().Format("2006-01-02 15:04:05"), r.Kind, r.Talker)
	if r.Time != "" {
		line += " " + r.Time
	}
	if r.HasPosition() {
		line += fmt.Sprintf(" %.6f,%.6f", *r.Latitude, *r.Longitude)
	}
	if r.Altitude != nil {
		line += fmt.Sprintf(" alt=%.1f", *r.Altitude)
	}
	if r.Satellites != nil {
		line += fmt.Sprintf(" sats=%d", *r.Satellites)
	}
	if r.SpeedKnots != nil {
		line += fmt.Sprintf(" %.1fkn", *r.SpeedKnots)
	}
	if len(r.UsedPRNs) > 0 {
		line += fmt.Sprintf(" prns=%v", r.UsedPRNs)
	}
	if len(r.Sky) > 0 {
		line += fmt.Sprintf(" sky=%d", len(r.Sky))
	}
	return line
}

func printCounts(st *store.Store) error {
	counts, err := st.CountByKind()
	if err != nil {
		return err
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-4s %d\n", k, counts[k])
	}
	return nil
}
