// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Sextant - NMEA 0183 GNSS Sentence Analyzer
//
// A CLI tool for monitoring, validating and forwarding NMEA 0183 sentences
// from GNSS receivers.

package main

import (
	"os"

	"github.com/Thermoquad/sextant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
