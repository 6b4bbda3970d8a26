// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/sextant/internal/config"
)

var configWrite string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or write the effective configuration",
	Long: `Print the configuration after defaults, the --config file and command line
flags are merged. Use --write to save it as a starting point for a config file.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVar(&configWrite, "write", "", "Write the configuration to this path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configWrite != "" {
		if err := config.Save(configWrite, cfg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configWrite)
		return nil
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
