// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands for the dbscope
// project. Commands are organized using the cobra library.
// The "check" sub-command acquires and releases each of the supported
// scoped resources against a live PostgreSQL server, so a deployment
// can verify its database coordinates and the pool behavior.
//
//	./dbscope check [-c /path/of/config.yaml]
package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "dbscope",
	Short: "Scoped acquisition of pooled database resources",
	Long: `dbscope implements a scoped resource acquisition protocol for
pooled PostgreSQL resources. A scope wraps the checkout of a pooled
connection, of a cursor bound to such a connection, or of a
transaction, and guarantees that every acquired resource is released
exactly once, on every exit path, with nested resources released in
the innermost-first order. Two database adapters are provided, one
over the GORM framework and one over the pgx driver, and this command
line tool can exercise either of them against a live server.`,
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default
// value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}
