// SPDX-License-Identifier: Apache-2.0

// Package cmd wires the three catalogdiff subcommands (plan, apply,
// sync) onto a cobra root command: a package-level rootCmd, an init()
// that sets the environment prefix once, and an Execute() that
// registers subcommands and runs. It's intentionally thin glue over
// pkg/catalog, pkg/diff, pkg/sort, pkg/plan, pkg/apply, and pkg/planio.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the catalogdiff build version, overridden at link time.
var Version = "development"

func init() {
	viper.SetEnvPrefix("CATALOGDIFF")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:          "catalogdiff",
	Short:        "Diff, plan and apply PostgreSQL catalog changes",
	SilenceUsage: true,
	Version:      Version,
}

// Execute executes the root command.
func Execute() error {
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(applyCmd())
	rootCmd.AddCommand(syncCmd())

	return rootCmd.Execute()
}
