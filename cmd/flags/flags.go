// SPDX-License-Identifier: Apache-2.0

// Package flags defines the persistent CLI flags every catalogdiff
// subcommand shares, bound to viper so CATALOGDIFF_-prefixed
// environment variables override them.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SourceURL returns the Postgres connection string for the source
// (current) catalog.
func SourceURL() string {
	return viper.GetString("SOURCE_URL")
}

// TargetURL returns the Postgres connection string for the target
// (desired) catalog.
func TargetURL() string {
	return viper.GetString("TARGET_URL")
}

// PlanFile returns the path plan writes to and apply/sync read from.
func PlanFile() string {
	return viper.GetString("PLAN_FILE")
}

// Unsafe reports whether a data_loss plan may be applied without
// further confirmation.
func Unsafe() bool {
	return viper.GetBool("UNSAFE")
}

// Role returns the optional role to SET ROLE to before executing a
// plan's statements.
func Role() string {
	return viper.GetString("ROLE")
}

// Format returns the plan file's serialization, "json" or "yaml".
func Format() string {
	return viper.GetString("FORMAT")
}

// LockTimeout returns the lock_timeout (milliseconds) set on the
// target connection before apply executes a plan.
func LockTimeout() int {
	return viper.GetInt("LOCK_TIMEOUT")
}

// SourceTargetFlags registers --source-url/--target-url, the two
// catalogs every subcommand needs to diff or re-extract.
func SourceTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("source-url", "", "Postgres connection URL for the source (current) catalog")
	cmd.Flags().String("target-url", "", "Postgres connection URL for the target (desired) catalog")

	viper.BindPFlag("SOURCE_URL", cmd.Flags().Lookup("source-url"))
	viper.BindPFlag("TARGET_URL", cmd.Flags().Lookup("target-url"))
}

// RoleFlag registers --role alone, for subcommands (plan, sync) that
// build a plan and so need a role to record in its SET ROLE prelude.
func RoleFlag(cmd *cobra.Command) {
	cmd.Flags().String("role", "", "Optional Postgres role the plan's apply should SET ROLE to")
	viper.BindPFlag("ROLE", cmd.Flags().Lookup("role"))
}

// PlanFileFlags registers --plan-file and --format, shared by any
// subcommand that reads or writes a plan file.
func PlanFileFlags(cmd *cobra.Command) {
	cmd.Flags().String("plan-file", "plan.json", "Path to the plan file")
	cmd.Flags().String("format", "json", "Plan file format: json or yaml")

	viper.BindPFlag("PLAN_FILE", cmd.Flags().Lookup("plan-file"))
	viper.BindPFlag("FORMAT", cmd.Flags().Lookup("format"))
}

// ApplyFlags registers --unsafe and --lock-timeout, shared by any
// subcommand that executes a plan against a live database.
func ApplyFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("unsafe", false, "Allow applying a data_loss plan")
	cmd.Flags().Int("lock-timeout", 0, "Postgres lock timeout in milliseconds for the apply transaction")

	viper.BindPFlag("UNSAFE", cmd.Flags().Lookup("unsafe"))
	viper.BindPFlag("LOCK_TIMEOUT", cmd.Flags().Lookup("lock-timeout"))
}
