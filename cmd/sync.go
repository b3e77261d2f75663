// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pgdiffhq/catalogdiff/cmd/flags"
	"github.com/pgdiffhq/catalogdiff/pkg/apply"
	"github.com/pgdiffhq/catalogdiff/pkg/hooks"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Diff source and target, then apply the resulting plan directly to target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd)
		},
	}
	flags.SourceTargetFlags(cmd)
	flags.RoleFlag(cmd)
	flags.ApplyFlags(cmd)
	return cmd
}

// runSync fuses plan and apply into one command. It reuses
// buildPlan/reportApplyResult so its behavior can
// never drift from plan's and apply's own, and never touches the
// filesystem: source and target connections are both opened here, and
// the target connection is reused for both catalog extraction and the
// apply transaction.
func runSync(cmd *cobra.Command) error {
	ctx := cmd.Context()

	sourceConn, closeSource, err := connect(ctx, flags.SourceURL(), 0)
	if err != nil {
		return err
	}
	defer closeSource()

	targetConn, closeTarget, err := connect(ctx, flags.TargetURL(), flags.LockTimeout())
	if err != nil {
		return err
	}
	defer closeTarget()

	role := flags.Role()
	p, _, _, err := buildPlan(ctx, sourceConn, targetConn, hooks.Hooks{}, plan.Options{
		Role:        role,
		ToolVersion: Version,
	})
	if err != nil {
		return err
	}

	result, err := apply.Apply(ctx, p, targetConn, extractor, apply.Options{
		AllowDataLoss:   flags.Unsafe(),
		VerifyPostApply: true,
	})
	return reportApplyResult(result, err)
}
