// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgdiffhq/catalogdiff/cmd/flags"
	"github.com/pgdiffhq/catalogdiff/pkg/apply"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
	"github.com/pgdiffhq/catalogdiff/pkg/planio"
)

func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a plan file to the target database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd)
		},
	}
	// apply's external interface matches plan's own
	// --source-url/--target-url pair for symmetry, even though apply's
	// own algorithm only ever connects to the target: the plan already
	// pins both fingerprints, so there's nothing left for apply to read
	// from source.
	flags.SourceTargetFlags(cmd)
	flags.PlanFileFlags(cmd)
	flags.ApplyFlags(cmd)
	return cmd
}

func runApply(cmd *cobra.Command) error {
	ctx := cmd.Context()

	p, err := readPlanFile()
	if err != nil {
		return err
	}

	targetConn, closeTarget, err := connect(ctx, flags.TargetURL(), flags.LockTimeout())
	if err != nil {
		return err
	}
	defer closeTarget()

	result, err := apply.Apply(ctx, p, targetConn, extractor, apply.Options{
		AllowDataLoss:   flags.Unsafe(),
		VerifyPostApply: true,
	})
	return reportApplyResult(result, err)
}

// readPlanFile decodes and schema-validates the file flags.PlanFile()
// names, auto-detecting YAML vs JSON by flags.Format() rather than by
// file extension, since the flag is the explicit source of truth for
// both plan and apply.
func readPlanFile() (*plan.Plan, error) {
	data, err := os.ReadFile(flags.PlanFile())
	if err != nil {
		return nil, fmt.Errorf("catalogdiff: reading plan file: %w", err)
	}

	var env *planio.Envelope
	if flags.Format() == "yaml" {
		env, err = planio.UnmarshalYAML(data)
	} else {
		env, err = planio.Unmarshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("catalogdiff: decoding plan file: %w", err)
	}

	validateData := data
	if flags.Format() == "yaml" {
		if validateData, err = planio.Marshal(env); err != nil {
			return nil, fmt.Errorf("catalogdiff: re-encoding plan for validation: %w", err)
		}
	}
	if err := planio.Validate(validateData); err != nil {
		return nil, err
	}

	return env.ToPlan()
}

// reportApplyResult maps an apply.Result/error pair onto the process
// exit code: 0 for success or already_applied, 1
// for anything else, including a data_loss rejection without --unsafe.
func reportApplyResult(result apply.Result, err error) error {
	switch result.State {
	case apply.StateAlreadyApplied:
		fmt.Fprintln(os.Stdout, "already applied: target catalog already matches the plan's target fingerprint")
		return nil
	case apply.StateApplied:
		fmt.Fprintf(os.Stdout, "applied %d statement(s)\n", len(result.Statements))
		for _, w := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		return nil
	case apply.StateFingerprintMismatch:
		return fmt.Errorf("catalogdiff: target catalog has drifted since the plan was built")
	case apply.StateFailed:
		return fmt.Errorf("catalogdiff: apply failed: %w", result.Err)
	default:
		if err != nil {
			return err
		}
		return fmt.Errorf("catalogdiff: apply returned an unrecognized state %q", result.State)
	}
}
