// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgdiffhq/catalogdiff/cmd/flags"
	"github.com/pgdiffhq/catalogdiff/pkg/hooks"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
	"github.com/pgdiffhq/catalogdiff/pkg/planio"
)

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Diff the source and target catalogs and write a plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd)
		},
	}
	flags.SourceTargetFlags(cmd)
	flags.PlanFileFlags(cmd)
	flags.RoleFlag(cmd)
	return cmd
}

func runPlan(cmd *cobra.Command) error {
	ctx := cmd.Context()

	sourceConn, closeSource, err := connect(ctx, flags.SourceURL(), 0)
	if err != nil {
		return err
	}
	defer closeSource()

	targetConn, closeTarget, err := connect(ctx, flags.TargetURL(), 0)
	if err != nil {
		return err
	}
	defer closeTarget()

	p, _, _, err := buildPlan(ctx, sourceConn, targetConn, hooks.Hooks{}, plan.Options{
		Role:        flags.Role(),
		ToolVersion: Version,
	})
	if err != nil {
		return err
	}

	return writePlanFile(p)
}

// writePlanFile renders p into the wire Envelope, validates it against
// the embedded schema, and writes it to flags.PlanFile() in
// flags.Format()'s encoding.
func writePlanFile(p *plan.Plan) error {
	env := planio.FromPlan(p, nil, nil)

	var data []byte
	var err error
	switch flags.Format() {
	case "yaml":
		data, err = planio.MarshalYAML(env)
	default:
		data, err = planio.Marshal(env)
	}
	if err != nil {
		return fmt.Errorf("catalogdiff: encoding plan: %w", err)
	}

	// Validate operates on JSON bytes regardless of the output format,
	// so a YAML-formatted plan is still checked against the schema
	// before it's written.
	jsonForValidation := data
	if flags.Format() == "yaml" {
		jsonForValidation, err = planio.Marshal(env)
		if err != nil {
			return fmt.Errorf("catalogdiff: encoding plan: %w", err)
		}
	}
	if err := planio.Validate(jsonForValidation); err != nil {
		return fmt.Errorf("catalogdiff: built plan failed schema validation: %w", err)
	}

	if err := os.WriteFile(flags.PlanFile(), data, 0o644); err != nil {
		return fmt.Errorf("catalogdiff: writing plan file: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s (%d statement(s), risk=%s)\n", flags.PlanFile(), len(p.Statements), p.Risk.Level)
	fmt.Fprintln(os.Stdout, script(p.Statements))

	if p.Risk.Level == plan.RiskDataLoss {
		summary, _ := json.Marshal(p.Risk.Statements)
		fmt.Fprintf(os.Stderr, "warning: plan is data_loss; affected statements: %s\n", summary)
	}
	return nil
}
