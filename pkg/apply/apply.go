// SPDX-License-Identifier: Apache-2.0

// Package apply implements the apply engine: given a built Plan and
// a live connection to the target database, it
// verifies the target hasn't drifted since the plan was built, then
// executes the plan's statements inside a single non-retrying
// transaction.
package apply

import (
	"context"
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/db"
	"github.com/pgdiffhq/catalogdiff/pkg/fingerprint"
	"github.com/pgdiffhq/catalogdiff/pkg/plan"
)

// State names one of the Result states Apply can return.
type State string

const (
	StateInvalidPlan         State = "invalid_plan"
	StateFingerprintMismatch State = "fingerprint_mismatch"
	StateAlreadyApplied      State = "already_applied"
	StateApplied             State = "applied"
	StateFailed              State = "failed"
)

// Result is the outcome of Apply. Only the fields relevant to State
// are meaningful; callers switch on
// State first.
type Result struct {
	State      State
	Statements []string // StateApplied: statements actually executed
	Warnings   []string // StateApplied: non-fatal post-apply verification mismatches
	Script     string   // StateFailed: the full emitted script, for diagnostics
	Err        error    // StateFailed: the underlying driver error
}

// Options configures Apply beyond the plan/connection/catalog it's handed.
type Options struct {
	// AllowDataLoss must be true to apply a plan whose Risk.Level is
	// data_loss. Apply itself only enforces this gate; it does not
	// decide when an override is appropriate.
	AllowDataLoss bool
	// VerifyPostApply re-extracts the target catalog after commit and
	// recomputes its fingerprint, surfacing a mismatch as a non-fatal
	// warning rather than failing the (already committed) apply.
	VerifyPostApply bool
}

// ErrDataLossRejected is returned when a data_loss plan is applied
// without Options.AllowDataLoss set.
type ErrDataLossRejected struct{}

func (ErrDataLossRejected) Error() string {
	return "apply: refusing to apply a data_loss plan without an explicit override"
}

// Apply runs its verify-then-execute algorithm against targetConn,
// using extractor to read the target's current catalog both before and
// (if requested) after the transaction commits.
func Apply(ctx context.Context, p *plan.Plan, targetConn db.DB, extractor catalog.Extractor, opts Options) (Result, error) {
	if p.Risk.Level == plan.RiskDataLoss && !opts.AllowDataLoss {
		return Result{State: StateFailed, Err: ErrDataLossRejected{}}, ErrDataLossRejected{}
	}

	currentCatalog, err := extractor.Extract(ctx, targetConn)
	if err != nil {
		return Result{State: StateFailed, Err: err}, err
	}

	currentFP, err := fingerprint.Compute(currentCatalog, p.ScopeIDs)
	if err != nil {
		return Result{State: StateFailed, Err: err}, err
	}

	if currentFP == p.TargetFingerprint {
		return Result{State: StateAlreadyApplied}, nil
	}
	if currentFP != p.SourceFingerprint {
		return Result{State: StateFingerprintMismatch}, nil
	}

	conn := targetConn.RawConn()
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Result{State: StateFailed, Err: err, Script: script(p)}, err
	}

	for _, stmt := range p.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return Result{State: StateFailed, Err: err, Script: script(p)}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{State: StateFailed, Err: err, Script: script(p)}, err
	}

	result := Result{State: StateApplied, Statements: p.Statements}

	if opts.VerifyPostApply {
		warnings, err := verifyPostApply(ctx, p, targetConn, extractor)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("post-apply verification failed: %v", err))
		} else {
			result.Warnings = warnings
		}
	}

	return result, nil
}

func verifyPostApply(ctx context.Context, p *plan.Plan, targetConn db.DB, extractor catalog.Extractor) ([]string, error) {
	post, err := extractor.Extract(ctx, targetConn)
	if err != nil {
		return nil, err
	}
	postFP, err := fingerprint.Compute(post, p.ScopeIDs)
	if err != nil {
		return nil, err
	}
	if postFP != p.TargetFingerprint {
		return []string{fmt.Sprintf(
			"post-apply fingerprint %s does not match plan target fingerprint %s",
			postFP, p.TargetFingerprint,
		)}, nil
	}
	return nil, nil
}

// script renders p's statements as a single multi-line string, each
// joined with ";\n\n" and a trailing ";".
func script(p *plan.Plan) string {
	if len(p.Statements) == 0 {
		return ""
	}
	out := ""
	for i, stmt := range p.Statements {
		if i > 0 {
			out += ";\n\n"
		}
		out += stmt
	}
	return out + ";"
}
