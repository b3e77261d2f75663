// SPDX-License-Identifier: Apache-2.0

package dlog_test

import (
	"testing"

	"github.com/pgdiffhq/catalogdiff/pkg/dlog"
)

func TestNoopLoggerSatisfiesInterfaceWithoutPanicking(t *testing.T) {
	t.Parallel()

	var l dlog.Logger = dlog.NewNoop()

	l.LogDiffStart("source_db", "target_db")
	l.LogDiffComplete(3)
	l.LogHookDropped("table:public.widgets", "table")
	l.LogSortComplete(5)
	l.LogPlanBuilt("safe", 5)
	l.LogApplyStart(5)
	l.LogApplyResult("applied", 0)
	l.Info("done")
}

func TestNewReturnsAPtermBackedLogger(t *testing.T) {
	t.Parallel()

	l := dlog.New()
	if l == nil {
		t.Fatal("New() returned nil")
	}
}
