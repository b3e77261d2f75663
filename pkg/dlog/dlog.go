// SPDX-License-Identifier: Apache-2.0

// Package dlog logs the pipeline's events: diff, hook filtering, sort,
// plan build and apply. It deliberately takes only primitive values
// (no pkg/change, pkg/plan or pkg/apply types) so every other pipeline
// package can log without importing this one and vice versa.
package dlog

import "github.com/pterm/pterm"

// Logger is responsible for logging every stage of the diff/plan/apply
// pipeline.
type Logger interface {
	LogDiffStart(source, target string)
	LogDiffComplete(changeCount int)
	LogHookDropped(stableID, kind string)
	LogSortComplete(statementCount int)
	LogPlanBuilt(risk string, statementCount int)
	LogApplyStart(statementCount int)
	LogApplyResult(state string, warningCount int)

	Info(msg string, args ...any)
}

type pdiffLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

// New returns a Logger backed by pterm's default logger.
func New() Logger {
	return &pdiffLogger{logger: pterm.DefaultLogger}
}

// NewNoop returns a Logger that discards everything, for callers (like
// tests) that need the interface satisfied without any output.
func NewNoop() Logger {
	return &noopLogger{}
}

func (l *pdiffLogger) LogDiffStart(source, target string) {
	l.logger.Info("diffing catalogs", l.logger.Args("source", source, "target", target))
}

func (l *pdiffLogger) LogDiffComplete(changeCount int) {
	l.logger.Info("diff complete", l.logger.Args("change_count", changeCount))
}

func (l *pdiffLogger) LogHookDropped(stableID, kind string) {
	l.logger.Info("change dropped by hook filter", l.logger.Args("stable_id", stableID, "kind", kind))
}

func (l *pdiffLogger) LogSortComplete(statementCount int) {
	l.logger.Info("sort complete", l.logger.Args("statement_count", statementCount))
}

func (l *pdiffLogger) LogPlanBuilt(risk string, statementCount int) {
	l.logger.Info("plan built", l.logger.Args("risk", risk, "statement_count", statementCount))
}

func (l *pdiffLogger) LogApplyStart(statementCount int) {
	l.logger.Info("applying plan", l.logger.Args("statement_count", statementCount))
}

func (l *pdiffLogger) LogApplyResult(state string, warningCount int) {
	l.logger.Info("apply finished", l.logger.Args("state", state, "warning_count", warningCount))
}

func (l *pdiffLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args))
}

func (l *noopLogger) LogDiffStart(source, target string)    {}
func (l *noopLogger) LogDiffComplete(changeCount int)        {}
func (l *noopLogger) LogHookDropped(stableID, kind string)   {}
func (l *noopLogger) LogSortComplete(statementCount int)     {}
func (l *noopLogger) LogPlanBuilt(risk string, n int)        {}
func (l *noopLogger) LogApplyStart(statementCount int)       {}
func (l *noopLogger) LogApplyResult(state string, warns int) {}
func (l *noopLogger) Info(msg string, args ...any)           {}
