// SPDX-License-Identifier: Apache-2.0

// Package emit holds the advisory SQL-formatting context: keyword
// casing, indentation, comma placement and column alignment. None of
// it changes what a Change does — only how
// its emitted text looks — so a Change's Creates/Requires/Drops sets
// never depend on an Options value, only its Emit return string does.
package emit

import "strings"

// KeywordCase controls how SQL keywords (CREATE, ALTER, NOT NULL, ...)
// are cased in emitted text. KeywordPreserve leaves a keyword exactly
// as the call site spelled it.
type KeywordCase int

const (
	KeywordPreserve KeywordCase = iota
	KeywordUpper
	KeywordLower
)

// CommaStyle controls where commas land in multi-line column/argument
// lists.
type CommaStyle int

const (
	CommaTrailing CommaStyle = iota // col1,\n  col2
	CommaLeading                    // col1\n  , col2
)

// Options is the formatting context threaded through every Change's
// Emit call. The zero value is entirely advisory-off: Enabled is
// false, so Keyword is identity and JoinColumns renders an inline,
// single-space comma list, matching what an un-formatted emission
// looks like. Use Default() for the engine's normal multi-line,
// upper-keyword formatting.
type Options struct {
	Enabled        bool
	Keywords       KeywordCase
	LineWidth      int
	IndentWidth    int
	Commas         CommaStyle
	AlignColumns   bool
	BlankLineAfter bool
}

// Default returns the engine's baseline formatting: upper-case keywords,
// two-space indents, trailing commas, one blank line between statements.
func Default() Options {
	return Options{
		Enabled:        true,
		Keywords:       KeywordUpper,
		LineWidth:      80,
		IndentWidth:    2,
		Commas:         CommaTrailing,
		AlignColumns:   false,
		BlankLineAfter: true,
	}
}

// Keyword cases s according to the option's KeywordCase. Formatting
// disabled, or KeywordPreserve, both leave s untouched — emission
// correctness never depends on keyword casing, only on the
// un-formatted SQL text underneath it.
func (o Options) Keyword(s string) string {
	if !o.Enabled {
		return s
	}
	switch o.Keywords {
	case KeywordUpper:
		return strings.ToUpper(s)
	case KeywordLower:
		return strings.ToLower(s)
	default:
		return s
	}
}

// Indent returns the whitespace prefix for the given nesting depth.
func (o Options) Indent(depth int) string {
	width := o.IndentWidth
	if width <= 0 {
		width = 2
	}
	return strings.Repeat(" ", width*depth)
}

// JoinColumns lays out a parenthesized column/argument list. Disabled,
// it renders inline as a plain comma-space list; enabled, it breaks one
// item per line, honoring the comma style and, if AlignColumns is set,
// padding every item to the widest item's width first.
func (o Options) JoinColumns(items []string, depth int) string {
	if len(items) == 0 {
		return "()"
	}
	if !o.Enabled {
		return "(" + strings.Join(items, ", ") + ")"
	}
	if o.AlignColumns {
		items = padColumns(items)
	}
	indent := o.Indent(depth)
	var b strings.Builder
	b.WriteString("(\n")
	for i, item := range items {
		b.WriteString(indent)
		if o.Commas == CommaLeading && i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item)
		if o.Commas == CommaTrailing && i < len(items)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(" ", max(0, (depth-1)*o.nonZeroIndentWidth())))
	b.WriteString(")")
	return b.String()
}

func (o Options) nonZeroIndentWidth() int {
	if o.IndentWidth <= 0 {
		return 2
	}
	return o.IndentWidth
}

// StatementSeparator is what Changes joins consecutive statements with
// when a single Emit call produces more than one (e.g. an ALTER TABLE
// plus a COMMENT ON).
func (o Options) StatementSeparator() string {
	if !o.Enabled {
		return "; "
	}
	if o.BlankLineAfter {
		return ";\n\n"
	}
	return ";\n"
}

// padColumns right-pads every item to the width of the widest one,
// giving a ragged column/argument list the aligned look AlignColumns
// asks for once JoinColumns breaks it one item per line.
func padColumns(items []string) []string {
	width := 0
	for _, it := range items {
		if len(it) > width {
			width = len(it)
		}
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it + strings.Repeat(" ", width-len(it))
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
