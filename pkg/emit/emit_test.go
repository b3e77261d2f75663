// SPDX-License-Identifier: Apache-2.0

package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgdiffhq/catalogdiff/pkg/emit"
)

func TestKeywordDisabledIsIdentity(t *testing.T) {
	t.Parallel()

	var o emit.Options // zero value: Enabled == false
	assert.Equal(t, "create table", o.Keyword("create table"))
}

func TestKeywordPreserveIsIdentityEvenWhenEnabled(t *testing.T) {
	t.Parallel()

	o := emit.Options{Enabled: true, Keywords: emit.KeywordPreserve}
	assert.Equal(t, "Create Table", o.Keyword("Create Table"))
}

func TestKeywordUpperAndLower(t *testing.T) {
	t.Parallel()

	upper := emit.Options{Enabled: true, Keywords: emit.KeywordUpper}
	assert.Equal(t, "CREATE TABLE", upper.Keyword("create table"))

	lower := emit.Options{Enabled: true, Keywords: emit.KeywordLower}
	assert.Equal(t, "create table", lower.Keyword("CREATE TABLE"))
}

func TestJoinColumnsDisabledRendersInline(t *testing.T) {
	t.Parallel()

	var o emit.Options
	assert.Equal(t, "(a, b, c)", o.JoinColumns([]string{"a", "b", "c"}, 1))
}

func TestJoinColumnsEnabledBreaksOnePerLine(t *testing.T) {
	t.Parallel()

	o := emit.Default()
	got := o.JoinColumns([]string{"a", "b"}, 1)
	assert.Equal(t, "(\n  a,\n  b\n)", got)
}

func TestJoinColumnsEmptyIsBareParens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "()", emit.Default().JoinColumns(nil, 1))
	assert.Equal(t, "()", (emit.Options{}).JoinColumns(nil, 1))
}

func TestJoinColumnsAlignColumnsPadsToWidestItem(t *testing.T) {
	t.Parallel()

	o := emit.Default()
	o.AlignColumns = true
	got := o.JoinColumns([]string{"a", "bbb"}, 1)
	assert.Equal(t, "(\n  a  ,\n  bbb\n)", got)
}

func TestStatementSeparatorDisabledIsSingleSpace(t *testing.T) {
	t.Parallel()

	var o emit.Options
	assert.Equal(t, "; ", o.StatementSeparator())
}

func TestStatementSeparatorEnabledBlankLine(t *testing.T) {
	t.Parallel()

	o := emit.Default()
	assert.Equal(t, ";\n\n", o.StatementSeparator())

	o.BlankLineAfter = false
	assert.Equal(t, ";\n", o.StatementSeparator())
}

func TestDefaultIsComparableZeroValueDistinct(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, emit.Options{}, emit.Default())
}
