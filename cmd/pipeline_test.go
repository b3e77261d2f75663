// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptJoinsStatementsWithTrailingSemicolon(t *testing.T) {
	t.Parallel()

	out := script([]string{"CREATE SCHEMA app", "CREATE TABLE app.widgets (id int)"})
	assert.Equal(t, "CREATE SCHEMA app;\n\nCREATE TABLE app.widgets (id int);", out)
}

func TestScriptReturnsEmptyStringForNoStatements(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", script(nil))
}
