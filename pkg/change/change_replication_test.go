// SPDX-License-Identifier: Apache-2.0

package change_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/emit"
)

func TestCreateSubscriptionRedactedEmitMasksPassword(t *testing.T) {
	t.Parallel()

	c := &change.CreateSubscription{
		Name:        "sub1",
		Conninfo:    "host=db1 dbname=app user=repl password=hunter2",
		Publication: []string{"pub1"},
		Enabled:     true,
	}

	redacted, err := c.RedactedEmit(emit.Default())
	require.NoError(t, err)
	assert.Contains(t, redacted, "password=__SENSITIVE_PASSWORD__")
	assert.NotContains(t, redacted, "hunter2")
	assert.True(t, strings.HasPrefix(redacted, "--"), "expected a warning comment on the preceding line, got: %s", redacted)

	plain, err := c.Emit(emit.Default())
	require.NoError(t, err)
	assert.Contains(t, plain, "hunter2")
	assert.False(t, strings.HasPrefix(plain, "--"))
}

func TestCreateSubscriptionRedactedEmitLeavesConninfoWithoutPasswordAlone(t *testing.T) {
	t.Parallel()

	c := &change.CreateSubscription{
		Name:        "sub1",
		Conninfo:    "host=db1 dbname=app user=repl",
		Publication: []string{"pub1"},
	}

	redacted, err := c.RedactedEmit(emit.Default())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(redacted, "--"))
	assert.Equal(t, redacted, mustEmit(t, c))
}

func TestAlterSubscriptionRedactedEmitMasksPassword(t *testing.T) {
	t.Parallel()

	conninfo := "host=db2 dbname=app user=repl password=s3cr3t"
	a := &change.AlterSubscription{
		Name:        "sub1",
		NewConninfo: &conninfo,
	}

	redacted, err := a.RedactedEmit(emit.Default())
	require.NoError(t, err)
	assert.Contains(t, redacted, "password=__SENSITIVE_PASSWORD__")
	assert.NotContains(t, redacted, "s3cr3t")
	assert.True(t, strings.HasPrefix(redacted, "--"))
}

func TestAlterSubscriptionRedactedEmitWithNoConninfoChange(t *testing.T) {
	t.Parallel()

	a := &change.AlterSubscription{Name: "sub1", Publication: []string{"pub2"}}

	redacted, err := a.RedactedEmit(emit.Default())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(redacted, "--"))
}

func mustEmit(t *testing.T, c *change.CreateSubscription) string {
	t.Helper()
	s, err := c.Emit(emit.Default())
	require.NoError(t, err)
	return s
}
