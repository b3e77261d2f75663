// SPDX-License-Identifier: Apache-2.0

package change_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/emit"
)

func TestCreateUserMappingRedactedEmitMasksSensitiveOptions(t *testing.T) {
	t.Parallel()

	c := &change.CreateUserMapping{
		Server:  "srv1",
		User:    "alice",
		Options: map[string]string{"password": "hunter2", "host": "db1"},
	}

	redacted, err := c.RedactedEmit(emit.Default())
	require.NoError(t, err)
	assert.Contains(t, redacted, `"password" '__SENSITIVE_PASSWORD__'`)
	assert.Contains(t, redacted, `"host" 'db1'`)
	assert.NotContains(t, redacted, "hunter2")

	plain, err := c.Emit(emit.Default())
	require.NoError(t, err)
	assert.Contains(t, plain, "hunter2")
}

func TestAlterUserMappingRedactedEmitMasksSensitiveOptions(t *testing.T) {
	t.Parallel()

	a := &change.AlterUserMapping{
		Server:  "srv1",
		User:    "alice",
		Options: map[string]string{"secret": "s3cr3t"},
	}

	redacted, err := a.RedactedEmit(emit.Default())
	require.NoError(t, err)
	assert.Contains(t, redacted, `"secret" '__SENSITIVE_SECRET__'`)
	assert.NotContains(t, redacted, "s3cr3t")
}
