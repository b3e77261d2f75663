// SPDX-License-Identifier: Apache-2.0

package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
)

func TestCheckServerVersionAcceptsSupportedVersion(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	cat.ServerVersion = "v16.3.0"
	assert.NoError(t, cat.CheckServerVersion())
}

func TestCheckServerVersionRejectsTooOld(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	cat.ServerVersion = "v9.6.0"
	assert.Error(t, cat.CheckServerVersion())
}

func TestCheckServerVersionRejectsMissing(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	assert.Error(t, cat.CheckServerVersion())
}

func TestCheckServerVersionRejectsInvalid(t *testing.T) {
	t.Parallel()

	cat := catalog.New()
	cat.ServerVersion = "16.3"
	assert.Error(t, cat.CheckServerVersion())
}
