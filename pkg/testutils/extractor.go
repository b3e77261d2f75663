// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"context"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/db"
)

// FakeExtractor stands in for the external catalog-extraction
// collaborator (pkg/catalog.Extractor is defined as external to this
// module's scope): it returns whichever Catalog the
// test wired up, regardless of conn's actual state, so engine tests
// can drive fingerprint comparisons deterministically while still
// exercising a real transaction against a real database.
type FakeExtractor struct {
	Catalog *catalog.Catalog
}

func (f *FakeExtractor) Extract(ctx context.Context, conn db.DB) (*catalog.Catalog, error) {
	return f.Catalog, nil
}
