// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/db"
)

// unimplementedExtractor satisfies catalog.Extractor without running
// any pg_catalog queries. Catalog extraction — the database driver and
// the catalog-introspection SQL queries themselves — is consumed via
// an abstract catalog.Extractor interface; this module implements the
// engine the extracted Catalog feeds, not the extraction queries
// themselves. Embedders of this CLI wire their own catalog.Extractor
// in place of this one; it exists only so `cmd.Execute()` type-checks
// and fails loudly, rather than not compiling, when run as-is.
type unimplementedExtractor struct{}

func (unimplementedExtractor) Extract(ctx context.Context, conn db.DB) (*catalog.Catalog, error) {
	return nil, fmt.Errorf("catalogdiff: no catalog.Extractor wired; pg_catalog introspection is an external collaborator this build does not implement")
}
