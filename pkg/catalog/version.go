// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// MinSupportedVersion is the oldest PostgreSQL major version the diff
// engine assumes: multi-value ALTER TYPE ... ADD VALUE and identity
// columns (GENERATED ... AS IDENTITY) both require PostgreSQL 10+.
const MinSupportedVersion = "v10.0.0"

// CheckServerVersion reports an error if c.ServerVersion is missing,
// not a valid semver string, or older than MinSupportedVersion.
func (c *Catalog) CheckServerVersion() error {
	if c.ServerVersion == "" {
		return fmt.Errorf("catalog: server version not set")
	}
	if !semver.IsValid(c.ServerVersion) {
		return fmt.Errorf("catalog: invalid server version %q", c.ServerVersion)
	}
	if semver.Compare(c.ServerVersion, MinSupportedVersion) < 0 {
		return fmt.Errorf("catalog: server version %s is older than the minimum supported %s",
			c.ServerVersion, MinSupportedVersion)
	}
	return nil
}
