// SPDX-License-Identifier: Apache-2.0

// Package fingerprint computes the scope fingerprint: a SHA-256
// digest over the canonical-JSON encoding of the
// sorted (stable_id, snapshot) pairs a set of Changes touches in a
// given Catalog. Two invocations over equal (catalog, changes) pairs
// always yield identical hashes; nothing wall-clock or iteration-order
// dependent participates.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
)

// ScopeIDs collects the union of every stable ID appearing in any of
// changes' Creates/Requires/Drops. The result is the plan's persisted
// scope — Apply recovers it later to refingerprint target_conn without
// re-running diff.
func ScopeIDs(changes change.Changes) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, c := range changes {
		for _, id := range c.Creates() {
			add(id)
		}
		for _, id := range c.Requires() {
			add(id)
		}
		for _, id := range c.Drops() {
			add(id)
		}
	}
	sort.Strings(ids)
	return ids
}

// pair is one (stable_id, snapshot) entry in the canonical encoding.
// Fields are ordered and named so json.Marshal's struct-field order
// (not map order) drives the outer array's shape; canonicalSort below
// handles the recursive key sort inside each Snapshot.
type pair struct {
	StableID string            `json:"stable_id"`
	Snapshot catalog.Snapshot `json:"snapshot"`
}

// Compute hashes cat's stable_snapshot() projection of every ID in ids
// that actually resolves in cat. IDs with no resolving object (already
// dropped, or never existed in this catalog) are skipped rather than
// erroring — the source and target catalogs each only ever resolve
// their own half of a create/drop pair.
func Compute(cat *catalog.Catalog, ids []string) (string, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	pairs := make([]pair, 0, len(sorted))
	for _, id := range sorted {
		snap, ok := cat.Snapshot(id)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{StableID: id, Snapshot: snap})
	}

	encoded, err := canonicalJSON(pairs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// ComputeForChanges is the common entry point: collects changes' scope
// IDs and hashes cat's projection of them.
func ComputeForChanges(cat *catalog.Catalog, changes change.Changes) (string, error) {
	return Compute(cat, ScopeIDs(changes))
}
