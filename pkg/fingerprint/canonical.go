// SPDX-License-Identifier: Apache-2.0

package fingerprint

import "encoding/json"

// canonicalJSON encodes v with recursively sorted object keys and no
// insignificant whitespace. encoding/json already sorts string-typed
// map keys at every nesting depth, which is exactly the recursive-sort
// property a stable fingerprint needs — no custom encoder is needed.
// Integers that must survive round-tripping without float truncation
// (sequence bounds, etc.) are pre-converted to decimal strings by
// catalog.Snapshot before they ever reach this function.
func canonicalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
