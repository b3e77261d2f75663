// SPDX-License-Identifier: Apache-2.0

// Package schema embeds the JSON Schema documents this module ships,
// so pkg/planio can validate a plan without relying on a file path
// resolvable at runtime.
package schema

import _ "embed"

//go:embed plan.schema.json
var PlanSchemaJSON []byte
