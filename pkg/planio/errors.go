// SPDX-License-Identifier: Apache-2.0

package planio

import "errors"

// ErrInvalidPlan is the InvalidPlan error kind: plan JSON that failed
// schema validation. Wrapped with %w so callers can
// errors.Is against it regardless of which validation step produced
// the underlying message.
var ErrInvalidPlan = errors.New("planio: invalid plan")
