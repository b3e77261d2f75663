// SPDX-License-Identifier: Apache-2.0

package planio

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// MarshalYAML renders e as YAML, following the same JSON-tag-driven
// encoding a migration writer typically uses for its YAML output
// (sigs.k8s.io/yaml round-trips through encoding/json). It goes
// through Marshal rather than yaml.Marshal(e) directly so the Role
// tri-state's hand-rolled encoding in Marshal still applies.
func MarshalYAML(e *Envelope) ([]byte, error) {
	data, err := Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("planio: encode yaml plan: %w", err)
	}
	out, err := yaml.JSONToYAML(data)
	if err != nil {
		return nil, fmt.Errorf("planio: encode yaml plan: %w", err)
	}
	return out, nil
}

// UnmarshalYAML decodes an Envelope from YAML bytes, via Unmarshal so
// the Role tri-state's hand-rolled decoding still applies.
func UnmarshalYAML(data []byte) (*Envelope, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("planio: decode yaml plan: %w", err)
	}
	e, err := Unmarshal(jsonData)
	if err != nil {
		return nil, fmt.Errorf("planio: decode yaml plan: %w", err)
	}
	return e, nil
}
