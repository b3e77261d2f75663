// SPDX-License-Identifier: Apache-2.0

// Package planio (de)serializes a pkg/plan.Plan to its stable wire
// envelope, validates it against the module's embedded JSON Schema,
// and renders it as JSON or YAML — the plan-file analogue of a
// migration tool's own read/write layer.
package planio

import (
	"encoding/json"
	"fmt"

	"github.com/oapi-codegen/nullable"

	"github.com/pgdiffhq/catalogdiff/pkg/plan"
)

// Envelope is the exact JSON shape of a plan file on disk. Field order
// matches the canonical field listing; omitempty is used only for
// fields that are genuinely optional.
//
// Role is a tri-state, not a plain optional string: "absent" means the
// plan carries no opinion about the session role (the apply engine
// runs as whatever role the connection already has); "explicit null"
// means the plan was built with an override that resets back to the
// connection's default role; "present" means SET ROLE <value> belongs
// in the session prelude. A plain `*string`/omitempty can't distinguish
// the first two, so Role uses nullable.Nullable[string] instead.
type Envelope struct {
	Version     int            `json:"version"`
	ToolVersion string         `json:"toolVersion,omitempty"`
	Source      FingerprintRef `json:"source"`
	Target      FingerprintRef `json:"target"`
	Statements  []string       `json:"statements"`
	// Role is not JSON-tagged directly: its wire representation needs
	// to distinguish "key absent" from "key present with value null"
	// from "key present with a string", a three-way split plain struct
	// tags on a value type can't express. Marshal/Unmarshal encode it
	// by hand via wireEnvelope instead.
	Role      nullable.Nullable[string] `json:"-"`
	Filter    json.RawMessage           `json:"filter,omitempty"`
	Serialize json.RawMessage           `json:"serialize,omitempty"`
	Risk      RiskEnvelope              `json:"risk"`
	// ScopeIDs persists the stable IDs Apply must re-fingerprint the
	// target catalog over. Recovering scope from already-emitted SQL
	// would need a SQL parser, an explicit non-goal, so this module
	// persists scope on the plan instead.
	ScopeIDs []string `json:"scopeIds,omitempty"`
}

// wireEnvelope is Envelope's actual on-the-wire shape. Role is a
// json.RawMessage here so Marshal/Unmarshal can populate or inspect it
// by hand: a nil/empty RawMessage omits the key entirely (standard
// omitempty semantics on a []byte), while a non-nil RawMessage of
// exactly "null" round-trips an explicit null distinctly from an
// absent key.
type wireEnvelope struct {
	Version     int             `json:"version"`
	ToolVersion string          `json:"toolVersion,omitempty"`
	Source      FingerprintRef  `json:"source"`
	Target      FingerprintRef  `json:"target"`
	Statements  []string        `json:"statements"`
	Role        json.RawMessage `json:"role,omitempty"`
	Filter      json.RawMessage `json:"filter,omitempty"`
	Serialize   json.RawMessage `json:"serialize,omitempty"`
	Risk        RiskEnvelope    `json:"risk"`
	ScopeIDs    []string        `json:"scopeIds,omitempty"`
}

// FingerprintRef is the `{ "fingerprint": "<hex>" }` shape shared by
// the envelope's source and target fields.
type FingerprintRef struct {
	Fingerprint string `json:"fingerprint"`
}

// RiskEnvelope mirrors plan.Risk's wire shape: statements is only
// present for a data_loss risk level.
type RiskEnvelope struct {
	Level      string   `json:"level"`
	Statements []string `json:"statements,omitempty"`
}

// FromPlan converts a built Plan into its wire Envelope. filter and
// serialize are opaque hook configuration blobs the core never
// inspects — callers pass through whatever their hook collaborators
// serialized, or nil. p.Role == "" becomes an
// unspecified Role field; any non-empty role becomes a present value.
// FromPlan never produces an explicit-null Role — Build has no way to
// request "reset to default role" yet (see DESIGN.md).
func FromPlan(p *plan.Plan, filter, serialize json.RawMessage) *Envelope {
	var role nullable.Nullable[string]
	if p.Role != "" {
		role = nullable.NewNullableWithValue(p.Role)
	}

	return &Envelope{
		Version:     p.Version,
		ToolVersion: p.ToolVersion,
		Source:      FingerprintRef{Fingerprint: p.SourceFingerprint},
		Target:      FingerprintRef{Fingerprint: p.TargetFingerprint},
		Statements:  p.Statements,
		Role:        role,
		Filter:      filter,
		Serialize:   serialize,
		Risk: RiskEnvelope{
			Level:      string(p.Risk.Level),
			Statements: p.Risk.Statements,
		},
		ScopeIDs: p.ScopeIDs,
	}
}

// ToPlan reconstructs the *plan.Plan an apply-time caller needs from a
// decoded Envelope. An explicit-null or unspecified Role both decode
// to an empty plan.Plan.Role (no SET ROLE statement) — the apply
// engine has no notion of "reset to default role" distinct from
// "don't touch the role" (see DESIGN.md).
func (e *Envelope) ToPlan() (*plan.Plan, error) {
	role := ""
	if e.Role.IsSpecified() && !e.Role.IsNull() {
		v, err := e.Role.Get()
		if err != nil {
			return nil, fmt.Errorf("planio: decoding role: %w", err)
		}
		role = v
	}

	return &plan.Plan{
		Version:           e.Version,
		ToolVersion:       e.ToolVersion,
		SourceFingerprint: e.Source.Fingerprint,
		TargetFingerprint: e.Target.Fingerprint,
		ScopeIDs:          e.ScopeIDs,
		Statements:        e.Statements,
		Role:              role,
		Risk: plan.Risk{
			Level:      plan.RiskLevel(e.Risk.Level),
			Statements: e.Risk.Statements,
		},
	}, nil
}

// Marshal encodes e as indented JSON (two-space indent).
func Marshal(e *Envelope) ([]byte, error) {
	w := wireEnvelope{
		Version:     e.Version,
		ToolVersion: e.ToolVersion,
		Source:      e.Source,
		Target:      e.Target,
		Statements:  e.Statements,
		Filter:      e.Filter,
		Serialize:   e.Serialize,
		Risk:        e.Risk,
		ScopeIDs:    e.ScopeIDs,
	}

	if e.Role.IsSpecified() {
		if e.Role.IsNull() {
			w.Role = json.RawMessage("null")
		} else {
			v, err := e.Role.Get()
			if err != nil {
				return nil, fmt.Errorf("planio: encoding role: %w", err)
			}
			b, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			w.Role = b
		}
	}

	return json.MarshalIndent(w, "", "  ")
}

// Unmarshal decodes an Envelope from JSON bytes. It does not validate
// against the schema — call Validate first if the input is untrusted.
func Unmarshal(data []byte) (*Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	e := &Envelope{
		Version:     w.Version,
		ToolVersion: w.ToolVersion,
		Source:      w.Source,
		Target:      w.Target,
		Statements:  w.Statements,
		Filter:      w.Filter,
		Serialize:   w.Serialize,
		Risk:        w.Risk,
		ScopeIDs:    w.ScopeIDs,
	}

	if w.Role != nil {
		if string(w.Role) == "null" {
			e.Role.SetNull()
		} else {
			var v string
			if err := json.Unmarshal(w.Role, &v); err != nil {
				return nil, fmt.Errorf("planio: decoding role: %w", err)
			}
			e.Role = nullable.NewNullableWithValue(v)
		}
	}

	return e, nil
}
