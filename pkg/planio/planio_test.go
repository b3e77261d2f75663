// SPDX-License-Identifier: Apache-2.0

package planio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgdiffhq/catalogdiff/pkg/plan"
	"github.com/pgdiffhq/catalogdiff/pkg/planio"
)

func samplePlan() *plan.Plan {
	return &plan.Plan{
		Version:           1,
		SourceFingerprint: "aaaa",
		TargetFingerprint: "bbbb",
		Statements:        []string{"CREATE SCHEMA app"},
		Risk:              plan.Risk{Level: plan.RiskSafe},
	}
}

func TestFromPlanRoundTripsThroughJSON(t *testing.T) {
	t.Parallel()

	env := planio.FromPlan(samplePlan(), nil, nil)
	data, err := planio.Marshal(env)
	require.NoError(t, err)

	got, err := planio.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, env.Source.Fingerprint, got.Source.Fingerprint)
	assert.Equal(t, env.Statements, got.Statements)
	assert.Equal(t, "safe", got.Risk.Level)
}

func TestFromPlanRoundTripsThroughYAML(t *testing.T) {
	t.Parallel()

	env := planio.FromPlan(samplePlan(), nil, nil)
	data, err := planio.MarshalYAML(env)
	require.NoError(t, err)

	got, err := planio.UnmarshalYAML(data)
	require.NoError(t, err)
	assert.Equal(t, env.Target.Fingerprint, got.Target.Fingerprint)
}

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	t.Parallel()

	env := planio.FromPlan(samplePlan(), nil, nil)
	data, err := planio.Marshal(env)
	require.NoError(t, err)

	assert.NoError(t, planio.Validate(data))
}

func TestValidateRejectsMissingRequiredField(t *testing.T) {
	t.Parallel()

	err := planio.Validate([]byte(`{"version": 1, "statements": []}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, planio.ErrInvalidPlan)
}

func TestValidateRejectsUnknownRiskLevel(t *testing.T) {
	t.Parallel()

	err := planio.Validate([]byte(`{
		"version": 1,
		"source": {"fingerprint": "aaaa"},
		"target": {"fingerprint": "bbbb"},
		"statements": [],
		"risk": {"level": "catastrophic"}
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, planio.ErrInvalidPlan)
}

func TestFromPlanLeavesRoleUnspecifiedWhenEmpty(t *testing.T) {
	t.Parallel()

	env := planio.FromPlan(samplePlan(), nil, nil)
	assert.False(t, env.Role.IsSpecified())

	data, err := planio.Marshal(env)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"role"`)
}

func TestFromPlanSetsRoleWhenPresent(t *testing.T) {
	t.Parallel()

	p := samplePlan()
	p.Role = "migrator"
	env := planio.FromPlan(p, nil, nil)

	require.True(t, env.Role.IsSpecified())
	require.False(t, env.Role.IsNull())
	v, err := env.Role.Get()
	require.NoError(t, err)
	assert.Equal(t, "migrator", v)
}

func TestToPlanRoundTripsScopeIDsAndRole(t *testing.T) {
	t.Parallel()

	p := samplePlan()
	p.Role = "migrator"
	p.ScopeIDs = []string{"table:public.widgets"}

	env := planio.FromPlan(p, nil, nil)
	data, err := planio.Marshal(env)
	require.NoError(t, err)

	decoded, err := planio.Unmarshal(data)
	require.NoError(t, err)

	got, err := decoded.ToPlan()
	require.NoError(t, err)
	assert.Equal(t, p.Role, got.Role)
	assert.Equal(t, p.ScopeIDs, got.ScopeIDs)
	assert.Equal(t, p.SourceFingerprint, got.SourceFingerprint)
	assert.Equal(t, p.TargetFingerprint, got.TargetFingerprint)
}

func TestValidateRejectsUnknownTopLevelField(t *testing.T) {
	t.Parallel()

	err := planio.Validate([]byte(`{
		"version": 1,
		"source": {"fingerprint": "aaaa"},
		"target": {"fingerprint": "bbbb"},
		"statements": [],
		"risk": {"level": "safe"},
		"unexpected": true
	}`))
	require.Error(t, err)
}
