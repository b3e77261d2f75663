// SPDX-License-Identifier: Apache-2.0

package catalog

import "sort"

// Snapshot is the canonical (identity, data) projection of a single
// catalog object. It omits non-deterministic
// fields (OIDs, sizes, cached flags — none of which this package's
// records carry in the first place) and recursively sorts nested
// collections so that two catalogs with identical object state always
// produce byte-identical snapshots regardless of map iteration order.
type Snapshot map[string]any

func privsToAny(privs []Privilege) []any {
	sorted := append([]Privilege(nil), privs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Grantee != sorted[j].Grantee {
			return sorted[i].Grantee < sorted[j].Grantee
		}
		return sorted[i].Priv < sorted[j].Priv
	})
	out := make([]any, len(sorted))
	for i, p := range sorted {
		out[i] = map[string]any{"grantee": p.Grantee, "priv": p.Priv, "grantable": p.Grantable}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns the stable (identity, data) projection for the
// object addressed by stableID, or (nil, false) if it doesn't resolve
// to a known object in this catalog. This is a computed view, not the
// canonical representation — nothing in this package reads it back.
func (c *Catalog) Snapshot(stableID string) (Snapshot, bool) {
	if s, ok := c.Schemas[stableID]; ok {
		return Snapshot{
			"kind": "schema", "name": s.Name,
			"owner": s.Owner, "comment": s.Comment, "acl": privsToAny(s.Acl),
		}, true
	}
	if r, ok := c.Roles[stableID]; ok {
		members := append([]string(nil), r.MemberOf...)
		sort.Strings(members)
		return Snapshot{
			"kind": "role", "name": r.Name,
			"superuser": r.Superuser, "createdb": r.CreateDB, "createrole": r.CreateRole,
			"login": r.Login, "replication": r.Replication, "connectionLimit": r.ConnectionLimit,
			"memberOf": members, "comment": r.Comment,
		}, true
	}
	if t, ok := c.Tables[stableID]; ok {
		return Snapshot{"kind": "table", "schema": t.Schema, "name": t.Name, "data": tableData(t)}, true
	}
	if v, ok := c.Views[stableID]; ok {
		return Snapshot{
			"kind": "view", "schema": v.Schema, "name": v.Name,
			"owner": v.Owner, "definition": v.Definition, "comment": v.Comment, "acl": privsToAny(v.Acl),
		}, true
	}
	if m, ok := c.MaterializedViews[stableID]; ok {
		return Snapshot{
			"kind": "materializedView", "schema": m.Schema, "name": m.Name,
			"owner": m.Owner, "definition": m.Definition, "indexes": indexesData(m.Indexes),
			"comment": m.Comment, "acl": privsToAny(m.Acl),
		}, true
	}
	if s, ok := c.Sequences[stableID]; ok {
		return Snapshot{
			"kind": "sequence", "schema": s.Schema, "name": s.Name, "owner": s.Owner,
			"dataType": s.DataType, "start": bigint(s.Start), "increment": bigint(s.Increment),
			"minValue": bigint(s.MinValue), "maxValue": bigint(s.MaxValue), "cycle": s.Cycle,
			"cacheSize": bigint(s.CacheSize), "ownedByTable": s.OwnedByTable, "ownedByCol": s.OwnedByCol,
			"comment": s.Comment, "acl": privsToAny(s.Acl),
		}, true
	}
	if ty, ok := c.Types[stableID]; ok {
		cols := make([]any, len(ty.Columns))
		for i, col := range ty.Columns {
			cols[i] = map[string]any{"name": col.Name, "dataType": col.DataType}
		}
		return Snapshot{
			"kind": "type", "schema": ty.Schema, "name": ty.Name, "owner": ty.Owner,
			"typeKind": string(ty.Kind), "labels": append([]string(nil), ty.Labels...),
			"columns": cols, "subtype": ty.Subtype, "comment": ty.Comment, "acl": privsToAny(ty.Acl),
		}, true
	}
	if d, ok := c.Domains[stableID]; ok {
		return Snapshot{
			"kind": "domain", "schema": d.Schema, "name": d.Name, "owner": d.Owner,
			"baseType": d.BaseType, "notNull": d.NotNull, "default": strPtr(d.Default),
			"constraints": constraintsData(d.Constraints), "comment": d.Comment, "acl": privsToAny(d.Acl),
		}, true
	}
	if r, ok := c.Routines[stableID]; ok {
		return Snapshot{
			"kind": string(r.Kind), "schema": r.Schema, "name": r.Name, "owner": r.Owner,
			"argSig": r.ArgSig, "arguments": r.Arguments, "returnType": r.ReturnType,
			"language": r.Language, "volatility": r.Volatility, "body": r.Body,
			"transitionFunction": r.TransitionFunction, "stateType": r.StateType,
			"finalFunction": r.FinalFunction, "initialCondition": r.InitialCondition,
			"comment": r.Comment, "acl": privsToAny(r.Acl),
		}, true
	}
	if co, ok := c.Collations[stableID]; ok {
		return Snapshot{
			"kind": "collation", "schema": co.Schema, "name": co.Name, "owner": co.Owner,
			"provider": co.Provider, "locale": co.Locale, "comment": co.Comment,
		}, true
	}
	if e, ok := c.Extensions[stableID]; ok {
		return Snapshot{"kind": "extension", "name": e.Name, "schema": e.Schema, "version": e.Version, "comment": e.Comment}, true
	}
	if l, ok := c.Languages[stableID]; ok {
		return Snapshot{"kind": "language", "name": l.Name, "owner": l.Owner, "trusted": l.Trusted, "comment": l.Comment}, true
	}
	if f, ok := c.ForeignDataWrappers[stableID]; ok {
		return Snapshot{
			"kind": "foreignDataWrapper", "name": f.Name, "owner": f.Owner,
			"handler": f.Handler, "validator": f.Validator, "options": optionsData(f.Options), "comment": f.Comment,
		}, true
	}
	if s, ok := c.Servers[stableID]; ok {
		return Snapshot{
			"kind": "server", "name": s.Name, "owner": s.Owner, "fdw": s.FDW,
			"type": s.Type, "version": s.Version, "options": optionsData(redactOptions(s.Options)), "comment": s.Comment,
		}, true
	}
	if u, ok := c.UserMappings[stableID]; ok {
		return Snapshot{
			"kind": "userMapping", "server": u.Server, "user": u.User,
			"options": optionsData(redactOptions(u.Options)),
		}, true
	}
	if ft, ok := c.ForeignTables[stableID]; ok {
		return Snapshot{
			"kind": "foreignTable", "schema": ft.Schema, "name": ft.Name, "owner": ft.Owner,
			"server": ft.Server, "options": optionsData(ft.Options), "comment": ft.Comment, "acl": privsToAny(ft.Acl),
		}, true
	}
	if p, ok := c.Publications[stableID]; ok {
		tables := append([]string(nil), p.Tables...)
		sort.Strings(tables)
		return Snapshot{
			"kind": "publication", "name": p.Name, "owner": p.Owner, "allTables": p.AllTables,
			"tables": tables, "insert": p.PubInsert, "update": p.PubUpdate,
			"delete": p.PubDelete, "truncate": p.PubTruncate,
		}, true
	}
	if s, ok := c.Subscriptions[stableID]; ok {
		pubs := append([]string(nil), s.Publication...)
		sort.Strings(pubs)
		return Snapshot{
			"kind": "subscription", "name": s.Name, "owner": s.Owner,
			"publication": pubs, "enabled": s.Enabled, "twoPhase": s.TwoPhase,
		}, true
	}
	if e, ok := c.EventTriggers[stableID]; ok {
		tags := append([]string(nil), e.Tags...)
		sort.Strings(tags)
		return Snapshot{
			"kind": "eventTrigger", "name": e.Name, "owner": e.Owner, "event": e.Event,
			"tags": tags, "function": e.Function, "enabled": e.Enabled,
		}, true
	}
	return nil, false
}

func tableData(t *Table) map[string]any {
	cols := append([]Column(nil), t.Columns...)
	sort.Slice(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	colData := make([]any, len(cols))
	for i, c := range cols {
		colData[i] = map[string]any{
			"name": c.Name, "position": c.Position, "dataType": c.DataType, "notNull": c.NotNull,
			"default": strPtr(c.Default), "generatedExpr": strPtr(c.GeneratedExpr),
			"collation": c.Collation, "comment": c.Comment, "acl": privsToAny(c.Acl),
		}
	}
	return map[string]any{
		"owner": t.Owner, "columns": colData,
		"constraints": constraintsData(t.Constraints), "indexes": indexesData(t.Indexes),
		"triggers": triggersData(t.Triggers), "policies": policiesData(t.Policies),
		"rules": rulesData(t.Rules), "rlsEnabled": t.RLSEnabled, "rlsForced": t.RLSForced,
		"comment": t.Comment, "acl": privsToAny(t.Acl),
	}
}

func constraintsData(m map[string]Constraint) []any {
	out := make([]any, 0, len(m))
	for _, name := range sortedKeys(m) {
		c := m[name]
		out = append(out, map[string]any{
			"name": c.Name, "type": string(c.Type), "columns": append([]string(nil), c.Columns...),
			"referencedSchema": c.ReferencedSchema, "referencedTable": c.ReferencedTable,
			"referencedColumns": append([]string(nil), c.ReferencedColumns...),
			"onDelete": c.OnDelete, "onUpdate": c.OnUpdate, "checkClause": c.CheckClause,
			"deferrable": c.Deferrable, "initiallyDeferred": c.InitiallyDeferred,
			"validated": c.Validated, "comment": c.Comment,
		})
	}
	return out
}

func indexesData(m map[string]Index) []any {
	out := make([]any, 0, len(m))
	for _, name := range sortedKeys(m) {
		idx := m[name]
		out = append(out, map[string]any{
			"name": idx.Name, "columns": append([]string(nil), idx.Columns...),
			"unique": idx.Unique, "method": idx.Method, "where": idx.Where, "comment": idx.Comment,
		})
	}
	return out
}

func triggersData(m map[string]Trigger) []any {
	out := make([]any, 0, len(m))
	for _, name := range sortedKeys(m) {
		tr := m[name]
		out = append(out, map[string]any{
			"name": tr.Name, "timing": tr.Timing, "events": append([]string(nil), tr.Events...),
			"level": tr.Level, "function": tr.Function, "condition": tr.Condition,
			"definition": tr.Definition,
		})
	}
	return out
}

func policiesData(m map[string]RLSPolicy) []any {
	out := make([]any, 0, len(m))
	for _, name := range sortedKeys(m) {
		p := m[name]
		roles := append([]string(nil), p.Roles...)
		sort.Strings(roles)
		out = append(out, map[string]any{
			"name": p.Name, "permissive": p.Permissive, "command": p.Command,
			"roles": roles, "using": p.Using, "withCheck": p.WithCheck,
		})
	}
	return out
}

func rulesData(m map[string]Rule) []any {
	out := make([]any, 0, len(m))
	for _, name := range sortedKeys(m) {
		out = append(out, map[string]any{"name": m[name].Name, "definition": m[name].Definition})
	}
	return out
}

func optionsData(m map[string]string) []any {
	out := make([]any, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, map[string]any{"key": k, "value": m[k]})
	}
	return out
}

// redactOptions masks sensitive option values (e.g. "password") before
// they participate in a fingerprint, mirroring the placeholder used at
// emission time so the fingerprint doesn't change purely because a
// password rotated.
func redactOptions(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k == "password" {
			out[k] = "__SENSITIVE_PASSWORD__"
			continue
		}
		out[k] = v
	}
	return out
}

func strPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// bigint canonicalizes an integer as a decimal string, avoiding float
// truncation across independent implementations of the same
// fingerprint scheme.
func bigint(v int64) string {
	return itoa(v)
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
