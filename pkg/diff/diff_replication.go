// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"reflect"

	"github.com/pgdiffhq/catalogdiff/pkg/catalog"
	"github.com/pgdiffhq/catalogdiff/pkg/change"
	"github.com/pgdiffhq/catalogdiff/pkg/ident"
	"github.com/pgdiffhq/catalogdiff/pkg/objtype"
)

// diffPublications handles pkg/catalog.Publication. AllTables, Tables and
// the four PubXxx flags are all alterable in place via ALTER PUBLICATION.
func diffPublications(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Publications, target.Publications)

	var out change.Changes
	for _, p := range created {
		out = append(out, &change.CreatePublication{Name: p.Name, Owner: p.Owner, PublicationAttrs: publicationAttrs(p)})
	}
	for _, p := range dropped {
		out = append(out, &change.DropPublication{Name: p.Name})
	}
	for _, a := range altered {
		ref := publicationRef(a.Target)
		if !reflect.DeepEqual(publicationAttrs(a.Source), publicationAttrs(a.Target)) {
			out = append(out, &change.AlterPublication{Name: a.Target.Name, PublicationAttrs: publicationAttrs(a.Target)})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
	}
	return out
}

func publicationAttrs(p *catalog.Publication) change.PublicationAttrs {
	return change.PublicationAttrs{AllTables: p.AllTables, Tables: p.Tables, PubInsert: p.PubInsert,
		PubUpdate: p.PubUpdate, PubDelete: p.PubDelete, PubTruncate: p.PubTruncate}
}

func publicationRef(p *catalog.Publication) change.ObjectRef {
	return objectRef(objtype.KindPublication, p.StableID(), ident.Quote(p.Name))
}

// diffSubscriptions handles pkg/catalog.Subscription. Conninfo,
// Publication and Enabled are alterable in place; TwoPhase has no Alter
// facet and forces a drop+create replace, per the Subscription struct's
// own field comment.
func diffSubscriptions(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.Subscriptions, target.Subscriptions)

	var out change.Changes
	for _, s := range created {
		out = append(out, &change.CreateSubscription{Name: s.Name, Owner: s.Owner, Conninfo: s.Conninfo,
			Publication: s.Publication, Enabled: s.Enabled, TwoPhase: s.TwoPhase})
	}
	for _, s := range dropped {
		out = append(out, &change.DropSubscription{Name: s.Name})
	}
	for _, a := range altered {
		ref := subscriptionRef(a.Target)
		if a.Source.TwoPhase != a.Target.TwoPhase {
			out = append(out, &change.DropSubscription{Name: a.Source.Name})
			out = append(out, &change.CreateSubscription{Name: a.Target.Name, Owner: a.Target.Owner, Conninfo: a.Target.Conninfo,
				Publication: a.Target.Publication, Enabled: a.Target.Enabled, TwoPhase: a.Target.TwoPhase})
		} else {
			alter := &change.AlterSubscription{Name: a.Target.Name}
			var dirty bool
			if a.Source.Conninfo != a.Target.Conninfo {
				c := a.Target.Conninfo
				alter.NewConninfo = &c
				dirty = true
			}
			if !reflect.DeepEqual(a.Source.Publication, a.Target.Publication) {
				alter.Publication = a.Target.Publication
				dirty = true
			}
			if a.Source.Enabled != a.Target.Enabled {
				e := a.Target.Enabled
				alter.Enabled = &e
				dirty = true
			}
			if dirty {
				out = append(out, alter)
			}
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
	}
	return out
}

func subscriptionRef(s *catalog.Subscription) change.ObjectRef {
	return objectRef(objtype.KindSubscription, s.StableID(), ident.Quote(s.Name))
}

// diffEventTriggers handles pkg/catalog.EventTrigger. Enabled is the only
// alterable facet; Event, Tags and Function have no Alter path and force
// a drop+create replace.
func diffEventTriggers(dctx *Context, source, target *catalog.Catalog) change.Changes {
	created, dropped, altered := diffObjects(source.EventTriggers, target.EventTriggers)

	var out change.Changes
	for _, e := range created {
		out = append(out, &change.CreateEventTrigger{Name: e.Name, Owner: e.Owner, Event: e.Event, Tags: e.Tags, Function: e.Function})
		if e.Enabled != "O" && e.Enabled != "" {
			out = append(out, &change.AlterEventTrigger{Name: e.Name, Enabled: e.Enabled})
		}
	}
	for _, e := range dropped {
		out = append(out, &change.DropEventTrigger{Name: e.Name})
	}
	for _, a := range altered {
		ref := eventTriggerRef(a.Target)
		if a.Source.Event != a.Target.Event || !reflect.DeepEqual(a.Source.Tags, a.Target.Tags) || a.Source.Function != a.Target.Function {
			out = append(out, &change.DropEventTrigger{Name: a.Source.Name})
			out = append(out, &change.CreateEventTrigger{Name: a.Target.Name, Owner: a.Target.Owner, Event: a.Target.Event,
				Tags: a.Target.Tags, Function: a.Target.Function})
			if a.Target.Enabled != "O" && a.Target.Enabled != "" {
				out = append(out, &change.AlterEventTrigger{Name: a.Target.Name, Enabled: a.Target.Enabled})
			}
		} else if a.Source.Enabled != a.Target.Enabled {
			out = append(out, &change.AlterEventTrigger{Name: a.Target.Name, Enabled: a.Target.Enabled})
		}
		out = append(out, ownerChange(ref, a.Source.Owner, a.Target.Owner)...)
	}
	return out
}

func eventTriggerRef(e *catalog.EventTrigger) change.ObjectRef {
	return objectRef(objtype.KindEventTrigger, e.StableID(), ident.Quote(e.Name))
}
