// Package merge combines two independently authored family trees into one.
//
// The pipeline is Renumber -> Union -> Repair -> Verify. Every stage returns new
// data and leaves its input untouched, so a run can be resumed from any stage
// output that was persisted.
package merge

import (
	"fmt"

	"github.com/camden-git/familytreebackend/family"
	"github.com/sirupsen/logrus"
)

const idPrefix = "p"

// Result is the outcome of a full merge run.
type Result struct {
	People     family.People
	IDMap      map[family.ID]family.ID // incoming id -> id in People
	Actions    []Action
	Violations []Violation
}

// Reconciler runs the merge pipeline and logs what it changes.
type Reconciler struct {
	Logger *logrus.Logger
}

func NewReconciler(logger *logrus.Logger) *Reconciler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Reconciler{Logger: logger}
}

// Run merges incoming into base. It never fails: unresolved inconsistencies are
// returned as Violations for manual review.
func (r *Reconciler) Run(base, incoming family.People) Result {
	renumbered, idMap, unresolved := renumber(base, incoming)
	r.Logger.WithFields(logrus.Fields{
		"base":       len(base),
		"incoming":   len(incoming),
		"unresolved": len(unresolved),
	}).Info("renumbered incoming tree")

	unioned := Union(base, renumbered)
	r.Logger.WithField("people", len(unioned)).Info("merged trees")

	repaired, actions := Repair(unioned)
	for _, a := range actions {
		r.Logger.WithFields(logrus.Fields{
			"step":      a.Step,
			"person_id": a.PersonID,
			"child_id":  a.ChildID,
		}).Debug(a.Detail)
	}
	r.Logger.WithField("actions", len(actions)).Info("repaired parent/child links")

	violations := append(unresolved, Verify(repaired)...)
	for _, v := range violations {
		r.Logger.WithFields(logrus.Fields{
			"kind":      v.Kind,
			"parent_id": v.ParentID,
			"child_id":  v.ChildID,
			"person_id": v.PersonID,
		}).Warn(v.Detail)
	}
	if len(violations) == 0 {
		r.Logger.Info("all parent/child relationships are consistent")
	} else {
		r.Logger.WithField("violations", len(violations)).Warn("merge finished with inconsistencies, manual review needed")
	}

	return Result{People: repaired, IDMap: idMap, Actions: actions, Violations: violations}
}

// Renumber moves every id of incoming into a namespace that starts after the
// largest numeric suffix in base. Incoming ids are assigned in LessID order so the
// mapping is reproducible. References to ids outside incoming are dropped; Run
// reports each of them as an UnresolvedReference.
func Renumber(base, incoming family.People) (family.People, map[family.ID]family.ID) {
	out, idMap, _ := renumber(base, incoming)
	return out, idMap
}

func renumber(base, incoming family.People) (family.People, map[family.ID]family.ID, []Violation) {
	next := family.MaxNumericSuffix(base) + 1

	oldIDs := make([]family.ID, 0, len(incoming))
	for id, p := range incoming {
		if p != nil {
			oldIDs = append(oldIDs, id)
		}
	}
	family.SortIDs(oldIDs)

	idMap := make(map[family.ID]family.ID, len(oldIDs))
	for _, old := range oldIDs {
		idMap[old] = family.ID(fmt.Sprintf("%s%d", idPrefix, next))
		next++
	}

	var unresolved []Violation
	out := make(family.People, len(oldIDs))
	for _, old := range oldIDs {
		p := incoming[old].Clone()
		p.ID = idMap[old]

		translate := func(field string, id family.ID) family.ID {
			if id == "" {
				return ""
			}
			if mapped, ok := idMap[id]; ok {
				return mapped
			}
			unresolved = append(unresolved, Violation{
				Kind:      UnresolvedReference,
				PersonID:  p.ID,
				Field:     field,
				Reference: id,
				Detail:    fmt.Sprintf("incoming %s (now %s) %s references %s, which is not in the incoming tree; dropped", old, p.ID, field, id),
			})
			return ""
		}
		translateAll := func(field string, ids []family.ID) []family.ID {
			if ids == nil {
				return nil
			}
			kept := make([]family.ID, 0, len(ids))
			for _, id := range ids {
				if mapped := translate(field, id); mapped != "" {
					kept = append(kept, mapped)
				}
			}
			return kept
		}

		p.FatherID = translate("fatherId", p.FatherID)
		p.MotherID = translate("motherId", p.MotherID)
		p.SpouseID = translate("spouseId", p.SpouseID)
		p.SpouseIDs = translateAll("spouseIds", p.SpouseIDs)
		p.ChildrenIDs = translateAll("childrenIds", p.ChildrenIDs)
		if p.ChildrenIDs == nil {
			p.ChildrenIDs = []family.ID{}
		}
		p.FamilyID = translate("familyId", p.FamilyID)
		out[p.ID] = p
	}
	return out, idMap, unresolved
}

// Union combines two stores whose ids are already disjoint.
func Union(a, b family.People) family.People {
	out := a.Clone()
	for id, p := range b.Clone() {
		out[id] = p
	}
	out.Normalize()
	return out
}
