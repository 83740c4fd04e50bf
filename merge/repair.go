package merge

import (
	"fmt"

	"github.com/camden-git/familytreebackend/family"
)

// Repair steps, in the order they run.
const (
	StepBackfillParent    = "backfill-parent"
	StepChildDisagreement = "child-disagreement"
	StepEnsureListed      = "ensure-listed"
	StepDropConflict      = "drop-conflicting-parent"
	StepSortChildren      = "sort-children"
)

// Action records one change made by Repair.
type Action struct {
	Step     string
	PersonID family.ID
	ChildID  family.ID
	Detail   string
}

type repairer struct {
	people  family.People
	ids     []family.ID
	actions []Action
}

// Repair restores parent/child symmetry in a unioned store. It returns a new map
// and the list of actions it took.
func Repair(people family.People) (family.People, []Action) {
	r := &repairer{people: people.Clone()}
	r.people.Normalize()
	r.ids = make([]family.ID, 0, len(r.people))
	for id := range r.people {
		r.ids = append(r.ids, id)
	}
	family.SortIDs(r.ids)

	r.backfillParents()
	r.resolveDisagreements()
	r.ensureListed()
	r.dropConflictingParents()
	r.sortChildren()
	return r.people, r.actions
}

func (r *repairer) record(step string, personID, childID family.ID, format string, args ...any) {
	r.actions = append(r.actions, Action{
		Step:     step,
		PersonID: personID,
		ChildID:  childID,
		Detail:   fmt.Sprintf(format, args...),
	})
}

func slotFor(child *family.Person, g family.Gender) *family.ID {
	switch g {
	case family.Male:
		return &child.FatherID
	case family.Female:
		return &child.MotherID
	default:
		return nil
	}
}

// backfillParents fills an empty father/mother field on a child from any parent
// that lists it.
func (r *repairer) backfillParents() {
	for _, pid := range r.ids {
		parent := r.people[pid]
		for _, cid := range parent.ChildrenIDs {
			child, ok := r.people[cid]
			if !ok {
				continue
			}
			slot := slotFor(child, parent.Gender)
			if slot == nil || *slot != "" {
				continue
			}
			*slot = pid
			r.record(StepBackfillParent, pid, cid, "set %s parent of %s to %s", parent.Gender, cid, pid)
		}
	}
}

// resolveDisagreements handles a child listed by a parent it does not point back
// at. The child's own field wins when it references an existing person; the
// listing is then dropped by the later steps. A dangling field is repointed at the
// listing parent.
func (r *repairer) resolveDisagreements() {
	for _, pid := range r.ids {
		parent := r.people[pid]
		for _, cid := range parent.ChildrenIDs {
			child, ok := r.people[cid]
			if !ok {
				continue
			}
			slot := slotFor(child, parent.Gender)
			if slot == nil || *slot == pid {
				continue
			}
			if _, exists := r.people[*slot]; exists {
				r.record(StepChildDisagreement, pid, cid, "%s lists %s but the child points at %s", pid, cid, *slot)
				continue
			}
			r.record(StepChildDisagreement, pid, cid, "repointed dangling %s parent %s of %s to %s", parent.Gender, *slot, cid, pid)
			*slot = pid
		}
	}
}

// ensureListed appends each child to the children of the father and mother it names.
func (r *repairer) ensureListed() {
	for _, cid := range r.ids {
		child := r.people[cid]
		for _, pid := range []family.ID{child.FatherID, child.MotherID} {
			if pid == "" {
				continue
			}
			parent, ok := r.people[pid]
			if !ok || parent.HasChild(cid) {
				continue
			}
			parent.ChildrenIDs = append(parent.ChildrenIDs, cid)
			r.record(StepEnsureListed, pid, cid, "added %s to children of %s", cid, pid)
		}
	}
}

// dropConflictingParents keeps, for each child listed by several men (or several
// women), only the listing that matches the child's own father (or mother) field.
func (r *repairer) dropConflictingParents() {
	listers := map[family.Gender]map[family.ID][]family.ID{
		family.Male:   {},
		family.Female: {},
	}
	for _, pid := range r.ids {
		parent := r.people[pid]
		byChild, ok := listers[parent.Gender]
		if !ok {
			continue
		}
		for _, cid := range parent.ChildrenIDs {
			byChild[cid] = append(byChild[cid], pid)
		}
	}

	for _, g := range []family.Gender{family.Male, family.Female} {
		byChild := listers[g]
		children := make([]family.ID, 0, len(byChild))
		for cid, pids := range byChild {
			if len(pids) > 1 {
				children = append(children, cid)
			}
		}
		family.SortIDs(children)

		for _, cid := range children {
			child, ok := r.people[cid]
			if !ok {
				continue
			}
			keep := *slotFor(child, g)
			for _, pid := range byChild[cid] {
				if pid == keep {
					continue
				}
				parent := r.people[pid]
				parent.ChildrenIDs = without(parent.ChildrenIDs, cid)
				r.record(StepDropConflict, pid, cid, "removed %s from children of %s, %s parent is %q", cid, pid, g, keep)
			}
		}
	}
}

func (r *repairer) sortChildren() {
	for _, pid := range r.ids {
		parent := r.people[pid]
		before := append([]family.ID(nil), parent.ChildrenIDs...)
		family.SortIDs(parent.ChildrenIDs)
		for i := range before {
			if before[i] != parent.ChildrenIDs[i] {
				r.record(StepSortChildren, pid, "", "sorted %d children of %s", len(before), pid)
				break
			}
		}
	}
}

func without(ids []family.ID, drop family.ID) []family.ID {
	out := make([]family.ID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
