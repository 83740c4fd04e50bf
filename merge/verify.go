package merge

import (
	"fmt"

	"github.com/camden-git/familytreebackend/family"
)

type ViolationKind string

const (
	MissingChild      ViolationKind = "missing_child"
	FatherMismatch    ViolationKind = "father_mismatch"
	MotherMismatch    ViolationKind = "mother_mismatch"
	NotListedByFather ViolationKind = "not_listed_by_father"
	NotListedByMother ViolationKind = "not_listed_by_mother"
	DanglingParent    ViolationKind = "dangling_parent"

	// UnresolvedReference is an incoming reference to an id missing from the
	// incoming tree. The reference is dropped instead of landing on a base person.
	UnresolvedReference ViolationKind = "unresolved_reference"
)

// Violation is one inconsistency left for manual review. Parent/child kinds set
// ParentID and ChildID; UnresolvedReference sets PersonID, Field and Reference.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	ParentID  family.ID     `json:"parentId,omitempty"`
	ChildID   family.ID     `json:"childId,omitempty"`
	PersonID  family.ID     `json:"personId,omitempty"`
	Field     string        `json:"field,omitempty"`
	Reference family.ID     `json:"reference,omitempty"`
	Detail    string        `json:"detail"`
}

// Verify walks every parent/child pair and reports each asymmetry. It does not
// modify people.
func Verify(people family.People) []Violation {
	ids := make([]family.ID, 0, len(people))
	for id, p := range people {
		if p != nil {
			ids = append(ids, id)
		}
	}
	family.SortIDs(ids)

	var out []Violation
	add := func(kind ViolationKind, parent, child family.ID, format string, args ...any) {
		out = append(out, Violation{Kind: kind, ParentID: parent, ChildID: child, Detail: fmt.Sprintf(format, args...)})
	}

	for _, pid := range ids {
		parent := people[pid]
		for _, cid := range parent.ChildrenIDs {
			child, ok := people[cid]
			if !ok || child == nil {
				add(MissingChild, pid, cid, "%s lists missing child %s", pid, cid)
				continue
			}
			switch parent.Gender {
			case family.Male:
				if child.FatherID != pid {
					add(FatherMismatch, pid, cid, "%s lists %s but its father is %q", pid, cid, child.FatherID)
				}
			case family.Female:
				if child.MotherID != pid {
					add(MotherMismatch, pid, cid, "%s lists %s but its mother is %q", pid, cid, child.MotherID)
				}
			}
		}
	}

	for _, cid := range ids {
		child := people[cid]
		check := func(pid family.ID, kind ViolationKind, role string) {
			if pid == "" {
				return
			}
			parent, ok := people[pid]
			if !ok || parent == nil {
				add(DanglingParent, pid, cid, "%s of %s does not exist: %s", role, cid, pid)
				return
			}
			if !parent.HasChild(cid) {
				add(kind, pid, cid, "%s %s does not list %s", role, pid, cid)
			}
		}
		check(child.FatherID, NotListedByFather, "father")
		check(child.MotherID, NotListedByMother, "mother")
	}
	return out
}
