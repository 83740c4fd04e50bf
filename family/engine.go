package family

import "fmt"

const maxAllocAttempts = 8

// Engine applies mutations to a Store while keeping parent/child, spouse and
// family-group links consistent. Every operation validates before it writes, so a
// failed call leaves the store untouched.
type Engine struct {
	store *Store
	alloc Allocator
}

func NewEngine(store *Store, alloc Allocator) *Engine {
	if alloc == nil {
		alloc = SequentialAllocator{Prefix: "p"}
	}
	return &Engine{store: store, alloc: alloc}
}

func (e *Engine) Store() *Store {
	return e.store
}

func notFound(id ID) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

func (e *Engine) mustGet(id ID) (*Person, error) {
	p, ok := e.store.Get(id)
	if !ok {
		return nil, notFound(id)
	}
	return p, nil
}

// allocate asks the allocator for an id until it gets one not already in use.
func (e *Engine) allocate(hint Fields) (ID, error) {
	for i := 0; i < maxAllocAttempts; i++ {
		id, err := e.alloc.Next(e.store, hint)
		if err != nil {
			return "", err
		}
		if id != "" && !e.store.Has(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

// AddRoot creates a parentless person who heads a new family group.
func (e *Engine) AddRoot(f Fields) (ID, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	id, err := e.allocate(f)
	if err != nil {
		return "", err
	}
	p := f.newPerson(id)
	p.FamilyID = id
	e.store.put(p)
	return id, nil
}

// AddChild creates a child of parentID. The parent's current spouse, when present
// and of the other gender, becomes the second parent. The child joins the father's
// family group, or the mother's when there is no father.
func (e *Engine) AddChild(parentID ID, f Fields) (ID, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	parent, err := e.mustGet(parentID)
	if err != nil {
		return "", err
	}

	var father, mother *Person
	if parent.Gender == Male {
		father = parent
	} else {
		mother = parent
	}
	if spouse, ok := e.store.Get(parent.SpouseID); ok && spouse.Gender != parent.Gender {
		if father == nil {
			father = spouse
		} else {
			mother = spouse
		}
	}

	id, err := e.allocate(f)
	if err != nil {
		return "", err
	}
	child := f.newPerson(id)
	if father != nil {
		child.FatherID = father.ID
		child.FamilyID = father.FamilyID
		father.addChild(id)
	}
	if mother != nil {
		child.MotherID = mother.ID
		if father == nil {
			child.FamilyID = mother.FamilyID
		}
		mother.addChild(id)
	}
	e.store.put(child)
	return id, nil
}

// AddParent creates a father or mother (by f.Gender) for childID. The new parent
// heads its own family group.
func (e *Engine) AddParent(childID ID, f Fields) (ID, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	child, err := e.mustGet(childID)
	if err != nil {
		return "", err
	}
	slot, err := openParentSlot(child, f.Gender)
	if err != nil {
		return "", err
	}

	id, err := e.allocate(f)
	if err != nil {
		return "", err
	}
	parent := f.newPerson(id)
	parent.FamilyID = id
	parent.ChildrenIDs = []ID{childID}
	*slot = id
	e.store.put(parent)
	return id, nil
}

// LinkParent records an existing person as the father or mother of childID.
func (e *Engine) LinkParent(childID, parentID ID) error {
	if childID == parentID {
		return fmt.Errorf("%w: %q", ErrSelfReference, childID)
	}
	child, err := e.mustGet(childID)
	if err != nil {
		return err
	}
	parent, err := e.mustGet(parentID)
	if err != nil {
		return err
	}
	if child.FatherID == parentID || child.MotherID == parentID {
		parent.addChild(childID)
		return nil
	}
	if e.store.reachable(childID, parentID) {
		return fmt.Errorf("%w: %q is a descendant of %q", ErrCycle, parentID, childID)
	}
	slot, err := openParentSlot(child, parent.Gender)
	if err != nil {
		return err
	}
	*slot = parentID
	parent.addChild(childID)
	return nil
}

func openParentSlot(child *Person, g Gender) (*ID, error) {
	if child.FatherID != "" && child.MotherID != "" {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyHasBothParents, child.ID)
	}
	slot := child.parentSlot(g)
	if slot == nil {
		return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidPerson, g)
	}
	if *slot != "" {
		return nil, fmt.Errorf("%w: %q already has %s parent %q", ErrParentSlotTaken, child.ID, g, *slot)
	}
	return slot, nil
}

// AddSpouse creates a spouse for personID. When f.Gender is empty it defaults to
// the opposite of the person's gender. The spouse starts with its own copy of the
// person's children; each shared child whose matching parent slot is empty gets
// the spouse as that parent, and children already claimed by someone else are left out.
func (e *Engine) AddSpouse(personID ID, f Fields) (ID, error) {
	person, err := e.mustGet(personID)
	if err != nil {
		return "", err
	}
	if person.SpouseID != "" {
		return "", fmt.Errorf("%w: %q is married to %q", ErrAlreadyMarried, personID, person.SpouseID)
	}
	if f.Gender == "" {
		f.Gender = person.Gender.Opposite()
	}
	if err := f.Validate(); err != nil {
		return "", err
	}

	id, err := e.allocate(f)
	if err != nil {
		return "", err
	}
	spouse := f.newPerson(id)
	spouse.SpouseID = personID
	for _, childID := range person.ChildrenIDs {
		child, ok := e.store.Get(childID)
		if !ok {
			continue
		}
		slot := child.parentSlot(spouse.Gender)
		if slot == nil || *slot != "" {
			continue
		}
		*slot = id
		spouse.addChild(childID)
	}
	person.SpouseID = id
	e.store.put(spouse)
	return id, nil
}

// LinkSpouse marries two existing, unmarried people.
func (e *Engine) LinkSpouse(aID, bID ID) error {
	if aID == bID {
		return fmt.Errorf("%w: %q", ErrSelfReference, aID)
	}
	a, err := e.mustGet(aID)
	if err != nil {
		return err
	}
	b, err := e.mustGet(bID)
	if err != nil {
		return err
	}
	if a.SpouseID == bID && b.SpouseID == aID {
		return nil
	}
	for _, p := range []*Person{a, b} {
		if p.SpouseID != "" {
			return fmt.Errorf("%w: %q is married to %q", ErrAlreadyMarried, p.ID, p.SpouseID)
		}
	}
	a.SpouseID = bID
	b.SpouseID = aID
	return nil
}

// UnlinkSpouse clears personID's spouse link and, when it points back, the spouse's.
func (e *Engine) UnlinkSpouse(personID ID) error {
	p, err := e.mustGet(personID)
	if err != nil {
		return err
	}
	if spouse, ok := e.store.Get(p.SpouseID); ok && spouse.SpouseID == personID {
		spouse.SpouseID = ""
	}
	p.SpouseID = ""
	return nil
}

// Edit replaces the display fields of personID. Relationships and ChildrenIDs are
// untouched, except that a gender change moves the person from the father to the
// mother slot of each child (or back). The change is refused with
// ErrParentSlotTaken when a child already has someone in the target slot.
func (e *Engine) Edit(personID ID, f Fields) error {
	if err := f.Validate(); err != nil {
		return err
	}
	p, err := e.mustGet(personID)
	if err != nil {
		return err
	}
	updated := f.newPerson(personID)
	if updated.Gender != p.Gender {
		var moves []*Person
		for _, childID := range p.ChildrenIDs {
			child, ok := e.store.Get(childID)
			if !ok {
				continue
			}
			from, to := child.parentSlot(p.Gender), child.parentSlot(updated.Gender)
			if from == nil || *from != personID {
				continue
			}
			if *to != "" && *to != personID {
				return fmt.Errorf("%w: %q already has %s %q", ErrParentSlotTaken, childID, updated.Gender, *to)
			}
			moves = append(moves, child)
		}
		for _, child := range moves {
			*child.parentSlot(p.Gender) = ""
			*child.parentSlot(updated.Gender) = personID
		}
	}
	p.Name = updated.Name
	p.Gender = updated.Gender
	p.Dates = updated.Dates
	p.Info = updated.Info
	return nil
}
