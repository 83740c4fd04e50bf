package family

// MakeFamilyRoot declares personID the head of its own family group and moves its
// male-line descendants into it.
func (e *Engine) MakeFamilyRoot(personID ID) error {
	p, err := e.mustGet(personID)
	if err != nil {
		return err
	}
	p.FamilyID = personID
	e.propagateFamily(p)
	return nil
}

// RemoveFamilyRoot returns personID to the father's family group, else the mother's,
// else no group at all, and carries its male-line descendants along.
func (e *Engine) RemoveFamilyRoot(personID ID) error {
	p, err := e.mustGet(personID)
	if err != nil {
		return err
	}
	var familyID ID
	if father, ok := e.store.Get(p.FatherID); ok {
		familyID = father.FamilyID
	} else if mother, ok := e.store.Get(p.MotherID); ok {
		familyID = mother.FamilyID
	}
	p.FamilyID = familyID
	e.propagateFamily(p)
	return nil
}

// propagateFamily overwrites FamilyID on descendants of from, following the male
// line: every visited child takes the new family, but only sons have their own
// children visited. from's own children are always visited. Returns the number of
// records updated.
func (e *Engine) propagateFamily(from *Person) int {
	familyID := from.FamilyID
	visited := map[ID]bool{from.ID: true}
	stack := append([]ID(nil), from.ChildrenIDs...)
	updated := 0

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		child, ok := e.store.Get(id)
		if !ok {
			continue
		}
		child.FamilyID = familyID
		updated++
		if child.Gender == Male {
			stack = append(stack, child.ChildrenIDs...)
		}
	}
	return updated
}
