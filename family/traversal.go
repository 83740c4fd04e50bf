package family

import "sort"

// DescendantCount counts id plus every person reachable through ChildrenIDs, each
// at most once. Unknown ids count 0.
func (s *Store) DescendantCount(id ID) int {
	if !s.Has(id) {
		return 0
	}
	visited := map[ID]bool{}
	stack := []ID{id}
	count := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		p, ok := s.Get(cur)
		if !ok {
			continue
		}
		count++
		stack = append(stack, p.ChildrenIDs...)
	}
	return count
}

// PathToTarget returns the ids from rootID down to targetID, inclusive, following
// ChildrenIDs depth-first in stored order. The first path found wins. Nodes are
// never revisited, so cyclic data terminates. Returns an empty slice when there
// is no path.
func (s *Store) PathToTarget(rootID, targetID ID) []ID {
	if !s.Has(rootID) {
		return []ID{}
	}
	if rootID == targetID {
		return []ID{rootID}
	}

	type frame struct {
		id   ID
		next int
	}
	visited := map[ID]bool{rootID: true}
	stack := []frame{{id: rootID}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		p, ok := s.Get(top.id)
		if !ok || top.next >= len(p.ChildrenIDs) {
			stack = stack[:len(stack)-1]
			continue
		}
		childID := p.ChildrenIDs[top.next]
		top.next++
		if visited[childID] {
			continue
		}
		visited[childID] = true

		if childID == targetID {
			path := make([]ID, 0, len(stack)+1)
			for _, f := range stack {
				path = append(path, f.id)
			}
			return append(path, childID)
		}
		stack = append(stack, frame{id: childID})
	}
	return []ID{}
}

// reachable reports whether toID is fromID or one of its descendants.
func (s *Store) reachable(fromID, toID ID) bool {
	return len(s.PathToTarget(fromID, toID)) > 0
}

// FamilyHead pairs a family-group head with its descendant count.
type FamilyHead struct {
	Person      *Person `json:"person"`
	Descendants int     `json:"descendants"`
}

// RootFamilies lists every family-group head (id == familyId), largest
// descendant count first, ties in id order. Persons are copies.
func (s *Store) RootFamilies() []FamilyHead {
	var heads []FamilyHead
	for _, id := range s.IDs() {
		p := s.people[id]
		if !p.IsFamilyRoot() {
			continue
		}
		heads = append(heads, FamilyHead{Person: p.Clone(), Descendants: s.DescendantCount(id)})
	}
	sort.SliceStable(heads, func(i, j int) bool {
		return heads[i].Descendants > heads[j].Descendants
	})
	return heads
}

// HighestAncestor climbs from id through the father (or the mother when there is
// no father on record) until no known parent remains.
func (s *Store) HighestAncestor(id ID) (ID, bool) {
	if !s.Has(id) {
		return "", false
	}
	visited := map[ID]bool{id: true}
	cur := id
	for {
		p := s.people[cur]
		next := ID("")
		if s.Has(p.FatherID) {
			next = p.FatherID
		} else if s.Has(p.MotherID) {
			next = p.MotherID
		}
		if next == "" || visited[next] {
			return cur, true
		}
		visited[next] = true
		cur = next
	}
}

// TreeRootFor picks the root to render when navigating to id: the head of its
// family group when that head exists, otherwise id itself.
func (s *Store) TreeRootFor(id ID) (ID, bool) {
	p, ok := s.Get(id)
	if !ok {
		return "", false
	}
	if s.Has(p.FamilyID) {
		return p.FamilyID, true
	}
	return id, true
}
