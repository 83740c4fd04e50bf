package family

// Store is the in-memory relationship graph, the single source of truth for a tree.
// It is not safe for concurrent use; callers serialize access.
type Store struct {
	people People
}

// NewStore wraps a deep copy of people.
func NewStore(people People) *Store {
	s := &Store{people: people.Clone()}
	s.people.Normalize()
	return s
}

// Get returns the live record for id. Callers outside the engine must treat it as read-only.
func (s *Store) Get(id ID) (*Person, bool) {
	if id == "" {
		return nil, false
	}
	p, ok := s.people[id]
	return p, ok
}

func (s *Store) Has(id ID) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *Store) Len() int {
	return len(s.people)
}

// IDs lists every id in LessID order.
func (s *Store) IDs() []ID {
	ids := make([]ID, 0, len(s.people))
	for id := range s.people {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// Snapshot returns a deep copy of the whole graph, safe to hand to persistence.
func (s *Store) Snapshot() People {
	return s.people.Clone()
}

// Replace swaps the store content for a deep copy of people.
func (s *Store) Replace(people People) {
	s.people = people.Clone()
	s.people.Normalize()
}

func (s *Store) put(p *Person) {
	s.people[p.ID] = p
}

func (s *Store) remove(id ID) {
	delete(s.people, id)
}
