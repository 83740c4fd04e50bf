package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(people People) *Engine {
	if people == nil {
		people = People{}
	}
	return NewEngine(NewStore(people), SequentialAllocator{Prefix: "p"})
}

// requireSymmetric checks that every listed child points back at the listing
// parent and every parent reference is listed by that parent.
func requireSymmetric(t *testing.T, s *Store) {
	t.Helper()
	for _, id := range s.IDs() {
		p, _ := s.Get(id)
		for _, childID := range p.ChildrenIDs {
			child, ok := s.Get(childID)
			require.Truef(t, ok, "%s lists missing child %s", id, childID)
			switch p.Gender {
			case Male:
				require.Equalf(t, id, child.FatherID, "%s lists %s whose father is %q", id, childID, child.FatherID)
			case Female:
				require.Equalf(t, id, child.MotherID, "%s lists %s whose mother is %q", id, childID, child.MotherID)
			}
		}
		if father, ok := s.Get(p.FatherID); ok {
			require.Truef(t, father.HasChild(id), "father %s does not list %s", father.ID, id)
		}
		if mother, ok := s.Get(p.MotherID); ok {
			require.Truef(t, mother.HasChild(id), "mother %s does not list %s", mother.ID, id)
		}
	}
}

// coupleWithChild builds {p1 male root, p2 female spouse(p1), p3 child of p1&p2}.
func coupleWithChild(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(nil)
	p1, err := e.AddRoot(Fields{Name: "Adam", Gender: Male})
	require.NoError(t, err)
	p2, err := e.AddSpouse(p1, Fields{Name: "Hawa"})
	require.NoError(t, err)
	p3, err := e.AddChild(p1, Fields{Name: "Seth", Gender: Male})
	require.NoError(t, err)
	require.Equal(t, []ID{"p1", "p2", "p3"}, []ID{p1, p2, p3})
	return e
}

func TestAddRoot(t *testing.T) {
	e := newTestEngine(nil)

	id, err := e.AddRoot(Fields{Name: "  Noor  ", Gender: Female, Dates: "1900-1970"})
	require.NoError(t, err)
	assert.Equal(t, ID("p1"), id)

	p, ok := e.Store().Get(id)
	require.True(t, ok)
	assert.Equal(t, "Noor", p.Name)
	assert.Equal(t, id, p.FamilyID)
	assert.True(t, p.IsFamilyRoot())
	assert.Empty(t, p.FatherID)
	assert.Empty(t, p.MotherID)
	assert.NotNil(t, p.ChildrenIDs)
	assert.Empty(t, p.ChildrenIDs)
}

func TestAddRootRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
	}{
		{name: "missing name", fields: Fields{Gender: Male}},
		{name: "blank name", fields: Fields{Name: "   ", Gender: Male}},
		{name: "missing gender", fields: Fields{Name: "X"}},
		{name: "unknown gender", fields: Fields{Name: "X", Gender: "other"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(nil)
			_, err := e.AddRoot(tt.fields)
			require.ErrorIs(t, err, ErrInvalidPerson)
			assert.Equal(t, 0, e.Store().Len())
		})
	}
}

func TestAddChildUsesSpouseAsOtherParent(t *testing.T) {
	e := coupleWithChild(t)
	s := e.Store()

	child, _ := s.Get("p3")
	assert.Equal(t, ID("p1"), child.FatherID)
	assert.Equal(t, ID("p2"), child.MotherID)
	assert.Equal(t, ID("p1"), child.FamilyID)

	father, _ := s.Get("p1")
	mother, _ := s.Get("p2")
	assert.Equal(t, []ID{"p3"}, father.ChildrenIDs)
	assert.Equal(t, []ID{"p3"}, mother.ChildrenIDs)
	requireSymmetric(t, s)
}

func TestAddChildFromMotherInheritsFatherFamily(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.AddRoot(Fields{Name: "Omar", Gender: Male})
	require.NoError(t, err)
	_, err = e.AddSpouse("p1", Fields{Name: "Layla"})
	require.NoError(t, err)

	id, err := e.AddChild("p2", Fields{Name: "Yusuf", Gender: Male})
	require.NoError(t, err)

	child, _ := e.Store().Get(id)
	assert.Equal(t, ID("p1"), child.FatherID)
	assert.Equal(t, ID("p2"), child.MotherID)
	assert.Equal(t, ID("p1"), child.FamilyID)
	requireSymmetric(t, e.Store())
}

func TestAddChildSingleMother(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.AddRoot(Fields{Name: "Mariam", Gender: Female})
	require.NoError(t, err)

	id, err := e.AddChild("p1", Fields{Name: "Isa", Gender: Male})
	require.NoError(t, err)

	child, _ := e.Store().Get(id)
	assert.Empty(t, child.FatherID)
	assert.Equal(t, ID("p1"), child.MotherID)
	assert.Equal(t, ID("p1"), child.FamilyID)
}

func TestAddChildNotFound(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.AddChild("p9", Fields{Name: "Ghost", Gender: Male})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, e.Store().Len())
}

func TestAddParentScenario(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.AddRoot(Fields{Name: "Mother", Gender: Female})
	require.NoError(t, err)
	_, err = e.AddChild("p1", Fields{Name: "Child", Gender: Male})
	require.NoError(t, err)

	fatherID, err := e.AddParent("p2", Fields{Name: "X", Gender: Male})
	require.NoError(t, err)

	father, _ := e.Store().Get(fatherID)
	assert.Equal(t, []ID{"p2"}, father.ChildrenIDs)
	assert.Equal(t, fatherID, father.FamilyID)
	child, _ := e.Store().Get("p2")
	assert.Equal(t, fatherID, child.FatherID)
	assert.Equal(t, ID("p1"), child.MotherID)
	requireSymmetric(t, e.Store())

	before := e.Store().Snapshot()
	_, err = e.AddParent("p2", Fields{Name: "Y", Gender: Male})
	require.ErrorIs(t, err, ErrAlreadyHasBothParents)
	assert.Equal(t, before, e.Store().Snapshot())
}

func TestAddParentSlotTaken(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.AddRoot(Fields{Name: "Father", Gender: Male})
	require.NoError(t, err)
	_, err = e.AddChild("p1", Fields{Name: "Child", Gender: Female})
	require.NoError(t, err)

	_, err = e.AddParent("p2", Fields{Name: "Second father", Gender: Male})
	require.ErrorIs(t, err, ErrParentSlotTaken)
	assert.Equal(t, 2, e.Store().Len())

	motherID, err := e.AddParent("p2", Fields{Name: "Mother", Gender: Female})
	require.NoError(t, err)
	child, _ := e.Store().Get("p2")
	assert.Equal(t, motherID, child.MotherID)
}

func TestLinkParent(t *testing.T) {
	e := newTestEngine(nil)
	_, _ = e.AddRoot(Fields{Name: "Child", Gender: Male})
	_, _ = e.AddRoot(Fields{Name: "Father", Gender: Male})

	require.NoError(t, e.LinkParent("p1", "p2"))
	child, _ := e.Store().Get("p1")
	assert.Equal(t, ID("p2"), child.FatherID)
	requireSymmetric(t, e.Store())

	// linking again is a no-op
	require.NoError(t, e.LinkParent("p1", "p2"))
	father, _ := e.Store().Get("p2")
	assert.Equal(t, []ID{"p1"}, father.ChildrenIDs)

	require.ErrorIs(t, e.LinkParent("p2", "p1"), ErrCycle)
	require.ErrorIs(t, e.LinkParent("p1", "p1"), ErrSelfReference)
	require.ErrorIs(t, e.LinkParent("p1", "p7"), ErrNotFound)
}

func TestAddSpouse(t *testing.T) {
	e := newTestEngine(nil)
	_, _ = e.AddRoot(Fields{Name: "Husband", Gender: Male})
	_, _ = e.AddChild("p1", Fields{Name: "Kid", Gender: Female})

	spouseID, err := e.AddSpouse("p1", Fields{Name: "Wife"})
	require.NoError(t, err)

	s := e.Store()
	spouse, _ := s.Get(spouseID)
	husband, _ := s.Get("p1")
	kid, _ := s.Get("p2")
	assert.Equal(t, Female, spouse.Gender)
	assert.Equal(t, ID("p1"), spouse.SpouseID)
	assert.Equal(t, spouseID, husband.SpouseID)
	assert.Equal(t, []ID{"p2"}, spouse.ChildrenIDs)
	assert.Equal(t, spouseID, kid.MotherID)
	requireSymmetric(t, s)

	// the two child lists are independent copies
	spouse.ChildrenIDs[0] = "changed"
	assert.Equal(t, []ID{"p2"}, husband.ChildrenIDs)
}

func TestAddSpouseSkipsChildrenWithAnotherParent(t *testing.T) {
	e := newTestEngine(nil)
	_, _ = e.AddRoot(Fields{Name: "Father", Gender: Male})
	_, _ = e.AddRoot(Fields{Name: "First wife", Gender: Female})
	_, _ = e.AddChild("p1", Fields{Name: "Kid", Gender: Male})
	require.NoError(t, e.LinkParent("p3", "p2"))

	spouseID, err := e.AddSpouse("p1", Fields{Name: "Second wife", Gender: Female})
	require.NoError(t, err)

	spouse, _ := e.Store().Get(spouseID)
	assert.Empty(t, spouse.ChildrenIDs)
	kid, _ := e.Store().Get("p3")
	assert.Equal(t, ID("p2"), kid.MotherID)
	requireSymmetric(t, e.Store())
}

func TestAddSpouseAlreadyMarried(t *testing.T) {
	e := coupleWithChild(t)
	before := e.Store().Snapshot()

	_, err := e.AddSpouse("p1", Fields{Name: "Another", Gender: Female})
	require.ErrorIs(t, err, ErrAlreadyMarried)
	assert.Equal(t, before, e.Store().Snapshot())
}

func TestLinkAndUnlinkSpouse(t *testing.T) {
	e := newTestEngine(nil)
	_, _ = e.AddRoot(Fields{Name: "A", Gender: Male})
	_, _ = e.AddRoot(Fields{Name: "B", Gender: Female})
	_, _ = e.AddRoot(Fields{Name: "C", Gender: Female})

	require.NoError(t, e.LinkSpouse("p1", "p2"))
	require.NoError(t, e.LinkSpouse("p2", "p1"))
	require.ErrorIs(t, e.LinkSpouse("p1", "p3"), ErrAlreadyMarried)
	require.ErrorIs(t, e.LinkSpouse("p3", "p3"), ErrSelfReference)

	require.NoError(t, e.UnlinkSpouse("p2"))
	a, _ := e.Store().Get("p1")
	b, _ := e.Store().Get("p2")
	assert.Empty(t, a.SpouseID)
	assert.Empty(t, b.SpouseID)
}

func TestEditPreservesRelationships(t *testing.T) {
	e := coupleWithChild(t)

	err := e.Edit("p1", Fields{Name: "Adam Renamed", Gender: Male, Dates: "1-930", Info: "first"})
	require.NoError(t, err)

	p, _ := e.Store().Get("p1")
	assert.Equal(t, "Adam Renamed", p.Name)
	assert.Equal(t, "1-930", p.Dates)
	assert.Equal(t, "first", p.Info)
	assert.Equal(t, []ID{"p3"}, p.ChildrenIDs)
	assert.Equal(t, ID("p2"), p.SpouseID)
	assert.Equal(t, ID("p1"), p.FamilyID)

	require.ErrorIs(t, e.Edit("p9", Fields{Name: "X", Gender: Male}), ErrNotFound)
}

func TestEditGenderMovesParentSlot(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.AddRoot(Fields{Name: "Sam", Gender: Male})
	require.NoError(t, err)
	_, err = e.AddChild("p1", Fields{Name: "Kid", Gender: Female})
	require.NoError(t, err)

	require.NoError(t, e.Edit("p1", Fields{Name: "Sam", Gender: Female}))
	kid, _ := e.Store().Get("p2")
	assert.Empty(t, kid.FatherID)
	assert.Equal(t, ID("p1"), kid.MotherID)
	requireSymmetric(t, e.Store())

	// with both slots taken the change is refused and nothing moves
	couple := coupleWithChild(t)
	require.ErrorIs(t, couple.Edit("p1", Fields{Name: "Adam", Gender: Female}), ErrParentSlotTaken)
	p1, _ := couple.Store().Get("p1")
	assert.Equal(t, Male, p1.Gender)
	requireSymmetric(t, couple.Store())
}

func TestDeleteScenario(t *testing.T) {
	e := coupleWithChild(t)

	assert.True(t, e.Delete("p1"))

	s := e.Store()
	assert.False(t, s.Has("p1"))
	mother, _ := s.Get("p2")
	child, _ := s.Get("p3")
	assert.Empty(t, mother.SpouseID)
	assert.Empty(t, child.FatherID)
	assert.Equal(t, ID("p2"), child.MotherID)
	assert.Contains(t, mother.ChildrenIDs, ID("p3"))
	requireSymmetric(t, s)
}

func TestDeleteIsIdempotent(t *testing.T) {
	once := coupleWithChild(t)
	twice := coupleWithChild(t)

	once.Delete("p3")
	twice.Delete("p3")
	assert.False(t, twice.Delete("p3"))

	assert.Equal(t, once.Store().Snapshot(), twice.Store().Snapshot())
	parent, _ := once.Store().Get("p1")
	assert.Empty(t, parent.ChildrenIDs)
}

func TestDeleteLeavesOneSidedSpouseAlone(t *testing.T) {
	e := newTestEngine(People{
		"p1": {ID: "p1", Name: "A", Gender: Male, SpouseID: "p2"},
		"p2": {ID: "p2", Name: "B", Gender: Female, SpouseID: "p3"},
		"p3": {ID: "p3", Name: "C", Gender: Male, SpouseID: "p2"},
	})
	e.Delete("p1")
	b, _ := e.Store().Get("p2")
	assert.Equal(t, ID("p3"), b.SpouseID)
}

func TestDeleteDetachesOneSidedListings(t *testing.T) {
	e := newTestEngine(People{
		"p1": {ID: "p1", Name: "A", Gender: Male, ChildrenIDs: []ID{"p2"}},
		"p2": {ID: "p2", Name: "B", Gender: Female},
		"p3": {ID: "p3", Name: "C", Gender: Male, FatherID: "p2"},
		"p4": {ID: "p4", Name: "D", Gender: Male, SpouseID: "p2"},
	})

	require.True(t, e.Delete("p2"))

	s := e.Store()
	a, _ := s.Get("p1")
	c, _ := s.Get("p3")
	d, _ := s.Get("p4")
	assert.Empty(t, a.ChildrenIDs)
	assert.Empty(t, c.FatherID)
	assert.Empty(t, d.SpouseID)
}

func TestAllocatorCollisionRetries(t *testing.T) {
	calls := 0
	alloc := allocatorFunc(func(s *Store, _ Fields) (ID, error) {
		calls++
		if calls < 3 {
			return "p1", nil
		}
		return "p2", nil
	})
	e := NewEngine(NewStore(People{"p1": {ID: "p1", Name: "A", Gender: Male}}), alloc)

	id, err := e.AddRoot(Fields{Name: "B", Gender: Female})
	require.NoError(t, err)
	assert.Equal(t, ID("p2"), id)
	assert.Equal(t, 3, calls)
}

func TestAllocatorExhausted(t *testing.T) {
	alloc := allocatorFunc(func(s *Store, _ Fields) (ID, error) { return "p1", nil })
	e := NewEngine(NewStore(People{"p1": {ID: "p1", Name: "A", Gender: Male}}), alloc)

	_, err := e.AddRoot(Fields{Name: "B", Gender: Female})
	require.ErrorIs(t, err, ErrIDExhausted)
	assert.Equal(t, 1, e.Store().Len())
}

type allocatorFunc func(s *Store, hint Fields) (ID, error)

func (f allocatorFunc) Next(s *Store, hint Fields) (ID, error) { return f(s, hint) }
