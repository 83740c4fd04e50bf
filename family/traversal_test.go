package family

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineageFixture:
//
//	p1 (m, head) -> p2 (m), p3 (f)
//	p2 -> p4 (m) -> p6 (f)
//	p3 -> p5 (m)
func lineageFixture() People {
	return People{
		"p1": {ID: "p1", Name: "Grandfather", Gender: Male, FamilyID: "p1", ChildrenIDs: []ID{"p2", "p3"}},
		"p2": {ID: "p2", Name: "Son", Gender: Male, FatherID: "p1", FamilyID: "p1", ChildrenIDs: []ID{"p4"}},
		"p3": {ID: "p3", Name: "Daughter", Gender: Female, FatherID: "p1", FamilyID: "p1", ChildrenIDs: []ID{"p5"}},
		"p4": {ID: "p4", Name: "Grandson", Gender: Male, FatherID: "p2", FamilyID: "p1", ChildrenIDs: []ID{"p6"}},
		"p5": {ID: "p5", Name: "Daughter's son", Gender: Male, MotherID: "p3", FamilyID: "p9"},
		"p6": {ID: "p6", Name: "Great-granddaughter", Gender: Female, FatherID: "p4", FamilyID: "p1"},
	}
}

func TestDescendantCount(t *testing.T) {
	s := NewStore(lineageFixture())

	assert.Equal(t, 6, s.DescendantCount("p1"))
	assert.Equal(t, 3, s.DescendantCount("p2"))
	assert.Equal(t, 1, s.DescendantCount("p6"))
	assert.Equal(t, 0, s.DescendantCount("missing"))
}

func TestDescendantCountIsCycleSafe(t *testing.T) {
	s := NewStore(People{
		"p1": {ID: "p1", Name: "A", Gender: Male, ChildrenIDs: []ID{"p2"}},
		"p2": {ID: "p2", Name: "B", Gender: Male, ChildrenIDs: []ID{"p1", "p2", "p3"}},
	})
	assert.Equal(t, 2, s.DescendantCount("p1"))
}

func TestPathToTarget(t *testing.T) {
	s := NewStore(lineageFixture())

	tests := []struct {
		name         string
		root, target ID
		want         []ID
	}{
		{name: "self", root: "p1", target: "p1", want: []ID{"p1"}},
		{name: "deep male line", root: "p1", target: "p6", want: []ID{"p1", "p2", "p4", "p6"}},
		{name: "through daughter", root: "p1", target: "p5", want: []ID{"p1", "p3", "p5"}},
		{name: "unreachable upward", root: "p4", target: "p1", want: []ID{}},
		{name: "missing root", root: "zz", target: "p1", want: []ID{}},
		{name: "missing target", root: "p1", target: "zz", want: []ID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.PathToTarget(tt.root, tt.target)
			assert.Equal(t, tt.want, got)
			for i := 1; i < len(got); i++ {
				parent, _ := s.Get(got[i-1])
				assert.True(t, parent.HasChild(got[i]))
			}
		})
	}
}

func TestPathToTargetFirstPathInStoredOrder(t *testing.T) {
	s := NewStore(People{
		"p1": {ID: "p1", Name: "Root", Gender: Male, ChildrenIDs: []ID{"p3", "p2"}},
		"p2": {ID: "p2", Name: "Short", Gender: Male, ChildrenIDs: []ID{"p5"}},
		"p3": {ID: "p3", Name: "Long", Gender: Male, ChildrenIDs: []ID{"p4"}},
		"p4": {ID: "p4", Name: "Mid", Gender: Male, ChildrenIDs: []ID{"p5"}},
		"p5": {ID: "p5", Name: "Target", Gender: Male},
	})
	assert.Equal(t, []ID{"p1", "p3", "p4", "p5"}, s.PathToTarget("p1", "p5"))
}

func TestPathToTargetCycle(t *testing.T) {
	s := NewStore(People{
		"p1": {ID: "p1", Name: "A", Gender: Male, ChildrenIDs: []ID{"p2"}},
		"p2": {ID: "p2", Name: "B", Gender: Male, ChildrenIDs: []ID{"p1"}},
	})
	assert.Equal(t, []ID{}, s.PathToTarget("p1", "p3"))
	assert.Equal(t, []ID{"p2", "p1"}, s.PathToTarget("p2", "p1"))
}

func TestRootFamilies(t *testing.T) {
	people := lineageFixture()
	people["p7"] = &Person{ID: "p7", Name: "Small head", Gender: Male, FamilyID: "p7"}
	people["p8"] = &Person{ID: "p8", Name: "Other head", Gender: Male, FamilyID: "p8", ChildrenIDs: []ID{"p7"}}
	s := NewStore(people)

	heads := s.RootFamilies()
	require.Len(t, heads, 3)
	assert.Equal(t, ID("p1"), heads[0].Person.ID)
	assert.Equal(t, 6, heads[0].Descendants)
	assert.Equal(t, ID("p8"), heads[1].Person.ID)
	assert.Equal(t, ID("p7"), heads[2].Person.ID)
}

func TestMakeFamilyRootUsesMapKeyAsID(t *testing.T) {
	e := newTestEngine(People{
		"p1": {ID: "p9", Name: "Keyed", Gender: Male},
	})
	p, _ := e.Store().Get("p1")
	assert.Equal(t, ID("p1"), p.ID)

	require.NoError(t, e.MakeFamilyRoot("p1"))
	heads := e.Store().RootFamilies()
	require.Len(t, heads, 1)
	assert.Equal(t, ID("p1"), heads[0].Person.ID)
}

func TestMakeFamilyRootFollowsMaleLine(t *testing.T) {
	e := newTestEngine(lineageFixture())
	e.store.people["p7"] = &Person{ID: "p7", Name: "Child of p6", Gender: Male, MotherID: "p6", FamilyID: "p1", ChildrenIDs: []ID{}}
	e.store.people["p6"].ChildrenIDs = []ID{"p7"}

	require.NoError(t, e.MakeFamilyRoot("p2"))

	s := e.Store()
	familyOf := func(id ID) ID { p, _ := s.Get(id); return p.FamilyID }
	assert.Equal(t, ID("p2"), familyOf("p2"))
	assert.Equal(t, ID("p2"), familyOf("p4"))
	// daughters take the new family but their children are not visited
	assert.Equal(t, ID("p2"), familyOf("p6"))
	assert.Equal(t, ID("p1"), familyOf("p7"))
	assert.Equal(t, ID("p1"), familyOf("p1"))
	assert.Equal(t, ID("p1"), familyOf("p3"))
}

func TestMakeFamilyRootFromWomanVisitsHerChildren(t *testing.T) {
	e := newTestEngine(lineageFixture())

	require.NoError(t, e.MakeFamilyRoot("p3"))

	p3, _ := e.Store().Get("p3")
	p5, _ := e.Store().Get("p5")
	assert.Equal(t, ID("p3"), p3.FamilyID)
	assert.Equal(t, ID("p3"), p5.FamilyID)
}

func TestRemoveFamilyRoot(t *testing.T) {
	e := newTestEngine(lineageFixture())
	require.NoError(t, e.MakeFamilyRoot("p2"))

	require.NoError(t, e.RemoveFamilyRoot("p2"))
	for _, id := range []ID{"p2", "p4", "p6"} {
		p, _ := e.Store().Get(id)
		assert.Equalf(t, ID("p1"), p.FamilyID, "family of %s", id)
	}

	require.NoError(t, e.RemoveFamilyRoot("p1"))
	p1, _ := e.Store().Get("p1")
	p2, _ := e.Store().Get("p2")
	assert.Empty(t, p1.FamilyID)
	assert.Empty(t, p2.FamilyID)

	require.ErrorIs(t, e.RemoveFamilyRoot("nope"), ErrNotFound)
	require.ErrorIs(t, e.MakeFamilyRoot("nope"), ErrNotFound)
}

func TestRemoveFamilyRootFallsBackToMother(t *testing.T) {
	e := newTestEngine(lineageFixture())
	require.NoError(t, e.MakeFamilyRoot("p5"))

	require.NoError(t, e.RemoveFamilyRoot("p5"))
	p5, _ := e.Store().Get("p5")
	assert.Equal(t, ID("p1"), p5.FamilyID)
}

func TestPropagationIsCycleSafe(t *testing.T) {
	e := newTestEngine(People{
		"p1": {ID: "p1", Name: "A", Gender: Male, ChildrenIDs: []ID{"p2"}},
		"p2": {ID: "p2", Name: "B", Gender: Male, ChildrenIDs: []ID{"p1"}},
	})
	require.NoError(t, e.MakeFamilyRoot("p1"))
	p1, _ := e.Store().Get("p1")
	p2, _ := e.Store().Get("p2")
	assert.Equal(t, ID("p1"), p1.FamilyID)
	assert.Equal(t, ID("p1"), p2.FamilyID)
}

func TestHighestAncestorAndTreeRoot(t *testing.T) {
	s := NewStore(lineageFixture())

	top, ok := s.HighestAncestor("p6")
	require.True(t, ok)
	assert.Equal(t, ID("p1"), top)

	top, _ = s.HighestAncestor("p5")
	assert.Equal(t, ID("p1"), top)

	root, ok := s.TreeRootFor("p4")
	require.True(t, ok)
	assert.Equal(t, ID("p1"), root)

	// p5 points at a family head that does not exist
	root, _ = s.TreeRootFor("p5")
	assert.Equal(t, ID("p5"), root)

	_, ok = s.HighestAncestor("missing")
	assert.False(t, ok)
}

func TestSearchAndLabel(t *testing.T) {
	s := NewStore(lineageFixture())

	results := s.Search("DAUGHTER", 0)
	require.Len(t, results, 3)
	assert.Equal(t, ID("p3"), results[0].ID)

	assert.Len(t, s.Search("daughter", 1), 1)
	assert.Empty(t, s.Search("  ", 5))

	label, err := s.FamilyLabel("p6")
	require.NoError(t, err)
	assert.Equal(t, "daughter of Grandson, of the family of Grandfather", label.String())

	label, err = s.FamilyLabel("p5")
	require.NoError(t, err)
	assert.Equal(t, "no family", label.String())

	_, err = s.FamilyLabel("missing")
	require.ErrorIs(t, err, ErrNotFound)
}
