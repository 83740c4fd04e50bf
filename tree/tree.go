// Package tree turns the flat person store into the nested structure the
// client renders.
package tree

import "github.com/camden-git/familytreebackend/family"

// Node is a person with the subset of its descendants that is currently visible.
type Node struct {
	family.Person
	Spouse      *family.Person `json:"spouse,omitempty"`
	Expanded    bool           `json:"expanded"`
	HasChildren bool           `json:"hasChildren"`
	Children    []*Node        `json:"children,omitempty"`
}

// Expansion is the set of ids whose children are shown.
type Expansion map[family.ID]bool

func NewExpansion(ids ...family.ID) Expansion {
	e := make(Expansion, len(ids))
	for _, id := range ids {
		if id != "" {
			e[id] = true
		}
	}
	return e
}

type builder struct {
	store    *family.Store
	expanded Expansion
	onPath   map[family.ID]bool
	branch   map[family.ID]bool
}

// Build returns the visible tree under rootID, or nil when rootID does not exist.
//
// The root is always expanded, as is every id in expanded. When targetID is set,
// every node on the path from the root to the target is expanded too; such a node
// lists all of its children but only the child on the path is descended into.
func Build(store *family.Store, rootID family.ID, expanded Expansion, targetID family.ID) *Node {
	if !store.Has(rootID) {
		return nil
	}
	b := &builder{
		store:    store,
		expanded: expanded,
		onPath:   map[family.ID]bool{},
		branch:   map[family.ID]bool{},
	}
	if targetID != "" {
		for _, id := range store.PathToTarget(rootID, targetID) {
			b.onPath[id] = true
		}
	}
	return b.node(rootID, true)
}

func (b *builder) leaf(id family.ID) *Node {
	p, ok := b.store.Get(id)
	if !ok {
		return nil
	}
	n := &Node{Person: *p.Clone(), HasChildren: len(p.ChildrenIDs) > 0}
	if p.SpouseID != "" {
		if spouse, ok := b.store.Get(p.SpouseID); ok {
			n.Spouse = spouse.Clone()
		}
	}
	return n
}

func (b *builder) node(id family.ID, root bool) *Node {
	n := b.leaf(id)
	if n == nil || !n.HasChildren {
		return n
	}
	if !root && !b.expanded[id] && !b.onPath[id] {
		return n
	}

	n.Expanded = true
	b.branch[id] = true
	defer delete(b.branch, id)

	focused := b.onPath[id]
	for _, cid := range n.ChildrenIDs {
		var child *Node
		switch {
		case b.branch[cid]:
			child = b.leaf(cid)
		case focused && !b.onPath[cid]:
			child = b.leaf(cid)
		default:
			child = b.node(cid, false)
		}
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}
	return n
}

// Walk calls fn for n and every visible descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
