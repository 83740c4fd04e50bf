package family

import (
	"fmt"
	"strings"
)

// Search returns copies of people whose name or dates contain query,
// case-insensitively, in id order. limit <= 0 means no limit.
func (s *Store) Search(query string, limit int) []*Person {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*Person{}
	}
	results := []*Person{}
	for _, id := range s.IDs() {
		p := s.people[id]
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Dates), q) {
			results = append(results, p.Clone())
			if limit > 0 && len(results) == limit {
				break
			}
		}
	}
	return results
}

// Label describes where a person sits in the tree, for search suggestions.
type Label struct {
	Relation   string `json:"relation,omitempty"` // "son" or "daughter"
	FatherID   ID     `json:"fatherId,omitempty"`
	FatherName string `json:"fatherName,omitempty"`
	FamilyID   ID     `json:"familyId,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}

func (l Label) String() string {
	var parts []string
	if l.FatherName != "" {
		parts = append(parts, fmt.Sprintf("%s of %s", l.Relation, l.FatherName))
	}
	if l.FamilyName != "" {
		parts = append(parts, "of the family of "+l.FamilyName)
	}
	if len(parts) == 0 {
		return "no family"
	}
	return strings.Join(parts, ", ")
}

// FamilyLabel builds the Label for id.
func (s *Store) FamilyLabel(id ID) (Label, error) {
	p, ok := s.Get(id)
	if !ok {
		return Label{}, notFound(id)
	}
	var l Label
	if father, ok := s.Get(p.FatherID); ok {
		l.FatherID = father.ID
		l.FatherName = father.Name
		l.Relation = "son"
		if p.Gender == Female {
			l.Relation = "daughter"
		}
	}
	if head, ok := s.Get(p.FamilyID); ok {
		l.FamilyID = head.ID
		l.FamilyName = head.Name
	}
	return l, nil
}
