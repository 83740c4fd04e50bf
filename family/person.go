package family

// ID identifies a person. The empty ID means "no such relationship".
type ID string

// Gender drives father/mother slot selection and spouse gender inference.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Opposite returns the other gender, or "" when g is not a known gender.
func (g Gender) Opposite() Gender {
	switch g {
	case Male:
		return Female
	case Female:
		return Male
	default:
		return ""
	}
}

// Person is the single entity of the family graph.
// Relationship fields are weak references by ID; ChildrenIDs is the owned forward edge.
type Person struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Gender      Gender `json:"gender"`
	Dates       string `json:"dates,omitempty"`
	Info        string `json:"info,omitempty"`
	FatherID    ID     `json:"fatherId,omitempty"`
	MotherID    ID     `json:"motherId,omitempty"`
	SpouseID    ID     `json:"spouseId,omitempty"`
	SpouseIDs   []ID   `json:"spouseIds,omitempty"` // legacy history, never maintained
	ChildrenIDs []ID   `json:"childrenIds"`
	FamilyID    ID     `json:"familyId,omitempty"`
}

// IsFamilyRoot reports whether p heads its own family group.
func (p *Person) IsFamilyRoot() bool {
	return p.FamilyID != "" && p.FamilyID == p.ID
}

// HasChild reports whether childID is listed in p's children.
func (p *Person) HasChild(childID ID) bool {
	for _, id := range p.ChildrenIDs {
		if id == childID {
			return true
		}
	}
	return false
}

func (p *Person) addChild(childID ID) {
	if !p.HasChild(childID) {
		p.ChildrenIDs = append(p.ChildrenIDs, childID)
	}
}

func (p *Person) removeChild(childID ID) {
	kept := p.ChildrenIDs[:0:0]
	for _, id := range p.ChildrenIDs {
		if id != childID {
			kept = append(kept, id)
		}
	}
	p.ChildrenIDs = kept
}

// parentSlot returns a pointer to the FatherID or MotherID field matching gender,
// or nil when gender is neither.
func (p *Person) parentSlot(g Gender) *ID {
	switch g {
	case Male:
		return &p.FatherID
	case Female:
		return &p.MotherID
	default:
		return nil
	}
}

// Clone returns a deep copy with independent slices.
func (p *Person) Clone() *Person {
	c := *p
	c.ChildrenIDs = append(make([]ID, 0, len(p.ChildrenIDs)), p.ChildrenIDs...)
	if p.SpouseIDs != nil {
		c.SpouseIDs = append(make([]ID, 0, len(p.SpouseIDs)), p.SpouseIDs...)
	}
	return &c
}

// People is the serialized layout of a whole tree: id -> person.
type People map[ID]*Person

// Clone deep-copies every record.
func (pp People) Clone() People {
	out := make(People, len(pp))
	for id, p := range pp {
		if p == nil {
			continue
		}
		out[id] = p.Clone()
	}
	return out
}

// Normalize fills in values the wire format allows to be missing and makes the
// map key authoritative: a record's ID is always its key, ChildrenIDs is never nil.
func (pp People) Normalize() {
	for id, p := range pp {
		if p == nil {
			delete(pp, id)
			continue
		}
		p.ID = id
		if p.ChildrenIDs == nil {
			p.ChildrenIDs = []ID{}
		}
	}
}
