package models

import (
	"github.com/camden-git/familytreebackend/family"
)

// Person is one row of the normalized 'people' table.
// Relationship columns hold ids of other rows; an empty string means no relationship.
type Person struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"not null" json:"name"`
	Gender      string   `gorm:"not null;index" json:"gender"`
	Dates       string   `json:"dates,omitempty"`
	Info        string   `json:"info,omitempty"`
	FatherID    string   `gorm:"index" json:"fatherId,omitempty"`
	MotherID    string   `gorm:"index" json:"motherId,omitempty"`
	SpouseID    string   `json:"spouseId,omitempty"`
	SpouseIDs   []string `gorm:"serializer:json" json:"spouseIds,omitempty"`
	ChildrenIDs []string `gorm:"serializer:json;not null" json:"childrenIds"`
	FamilyID    string   `gorm:"index" json:"familyId,omitempty"`
	CreatedAt   int64    `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt   int64    `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// PersonFromFamily converts a graph record into a row.
func PersonFromFamily(p *family.Person) Person {
	return Person{
		ID:          string(p.ID),
		Name:        p.Name,
		Gender:      string(p.Gender),
		Dates:       p.Dates,
		Info:        p.Info,
		FatherID:    string(p.FatherID),
		MotherID:    string(p.MotherID),
		SpouseID:    string(p.SpouseID),
		SpouseIDs:   idsToStrings(p.SpouseIDs),
		ChildrenIDs: idsToStrings(p.ChildrenIDs),
		FamilyID:    string(p.FamilyID),
	}
}

// ToFamily converts a row back into a graph record.
func (p Person) ToFamily() *family.Person {
	children := stringsToIDs(p.ChildrenIDs)
	if children == nil {
		children = []family.ID{}
	}
	return &family.Person{
		ID:          family.ID(p.ID),
		Name:        p.Name,
		Gender:      family.Gender(p.Gender),
		Dates:       p.Dates,
		Info:        p.Info,
		FatherID:    family.ID(p.FatherID),
		MotherID:    family.ID(p.MotherID),
		SpouseID:    family.ID(p.SpouseID),
		SpouseIDs:   stringsToIDs(p.SpouseIDs),
		ChildrenIDs: children,
		FamilyID:    family.ID(p.FamilyID),
	}
}

func idsToStrings(ids []family.ID) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringsToIDs(ss []string) []family.ID {
	if ss == nil {
		return nil
	}
	out := make([]family.ID, len(ss))
	for i, s := range ss {
		out[i] = family.ID(s)
	}
	return out
}
