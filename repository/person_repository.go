package repository

import (
	"fmt"
	"time"

	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/models"
	"gorm.io/gorm"
)

// PersonRepository keeps the tree as one row per person.
type PersonRepository struct {
	DB *gorm.DB
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// ListAll retrieves all rows ordered by id.
func (r *PersonRepository) ListAll() ([]models.Person, error) {
	var people []models.Person
	err := r.DB.Order("id ASC").Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// ReplaceAll swaps the whole table for people in one transaction.
func (r *PersonRepository) ReplaceAll(people family.People) error {
	now := time.Now().Unix()
	rows := make([]models.Person, 0, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		row := models.PersonFromFamily(p)
		row.CreatedAt = now
		row.UpdatedAt = now
		rows = append(rows, row)
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Person{}).Error; err != nil {
			return fmt.Errorf("failed to clear people: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("failed to insert people: %w", err)
		}
		return nil
	})
}

// DeleteAll removes every row.
func (r *PersonRepository) DeleteAll() error {
	err := r.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Person{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete people: %w", err)
	}
	return nil
}

// Load implements storage.Adapter. An empty table reads as "nothing saved".
func (r *PersonRepository) Load() (family.People, bool, error) {
	rows, err := r.ListAll()
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	people := make(family.People, len(rows))
	for _, row := range rows {
		p := row.ToFamily()
		people[p.ID] = p
	}
	return people, true, nil
}

func (r *PersonRepository) Save(people family.People) error {
	return r.ReplaceAll(people)
}

func (r *PersonRepository) Clear() error {
	return r.DeleteAll()
}
