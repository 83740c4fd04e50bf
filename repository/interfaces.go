package repository

import (
	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/models"
)

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	ListAll() ([]models.Person, error)
	ReplaceAll(people family.People) error
	DeleteAll() error
}

var _ PersonRepositoryInterface = (*PersonRepository)(nil)
