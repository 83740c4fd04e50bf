package family

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldsValidate = validator.New()

func init() {
	_ = fieldsValidate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Fields are the display attributes supplied by the data-entry surface.
// Relationships are never set through Fields.
type Fields struct {
	Name   string `json:"name" validate:"required,notblank"`
	Gender Gender `json:"gender" validate:"required,oneof=male female"`
	Dates  string `json:"dates"`
	Info   string `json:"info"`
}

// Validate checks the fields and wraps any failure in ErrInvalidPerson.
func (f Fields) Validate() error {
	if err := fieldsValidate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPerson, err)
	}
	return nil
}

func (f Fields) newPerson(id ID) *Person {
	return &Person{
		ID:          id,
		Name:        strings.TrimSpace(f.Name),
		Gender:      f.Gender,
		Dates:       f.Dates,
		Info:        f.Info,
		ChildrenIDs: []ID{},
	}
}
