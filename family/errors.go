package family

import "errors"

var (
	ErrNotFound              = errors.New("person not found")
	ErrAlreadyMarried        = errors.New("person already has a spouse")
	ErrAlreadyHasBothParents = errors.New("person already has both a father and a mother")
	ErrParentSlotTaken       = errors.New("person already has a parent of that gender")
	ErrInvalidPerson         = errors.New("invalid person fields")
	ErrSelfReference         = errors.New("a person cannot be related to themselves")
	ErrCycle                 = errors.New("link would make a person their own ancestor")
	ErrIDExhausted           = errors.New("could not allocate a unique person id")
)
