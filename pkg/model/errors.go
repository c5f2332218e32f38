package model

import "fmt"

// ErrUnknownSpec is returned when a negation refers to an id that is not an
// error spec of the model. It indicates a caller bug.
type ErrUnknownSpec int

func (e ErrUnknownSpec) Error() string {
	return fmt.Sprintf("model has no error spec with id %d", int(e))
}
