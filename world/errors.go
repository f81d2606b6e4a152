package world

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState reports a value outside its legal domain. It only
	// surfaces from misuse of constructors, never from a correct day.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyDead is returned when killing an animal that is already dead.
	ErrAlreadyDead = errors.New("animal already dead")

	// ErrTotalExtinction is returned by Day once no animal of either species is left.
	ErrTotalExtinction = errors.New("total extinction")

	ErrWaterCell     = fmt.Errorf("%w: cell is water", ErrInvalidState)
	ErrHasVegetation = fmt.Errorf("%w: cell already has vegetation", ErrInvalidState)
)
