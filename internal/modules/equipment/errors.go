package equipment

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("equipment not found")
	ErrHasReservations = errors.New("equipment has associated reservations")
)
