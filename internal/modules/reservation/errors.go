package reservation

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("equipment not available for the requested period")
	ErrNotFound         = errors.New("not found")
	ErrMaintenance      = errors.New("equipment is under maintenance")
	ErrAlreadyFinalized = errors.New("reservation already finalized")
)
