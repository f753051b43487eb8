package cabinet

import "errors"

var (
	ErrCabinetNotFound  = errors.New("cabinet not found")
	ErrCabinetNameTaken = errors.New("cabinet name already exists")
	ErrInvalidType      = errors.New("invalid cabinet type")
	ErrInvalidName      = errors.New("cabinet name is required")
)
