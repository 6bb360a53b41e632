package governor

import "codeberg.org/mutker/picoctl/internal/errors"

const (
	ErrUnknownChip = errors.ErrorCode("governor_unknown_chip")
	ErrNilActuator = errors.ErrorCode("governor_nil_actuator")
	ErrNilSensor   = errors.ErrorCode("governor_nil_sensor")
)
