package device

import "codeberg.org/mutker/picoctl/internal/errors"

const (
	ErrUnknownChip          = errors.ErrorCode("device_unknown_chip")
	ErrUnsupportedFrequency = errors.ErrorCode("device_unsupported_frequency")
	ErrUnsupportedVoltage   = errors.ErrorCode("device_unsupported_voltage")
)
