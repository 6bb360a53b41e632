package governor

// Actuator reprograms the clock and core voltage. The governor owns the
// stability ordering (voltage up before frequency up, voltage down after
// frequency down); implementations only apply what they are told.
type Actuator interface {
	// SetVoltage applies a core voltage in millivolts.
	SetVoltage(millivolts int) error

	// SetFrequency applies a system clock in kHz and returns the
	// frequency actually running afterwards. On error the implementation
	// must already have fallen back to a known-safe baseline and report
	// that baseline as the actual frequency.
	SetFrequency(khz int) (int, error)

	// WaitForInterrupt halts the core until the next interrupt. Only
	// invoked on chip variants that support it.
	WaitForInterrupt()
}

// TemperatureSensor reads the die temperature in degrees Celsius.
type TemperatureSensor interface {
	ReadTemperature() (float64, error)
}
