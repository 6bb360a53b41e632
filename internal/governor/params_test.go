package governor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFillsZeroFields(t *testing.T) {
	p := Params{SamplePeriod: 500 * time.Millisecond}.sanitize()

	assert.Equal(t, 500*time.Millisecond, p.SamplePeriod)
	assert.Equal(t, DefaultParams().ScaleInterval, p.ScaleInterval)
	assert.Equal(t, DefaultParams().TurboUp, p.TurboUp)
	assert.Equal(t, DefaultParams().ThermalCritical, p.ThermalCritical)
}

func TestSanitizeRejectsBrokenValues(t *testing.T) {
	p := Params{
		Smoothing:       1.5,
		ThermalCritical: 80,
		ThermalWarn:     90, // above critical
		ThermalRelease:  95, // above warn
	}.sanitize()

	assert.Equal(t, DefaultParams().Smoothing, p.Smoothing)
	assert.Equal(t, DefaultParams().ThermalWarn, p.ThermalWarn)
	assert.Equal(t, DefaultParams().ThermalRelease, p.ThermalRelease)
}

func TestProfileNames(t *testing.T) {
	assert.Equal(t, "ULTRA_LOW", ProfileUltraLow.String())
	assert.Equal(t, "TURBO", ProfileTurbo.String())
	assert.Equal(t, "unknown", Profile(9).String())
	assert.False(t, Profile(-1).Valid())
	assert.False(t, profileCount.Valid())
}
