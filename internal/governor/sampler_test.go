package governor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSampler(startUS int64) *loadSampler {
	return newLoadSampler(DefaultParams(), startUS)
}

func TestSamplerFirstTickExemption(t *testing.T) {
	s := newSampler(0)

	// the gap before the very first tick is startup, not work
	s.tick(250_000)
	assert.Zero(t, s.instant)
	assert.Zero(t, s.workUS)
}

func TestSamplerCountsUnannotatedTimeAsWork(t *testing.T) {
	s := newSampler(0)
	s.tick(0)

	s.tick(150_000)
	s.addIdleMicros(50_000)
	s.tick(200_000)

	assert.InDelta(t, 75, s.instant, 0.1)
	assert.InDelta(t, 22.5, s.smoothed, 0.1)
}

func TestSamplerIdleOffsetsInterval(t *testing.T) {
	s := newSampler(0)
	s.tick(0)

	// every interval fully annotated as idle
	for now := int64(10_000); now <= 400_000; now += 10_000 {
		s.addIdleMicros(10_000)
		s.tick(now)
	}

	assert.Zero(t, s.instant)
	assert.Zero(t, s.smoothed)
}

func TestSamplerIdleConsumedByOneTick(t *testing.T) {
	s := newSampler(0)
	s.tick(0)

	// over-reported idle must not carry a credit into later intervals
	s.addIdleMicros(500_000)
	s.tick(10_000)
	assert.Zero(t, s.workUS)

	s.tick(210_000)
	assert.InDelta(t, 200_000.0/210_000.0*100, s.instant, 0.5)
}

func TestSamplerNoiseFloor(t *testing.T) {
	s := newSampler(0)
	s.tick(0)

	// 800us of work in a 200ms period sits below the 1ms floor
	s.tick(800)
	s.addIdleMicros(199_200)
	s.tick(200_000)

	assert.Zero(t, s.instant)
	assert.Zero(t, s.smoothed)
}

func TestSamplerSmoothingConverges(t *testing.T) {
	s := newSampler(0)
	s.tick(0)

	now := int64(0)
	for i := 0; i < 20; i++ {
		now += 200_000
		s.tick(now)
	}

	assert.InDelta(t, 100, s.smoothed, 0.5)
	assert.LessOrEqual(t, s.smoothed, 100.0)
}

func TestSamplerSettleExcludesOverhead(t *testing.T) {
	s := newSampler(0)
	s.tick(0)

	// 30ms of bookkeeping after the tick is not billed to the caller
	s.settle(30_000)
	s.addIdleMicros(170_000)
	s.tick(200_000)

	assert.Zero(t, s.instant)
}

func TestClampLoad(t *testing.T) {
	assert.Zero(t, clampLoad(-5))
	assert.Equal(t, 100.0, clampLoad(250))
	assert.Equal(t, 42.5, clampLoad(42.5))
}
