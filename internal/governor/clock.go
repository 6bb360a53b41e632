package governor

import "time"

// Clock supplies the monotonic timebase the governor measures against.
// Production code uses NewWallClock; tests drive a manual clock.
type Clock interface {
	Micros() int64
	Millis() int64
	Sleep(d time.Duration)
}

type wallClock struct {
	start time.Time
}

// NewWallClock returns a Clock backed by the process monotonic clock.
func NewWallClock() Clock {
	return &wallClock{start: time.Now()}
}

func (c *wallClock) Micros() int64 {
	return time.Since(c.start).Microseconds()
}

func (c *wallClock) Millis() int64 {
	return time.Since(c.start).Milliseconds()
}

func (*wallClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
