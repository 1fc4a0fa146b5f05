package dynamo

import "time"

// Clock is a monotonic time source in seconds.
type Clock interface {
	Now() float64
}

// WallClock measures seconds elapsed since it was created.
type WallClock struct {
	start time.Time
}

func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// ManualClock only advances when told to. Frame loops that step a simulated
// time use it, as do tests.
type ManualClock struct {
	t float64
}

func NewManualClock(t float64) *ManualClock { return &ManualClock{t: t} }

func (c *ManualClock) Now() float64       { return c.t }
func (c *ManualClock) Set(t float64)      { c.t = t }
func (c *ManualClock) Advance(dt float64) { c.t += dt }

// TimeOf maps clock seconds onto a time.Time so that clock readings can
// drive APIs expressed in wall time.
func TimeOf(seconds float64) time.Time {
	return time.Unix(0, 0).Add(time.Duration(seconds * float64(time.Second)))
}
