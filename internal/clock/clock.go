package clock

import "time"

// Clock abstracts time so token expiry can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func New() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now().UTC() }

var _ Clock = (*FakeClock)(nil)
