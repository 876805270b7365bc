package clock

import "time"

// Clock abstracts wall-clock reads so services can be tested with a
// fixed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func System() Clock { return systemClock{} }
