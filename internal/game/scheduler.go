package game

import "time"

type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Round ticks and result delays go through it
// so tests can drive time by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func NewClockScheduler() Scheduler {
	return clockScheduler{}
}
