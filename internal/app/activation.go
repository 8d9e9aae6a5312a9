package app

import "sync/atomic"

// Activation tracks whether the window has focus. The zero value is active.
type Activation struct {
	inactive atomic.Bool
}

func (a *Activation) OnActivated() {
	a.inactive.Store(false)
}

func (a *Activation) OnDeactivated() {
	a.inactive.Store(true)
}

func (a *Activation) Active() bool {
	return !a.inactive.Load()
}
