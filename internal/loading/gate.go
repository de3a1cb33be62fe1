// Package loading tracks whether any cart mutation is in flight. The gate is advisory:
// it never blocks a caller, it only lets the UI show a busy overlay.
package loading

import "sync/atomic"

type Gate struct {
	active atomic.Int64
}

func NewGate() *Gate {
	return &Gate{}
}

// Enter marks one operation as in flight and returns its release func. Release is
// idempotent so it is safe to defer alongside an explicit early release.
func (g *Gate) Enter() (release func()) {
	if g == nil {
		return func() {}
	}
	g.active.Add(1)
	var done atomic.Bool
	return func() {
		if done.CompareAndSwap(false, true) {
			g.active.Add(-1)
		}
	}
}

// Run executes fn inside the gate; the gate is released even when fn panics.
func (g *Gate) Run(fn func()) {
	release := g.Enter()
	defer release()
	fn()
}

func (g *Gate) Active() bool {
	return g.InFlight() > 0
}

func (g *Gate) InFlight() int64 {
	if g == nil {
		return 0
	}
	return g.active.Load()
}
