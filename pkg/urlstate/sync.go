package urlstate

import "sync/atomic"

// Synchronizer lifecycle: uninitialized until the initial read completes,
// active while mounted, torn-down after release. Torn-down is terminal.
const (
	stateUninitialized int32 = iota
	stateActive
	stateTornDown
)

// lifecycleState is the shared state machine for HashValue and
// QueryValues.
type lifecycleState struct {
	v atomic.Int32
}

// activate moves uninitialized → active.
func (s *lifecycleState) activate() {
	s.v.CompareAndSwap(stateUninitialized, stateActive)
}

// teardown moves to torn-down. Returns true only for the transition that
// actually tore the synchronizer down, so release logic runs exactly once.
func (s *lifecycleState) teardown() bool {
	return s.v.Swap(stateTornDown) != stateTornDown
}

// active reports whether writes are currently valid.
func (s *lifecycleState) active() bool {
	return s.v.Load() == stateActive
}
