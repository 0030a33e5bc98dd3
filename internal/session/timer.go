package session

import (
	"fmt"
	"time"
)

// TimerState is the session timer's lifecycle state.
type TimerState int

const (
	NotStarted TimerState = iota
	Running
	Stopped
)

func (s TimerState) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("TimerState(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s TimerState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name written by MarshalText.
func (s *TimerState) UnmarshalText(b []byte) error {
	for _, v := range []TimerState{NotStarted, Running, Stopped} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown timer state %q", b)
}

// Timer tracks wall-clock play time in whole seconds.
// NotStarted → Running on Start, Running → Stopped on Stop, any → NotStarted on Reset.
// There is no pause.
type Timer struct {
	state   TimerState
	start   time.Time
	elapsed int // frozen value once Stopped
}

// Start records now as the start instant. Only valid from NotStarted.
func (t *Timer) Start(now time.Time) bool {
	if t.state != NotStarted {
		return false
	}
	t.state, t.start, t.elapsed = Running, now, 0
	return true
}

// Stop freezes the elapsed value. Only valid while Running.
func (t *Timer) Stop(now time.Time) bool {
	if t.state != Running {
		return false
	}
	t.elapsed = seconds(now.Sub(t.start))
	t.state = Stopped
	return true
}

// Reset returns to NotStarted and clears the start instant.
func (t *Timer) Reset() { *t = Timer{} }

// State reports the current state.
func (t *Timer) State() TimerState { return t.state }

// StartedAt is the start instant, zero when NotStarted.
func (t *Timer) StartedAt() time.Time { return t.start }

// Elapsed returns floor((now-start)/1s) while Running, the frozen value
// once Stopped, and 0 when NotStarted.
func (t *Timer) Elapsed(now time.Time) int {
	switch t.state {
	case Running:
		return seconds(now.Sub(t.start))
	case Stopped:
		return t.elapsed
	}
	return 0
}

func seconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
