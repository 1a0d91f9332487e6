package mcts

import "time"

// Wall clock budget of a single search
type _Timer struct {
	start    time.Time
	duration time.Duration // negative when unset
}

func _NewTimer() *_Timer {
	return &_Timer{start: time.Now(), duration: -1}
}

// Whether the budget is set and used up
func (t *_Timer) IsEnd() bool {
	return t.duration >= 0 && time.Since(t.start) >= t.duration
}

func (t *_Timer) IsSet() bool {
	return t.duration >= 0
}

func (t *_Timer) Reset() {
	t.start = time.Now()
}

// Milliseconds since the last reset, at least 1
func (t *_Timer) Deltatime() int {
	return max(int(time.Since(t.start).Milliseconds()), 1)
}

// In milliseconds, negative disables the budget
func (t *_Timer) Movetime(movetime int) {
	if movetime < 0 {
		t.duration = -1
	} else {
		t.duration = time.Duration(movetime) * time.Millisecond
	}
}
