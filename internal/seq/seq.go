// Package seq hands out monotonic request tokens so that a response which
// resolves after a newer request was issued for the same state slot can be
// recognised and dropped.
package seq

import (
	"errors"
	"sync/atomic"
)

// Token identifies one issued request for a slot.
type Token uint64

// Slot tracks the latest token issued for one piece of view state.
// The zero value is ready to use.
type Slot struct {
	latest atomic.Uint64
}

// Issue returns a token newer than every token issued before it.
func (s *Slot) Issue() Token {
	return Token(s.latest.Add(1))
}

// Current reports whether t is still the latest token for the slot.
func (s *Slot) Current(t Token) bool {
	return s.latest.Load() == uint64(t)
}

// Invalidate makes every outstanding token stale without issuing a request.
func (s *Slot) Invalidate() {
	s.latest.Add(1)
}

// ErrSuperseded is returned when a response arrived after a newer request for
// the same slot was issued; the response was not applied.
var ErrSuperseded = errors.New("response superseded by a newer request")
