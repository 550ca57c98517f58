package core

import (
	"strconv"
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}

// ReactionTime is the latency between stimulus onset and keypress.
// It is logged in seconds, not as a Duration string.
type ReactionTime time.Duration

// NewReactionTime creates a reaction time from a measured duration.
func NewReactionTime(d time.Duration) ReactionTime { return ReactionTime(d) }

// Duration returns the underlying time.Duration
func (rt ReactionTime) Duration() time.Duration { return time.Duration(rt) }

// Seconds returns the reaction time in seconds.
func (rt ReactionTime) Seconds() float64 { return time.Duration(rt).Seconds() }

// String formats the reaction time the way it is persisted: plain seconds
// with the shortest float representation that round-trips.
func (rt ReactionTime) String() string {
	return strconv.FormatFloat(rt.Seconds(), 'f', -1, 64)
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}
