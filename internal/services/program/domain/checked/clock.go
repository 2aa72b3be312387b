package checked

import "time"

// Clock is the authoritative time source for one instruction.
//
// The host reads it once before the instruction runs; handlers never consult
// wall time directly.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

// ClockAt builds a Clock from a wall time and slot.
func ClockAt(slot uint64, now time.Time) Clock {
	return Clock{Slot: slot, UnixTimestamp: now.Unix()}
}

// Before reports whether the clock is strictly earlier than deadline.
// New contributions are only accepted while this holds.
func (c Clock) Before(deadline int64) bool {
	return c.UnixTimestamp < deadline
}

// Reached reports whether deadline has been reached (inclusive). Resolution
// checks use this form.
func (c Clock) Reached(deadline int64) bool {
	return c.UnixTimestamp >= deadline
}

// Time returns the clock timestamp as a UTC time.
func (c Clock) Time() time.Time {
	return time.Unix(c.UnixTimestamp, 0).UTC()
}
