package transit

// Cursor is a (trip, current-sequence-index) pair: the walker's view of
// "where am I in this trip's stop sequence right now".
type Cursor struct {
	Trip *Trip
	Seq  int
}

// Stop returns the stop_time at the cursor's current position.
func (c Cursor) Stop() (StopTime, bool) {
	if c.Trip == nil || c.Seq < 0 || c.Seq >= len(c.Trip.StopTimes) {
		return StopTime{}, false
	}
	return c.Trip.StopTimes[c.Seq], true
}

// NextStop returns the stop_time one position ahead of the cursor.
func (c Cursor) NextStop() (StopTime, bool) {
	if c.Trip == nil || c.Seq+1 >= len(c.Trip.StopTimes) {
		return StopTime{}, false
	}
	return c.Trip.StopTimes[c.Seq+1], true
}

// NextTime is the duration from the current stop's departure to the next
// stop's arrival; 0 when either time is missing.
func (c Cursor) NextTime() int {
	cur, ok := c.Stop()
	if !ok {
		return 0
	}
	next, ok := c.NextStop()
	if !ok {
		return 0
	}
	d := next.ArrivalSec - cur.DepartureSec
	if d < 0 {
		return 0
	}
	return d
}

// Advance returns the cursor moved to the next stop in the trip, and
// whether there was one (the iterator runs out at the trip's last stop).
func (c Cursor) Advance() (Cursor, bool) {
	if c.Trip == nil || c.Seq+1 >= len(c.Trip.StopTimes) {
		return c, false
	}
	return Cursor{Trip: c.Trip, Seq: c.Seq + 1}, true
}
