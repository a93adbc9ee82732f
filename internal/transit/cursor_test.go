package transit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorNextTime(t *testing.T) {
	trip := &Trip{
		ID: "t1",
		StopTimes: []StopTime{
			{StopID: "a", Sequence: 0, ArrivalSec: 0, DepartureSec: 60},
			{StopID: "b", Sequence: 1, ArrivalSec: 300, DepartureSec: 310},
		},
	}
	c := Cursor{Trip: trip, Seq: 0}
	assert.Equal(t, 240, c.NextTime())
}

func TestCursorNextTimeMissingIsZero(t *testing.T) {
	trip := &Trip{ID: "t1", StopTimes: []StopTime{{StopID: "a", Sequence: 0}}}
	c := Cursor{Trip: trip, Seq: 0}
	assert.Equal(t, 0, c.NextTime())
}

func TestCursorAdvance(t *testing.T) {
	trip := &Trip{ID: "t1", StopTimes: []StopTime{
		{StopID: "a", Sequence: 0}, {StopID: "b", Sequence: 1},
	}}
	c := Cursor{Trip: trip, Seq: 0}
	next, ok := c.Advance()
	assert.True(t, ok)
	assert.Equal(t, 1, next.Seq)

	_, ok = next.Advance()
	assert.False(t, ok)
}

func TestParseTimeToSecondsPastMidnight(t *testing.T) {
	sec, ok := ParseTimeToSeconds("25:10:00")
	assert.True(t, ok)
	assert.Equal(t, 25*3600+10*60, sec)
}
