package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFullBudgetWhenCategoryMissing(t *testing.T) {
	sq := &Square{Scores: map[string]float64{}}
	got := Score(sq, map[string]uint64{"bar": 500})
	assert.Equal(t, 0, got)
}

func TestScoreFullMarksWhenAtZeroCost(t *testing.T) {
	sq := &Square{Scores: map[string]float64{"bar": 0}}
	got := Score(sq, map[string]uint64{"bar": 500})
	assert.Equal(t, 100, got)
}

func TestScoreAveragesAcrossCategories(t *testing.T) {
	sq := &Square{Scores: map[string]float64{"bar": 0, "cafe": 500}}
	got := Score(sq, map[string]uint64{"bar": 500, "cafe": 500})
	assert.Equal(t, 25, got)
}

func TestScoreEmptyWantedIsZero(t *testing.T) {
	sq := &Square{Scores: map[string]float64{}}
	assert.Equal(t, 0, Score(sq, nil))
}
