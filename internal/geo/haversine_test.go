package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineSelfIsZero(t *testing.T) {
	d := Haversine(48.8566, 2.3522, 48.8566, 2.3522)
	assert.InDelta(t, 0.0, d, 1e-6)
}

func TestHaversineAntipodal(t *testing.T) {
	d := Haversine(10, 20, -10, -160)
	assert.InDelta(t, math.Pi*EarthRadiusMeters, d, 1.0)
}
