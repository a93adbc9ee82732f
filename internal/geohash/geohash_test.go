package geohash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeExactVector(t *testing.T) {
	assert.Equal(t, "9q8yy", Encode(0b01001_10110_01000_11110_11110, 5))
}

func TestDecodeExactVector(t *testing.T) {
	assert.Equal(t, uint64(10167262), Decode("9q8yy"))
}

func TestHashSanFrancisco(t *testing.T) {
	assert.Equal(t, "9q8yym901hw", Hash(37.77926, -122.41923, 11))
}

func TestHashLondon(t *testing.T) {
	assert.Equal(t, "gcpvn0ntjut", Hash(51.50479, -0.07871, 11))
}

func TestGeoBoxForHashDimensions(t *testing.T) {
	box := GeoBoxForHash("9q8y")
	assert.InDelta(t, 0.3515625, box.Width(), 1e-9)
	assert.InDelta(t, 0.17578125, box.Height(), 1e-9)
}
