package geojson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFeatureCollectionIsNeverNull(t *testing.T) {
	fc := NewFeatureCollection(nil)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.NotNil(t, fc.Features)
	assert.Len(t, fc.Features, 0)
}

func TestNewPointCoordinateOrderIsLonLat(t *testing.T) {
	p := NewPoint(Point{Lon: -122.4, Lat: 37.8})
	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, [2]float64{-122.4, 37.8}, p.Coordinates)
}

func TestNewMultiLineStringOneMemberPerSegment(t *testing.T) {
	segs := []Segment{
		{From: Point{Lon: 1, Lat: 2}, To: Point{Lon: 3, Lat: 4}},
		{From: Point{Lon: 5, Lat: 6}, To: Point{Lon: 7, Lat: 8}},
	}
	mls := NewMultiLineString(segs)
	assert.Equal(t, "MultiLineString", mls.Type)
	assert.Len(t, mls.Coordinates, 2)
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, mls.Coordinates[0])
	assert.Equal(t, [][2]float64{{5, 6}, {7, 8}}, mls.Coordinates[1])
}

func TestNewFeatureCarriesOptionalNodeID(t *testing.T) {
	id := int64(42)
	f := NewFeature(Properties{Name: "cafe", NodeID: &id}, NewPoint(Point{Lon: 0, Lat: 0}))
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "cafe", f.Properties.Name)
	assert.Equal(t, &id, f.Properties.NodeID)
}
