package transit

import (
	"log"

	"github.com/pathgrid/pathgrid/internal/quadtree"
)

const stopIndexCapacity = 200

// Stop is a transit stop location and the trip ids that serve it.
type Stop struct {
	ID      string
	Name    string
	Lat     float64
	Lon     float64
	TripIDs []string
}

func (s Stop) X() float64 { return s.Lon }
func (s Stop) Y() float64 { return s.Lat }

// Map is the spatially-indexed transit overlay.
type Map struct {
	stops map[string]*Stop
	trips map[string]*Trip
	index *quadtree.Tree[Stop]
}

// NewMap creates an empty overlay spanning the whole world, matching GTFS
// feeds' unpredictable extents.
func NewMap() *Map {
	return &Map{
		stops: make(map[string]*Stop),
		trips: make(map[string]*Trip),
		index: quadtree.OfCapacity[Stop](-180, -90, 360, 180, stopIndexCapacity),
	}
}

// Load ingests one GTFS zip, merging into any feeds already loaded.
func (m *Map) Load(path string) error {
	feed, err := parseZip(path)
	if err != nil {
		return err
	}
	for id, stop := range feed.stops {
		var trips []string
		for tripID := range feed.stopTrips[id] {
			trips = append(trips, tripID)
		}
		stop.TripIDs = trips
		m.stops[id] = stop
		if !m.index.Insert(*stop) {
			log.Printf("transit: stop %s lies outside the spatial index bounds, not indexed", id)
		}
	}
	for id, trip := range feed.trips {
		m.trips[id] = trip
	}
	return nil
}

// Stops returns every loaded stop.
func (m *Map) Stops() []*Stop {
	out := make([]*Stop, 0, len(m.stops))
	for _, s := range m.stops {
		out = append(out, s)
	}
	return out
}

// StopByID looks up a stop.
func (m *Map) StopByID(id string) (*Stop, bool) {
	s, ok := m.stops[id]
	return s, ok
}

// GetStops returns the leaf-scoped nearest stops to (lat, lon).
func (m *Map) GetStops(lat, lon float64) []Stop {
	return m.index.Nearest(lon, lat)
}

// NextTrips returns a cursor for every trip serving stopID, each advanced to
// that stop's position in the trip's sequence.
func (m *Map) NextTrips(stopID string) []Cursor {
	stop, ok := m.stops[stopID]
	if !ok {
		return nil
	}
	var cursors []Cursor
	for _, tripID := range stop.TripIDs {
		trip, ok := m.trips[tripID]
		if !ok {
			continue
		}
		for i, st := range trip.StopTimes {
			if st.StopID == stopID {
				cursors = append(cursors, Cursor{Trip: trip, Seq: i})
				break
			}
		}
	}
	return cursors
}
