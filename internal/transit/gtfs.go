// Package transit is the GTFS overlay (C4): stops keyed spatially, and
// per-stop trip cursors producing the next stop-time and dwell-to-next
// duration. GTFS ZIP parsing stays on the standard library's archive/zip
// and encoding/csv, the same way the teacher repo's own gtfs package reads
// static feeds — no third-party GTFS library appears anywhere in the
// retrieved pack.
package transit

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// StopTime is one row of stop_times.txt, seconds-since-midnight.
type StopTime struct {
	TripID       string
	StopID       string
	Sequence     int
	ArrivalSec   int
	DepartureSec int
}

// Trip is a trips.txt row plus its ordered stop_times.
type Trip struct {
	ID        string
	RouteID   string
	StopTimes []StopTime // sorted by Sequence
}

func readCSV(zr *zip.Reader, name string) ([]map[string]string, error) {
	var f *zip.File
	for _, zf := range zr.File {
		if strings.EqualFold(zf.Name, name) || strings.HasSuffix(zf.Name, "/"+name) {
			f = zf
			break
		}
	}
	if f == nil {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(cols))
		for name, idx := range cols {
			if idx < len(rec) {
				row[name] = rec[idx]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseTimeToSeconds parses an HH:MM:SS GTFS time, tolerating hours >= 24
// for trips that run past midnight.
func ParseTimeToSeconds(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}

type parsedFeed struct {
	stops     map[string]*Stop
	trips     map[string]*Trip
	stopTrips map[string]map[string]struct{}
}

func parseZip(path string) (*parsedFeed, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("transit: open %s: %w", path, err)
	}
	defer zr.Close()

	feed := &parsedFeed{
		stops:     make(map[string]*Stop),
		trips:     make(map[string]*Trip),
		stopTrips: make(map[string]map[string]struct{}),
	}

	stopRows, err := readCSV(&zr.Reader, "stops.txt")
	if err != nil {
		return nil, fmt.Errorf("transit: stops.txt: %w", err)
	}
	for _, row := range stopRows {
		lat, errLat := strconv.ParseFloat(row["stop_lat"], 64)
		lon, errLon := strconv.ParseFloat(row["stop_lon"], 64)
		if errLat != nil || errLon != nil {
			continue
		}
		feed.stops[row["stop_id"]] = &Stop{ID: row["stop_id"], Name: row["stop_name"], Lat: lat, Lon: lon}
	}

	tripRows, err := readCSV(&zr.Reader, "trips.txt")
	if err != nil {
		return nil, fmt.Errorf("transit: trips.txt: %w", err)
	}
	for _, row := range tripRows {
		feed.trips[row["trip_id"]] = &Trip{ID: row["trip_id"], RouteID: row["route_id"]}
	}

	stRows, err := readCSV(&zr.Reader, "stop_times.txt")
	if err != nil {
		return nil, fmt.Errorf("transit: stop_times.txt: %w", err)
	}
	for _, row := range stRows {
		trip, ok := feed.trips[row["trip_id"]]
		if !ok {
			log.Printf("transit: stop_time references unknown trip %q, skipping", row["trip_id"])
			continue
		}
		if _, ok := feed.stops[row["stop_id"]]; !ok {
			log.Printf("transit: stop_time references unknown stop %q, skipping", row["stop_id"])
			continue
		}
		seq, _ := strconv.Atoi(row["stop_sequence"])
		arr, _ := ParseTimeToSeconds(row["arrival_time"])
		dep, _ := ParseTimeToSeconds(row["departure_time"])
		st := StopTime{TripID: row["trip_id"], StopID: row["stop_id"], Sequence: seq, ArrivalSec: arr, DepartureSec: dep}
		trip.StopTimes = append(trip.StopTimes, st)

		if feed.stopTrips[row["stop_id"]] == nil {
			feed.stopTrips[row["stop_id"]] = make(map[string]struct{})
		}
		feed.stopTrips[row["stop_id"]][row["trip_id"]] = struct{}{}
	}

	for _, trip := range feed.trips {
		sortStopTimes(trip.StopTimes)
	}

	return feed, nil
}

func sortStopTimes(sts []StopTime) {
	for i := 1; i < len(sts); i++ {
		j := i
		for j > 0 && sts[j-1].Sequence > sts[j].Sequence {
			sts[j-1], sts[j] = sts[j], sts[j-1]
			j--
		}
	}
}
