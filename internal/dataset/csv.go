// Package dataset loads the station and measurement CSV files into the store.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"climate-server/internal/modules/weather/types"
)

var (
	stationColumns     = []string{"station", "name", "latitude", "longitude", "elevation"}
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
)

// ReadStations parses a CSV with header station,name,latitude,longitude,elevation.
// Columns may appear in any order; extra columns are ignored.
func ReadStations(r io.Reader) ([]types.Station, error) {
	out := make([]types.Station, 0)
	err := readRecords(r, stationColumns, func(rec map[string]string) error {
		lat, err := parseFloat(rec, "latitude")
		if err != nil {
			return err
		}
		lon, err := parseFloat(rec, "longitude")
		if err != nil {
			return err
		}
		elev, err := parseFloat(rec, "elevation")
		if err != nil {
			return err
		}
		s := types.Station{
			StationID: rec["station"],
			Name:      rec["name"],
			Latitude:  lat,
			Longitude: lon,
			Elevation: elev,
		}
		if err := validateStation(s); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadObservations parses a CSV with header station,date,prcp,tobs. An empty
// prcp is a missing reading.
func ReadObservations(r io.Reader) ([]types.Observation, error) {
	out := make([]types.Observation, 0)
	err := readRecords(r, measurementColumns, func(rec map[string]string) error {
		date, err := time.Parse(types.DateLayout, rec["date"])
		if err != nil {
			return fmt.Errorf("date %q: expected YYYY-MM-DD", rec["date"])
		}
		tobs, err := parseFloat(rec, "tobs")
		if err != nil {
			return err
		}
		var prcp *float64
		if rec["prcp"] != "" {
			v, err := parseFloat(rec, "prcp")
			if err != nil {
				return err
			}
			prcp = &v
		}
		o := types.Observation{
			Station:       rec["station"],
			Date:          date,
			Precipitation: prcp,
			Temperature:   tobs,
		}
		if err := validateObservation(o); err != nil {
			return err
		}
		out = append(out, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readRecords(r io.Reader, required []string, fn func(rec map[string]string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("missing header")
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("header: missing column %q", col)
		}
	}

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		rec := make(map[string]string, len(required))
		for _, col := range required {
			i := index[col]
			if i >= len(row) {
				return fmt.Errorf("line %d: missing column %q", line, col)
			}
			rec[col] = strings.TrimSpace(row[i])
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func parseFloat(rec map[string]string, col string) (float64, error) {
	v, err := strconv.ParseFloat(rec[col], 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: not a number", col, rec[col])
	}
	return v, nil
}
