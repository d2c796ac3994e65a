package types

import "time"

// DateLayout is the calendar date format used in storage, URLs and responses.
const DateLayout = "2006-01-02"

type Station struct {
	StationID string  `json:"station_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// Observation is one station's measurement for one day. Precipitation is nil
// when the station did not report it.
type Observation struct {
	Station       string
	Date          time.Time
	Precipitation *float64
	Temperature   float64
}

// Window is the half-open date range (Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

type DailyPrecipitation struct {
	Date    time.Time
	Average float64
}

type DailyTemperature struct {
	Date    time.Time
	Average float64
}

type DailyTemperatureSummary struct {
	Date time.Time
	Min  float64
	Avg  float64
	Max  float64
}
