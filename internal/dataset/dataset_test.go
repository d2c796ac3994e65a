package dataset

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-server/internal/migrate"
	"climate-server/internal/modules/weather/types"
)

const stationsCSV = `station,name,latitude,longitude,elevation
USC00519397,"WAIKIKI 717.2, HI US",21.2716,-157.8168,3.0
USC00513117,"KANEOHE 838.1, HI US",21.4234,-157.8015,14.6
`

const measurementsCSV = `station,date,prcp,tobs
USC00519397,2010-01-01,0.08,65
USC00519397,2010-01-02,,63
USC00513117,2010-01-01,0.28,67
`

func openStore(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.Run(context.Background(), db))
	return db
}

func TestReadStations(t *testing.T) {
	got, err := ReadStations(strings.NewReader(stationsCSV))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.Station{
		StationID: "USC00519397",
		Name:      "WAIKIKI 717.2, HI US",
		Latitude:  21.2716,
		Longitude: -157.8168,
		Elevation: 3.0,
	}, got[0])
}

func TestReadStations_ColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffname,station,elevation,longitude,latitude,extra\nX,S1,1,2,3,ignored\n"
	got, err := ReadStations(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []types.Station{{StationID: "S1", Name: "X", Latitude: 3, Longitude: 2, Elevation: 1}}, got)
}

func TestReadStations_Validation(t *testing.T) {
	_, err := ReadStations(strings.NewReader("station,name,latitude,longitude,elevation\nS1,,95,-157.8,3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "name: required")
	assert.Contains(t, err.Error(), "latitude: lte 90")
}

func TestReadStations_ElevationBounds(t *testing.T) {
	tests := []struct {
		name, elevation, want string
	}{
		{"above highest summit", "12000", "elevation: lte 9000"},
		{"below deepest depression", "-600", "elevation: gte -500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := "station,name,latitude,longitude,elevation\nS1,KANEOHE,21.4,-157.8," + tt.elevation + "\n"
			_, err := ReadStations(strings.NewReader(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	got, err := ReadStations(strings.NewReader("station,name,latitude,longitude,elevation\nS1,KANEOHE,21.4,-157.8,306.6\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 306.6, got[0].Elevation)
}

func TestReadObservations(t *testing.T) {
	got, err := ReadObservations(strings.NewReader(measurementsCSV))
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.NotNil(t, got[0].Precipitation)
	assert.InDelta(t, 0.08, *got[0].Precipitation, 1e-9)
	assert.Equal(t, "2010-01-01", got[0].Date.Format(types.DateLayout))
	assert.Nil(t, got[1].Precipitation, "empty prcp is a missing reading")
	assert.Equal(t, 63.0, got[1].Temperature)
}

func TestReadObservations_Errors(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty input", "", "missing header"},
		{"missing column", "station,date,tobs\nA,2010-01-01,60\n", `missing column "prcp"`},
		{"bad date", "station,date,prcp,tobs\nA,01/01/2010,,60\n", "line 2"},
		{"bad tobs", "station,date,prcp,tobs\nA,2010-01-01,,warm\n", "tobs"},
		{"bad prcp", "station,date,prcp,tobs\nA,2010-01-01,x,60\n", "prcp"},
		{"short row", "station,date,prcp,tobs\nA,2010-01-01\n", "line 2"},
		{"empty station", "station,date,prcp,tobs\n,2010-01-01,,60\n", "station: required"},
		{"negative prcp", "station,date,prcp,tobs\nA,2010-01-01,-0.5,60\n", "precipitation: gte 0"},
		{"implausible tobs", "station,date,prcp,tobs\nA,2010-01-01,0,451\n", "temperature: lte 140"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadObservations(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImport(t *testing.T) {
	db := openStore(t)
	ctx := context.Background()
	stations, err := ReadStations(strings.NewReader(stationsCSV))
	require.NoError(t, err)
	obs, err := ReadObservations(strings.NewReader(measurementsCSV))
	require.NoError(t, err)

	res, err := Import(ctx, db, stations, obs)
	require.NoError(t, err)
	assert.Equal(t, Result{Stations: 2, Observations: 3}, res)

	var n, nulls int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), SUM(prcp IS NULL) FROM measurement`).Scan(&n, &nulls))
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, nulls)

	var date string
	require.NoError(t, db.QueryRow(`SELECT MAX(date) FROM measurement`).Scan(&date))
	assert.Equal(t, "2010-01-02", date)
}

func TestImport_Reimport(t *testing.T) {
	db := openStore(t)
	ctx := context.Background()
	stations, err := ReadStations(strings.NewReader(stationsCSV))
	require.NoError(t, err)
	obs, err := ReadObservations(strings.NewReader(measurementsCSV))
	require.NoError(t, err)

	_, err = Import(ctx, db, stations, obs)
	require.NoError(t, err)
	stations[0].Name = "renamed"
	_, err = Import(ctx, db, stations, obs[:1])
	require.NoError(t, err)

	var stationCount, measurementCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM station`).Scan(&stationCount))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM measurement`).Scan(&measurementCount))
	assert.Equal(t, 2, stationCount)
	assert.Equal(t, 1, measurementCount)

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM station WHERE station_id = ?`, stations[0].StationID).Scan(&name))
	assert.Equal(t, "renamed", name)
}

func TestImport_RollsBackOnFailure(t *testing.T) {
	db := openStore(t)
	ctx := context.Background()
	stations, err := ReadStations(strings.NewReader(stationsCSV))
	require.NoError(t, err)
	obs, err := ReadObservations(strings.NewReader(measurementsCSV))
	require.NoError(t, err)
	_, err = Import(ctx, db, stations, obs)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TRIGGER reject_measurement BEFORE INSERT ON measurement
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	_, err = Import(ctx, db, stations, obs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM measurement`).Scan(&n))
	assert.Equal(t, 3, n, "failed import must leave previous data intact")
}
