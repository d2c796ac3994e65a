package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/weather/types"
)

const (
	upsertStationSQL = `INSERT INTO station (station_id, name, latitude, longitude, elevation)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(station_id) DO UPDATE SET
  name = excluded.name,
  latitude = excluded.latitude,
  longitude = excluded.longitude,
  elevation = excluded.elevation`
	insertMeasurementSQL = `INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`
)

type Result struct {
	Stations     int
	Observations int
}

// Import replaces all measurements with observations and upserts stations,
// in one transaction. Observations must reference a station that is either
// in stations or already stored.
func Import(ctx context.Context, db *sql.DB, stations []types.Station, observations []types.Observation) (res Result, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("import rollback", "error", rbErr)
			}
		}
	}()

	stStmt, err := tx.PrepareContext(ctx, upsertStationSQL)
	if err != nil {
		return Result{}, fmt.Errorf("prepare station upsert: %w", err)
	}
	defer func() { _ = stStmt.Close() }()
	for _, s := range stations {
		if _, err = stStmt.ExecContext(ctx, s.StationID, s.Name, s.Latitude, s.Longitude, s.Elevation); err != nil {
			return Result{}, fmt.Errorf("upsert station %s: %w", s.StationID, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM measurement`); err != nil {
		return Result{}, fmt.Errorf("clear measurements: %w", err)
	}

	mStmt, err := tx.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		return Result{}, fmt.Errorf("prepare measurement insert: %w", err)
	}
	defer func() { _ = mStmt.Close() }()
	for _, o := range observations {
		var prcp any
		if o.Precipitation != nil {
			prcp = *o.Precipitation
		}
		if _, err = mStmt.ExecContext(ctx, o.Station, o.Date.Format(types.DateLayout), prcp, o.Temperature); err != nil {
			return Result{}, fmt.Errorf("insert measurement %s %s: %w", o.Station, o.Date.Format(types.DateLayout), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit import: %w", err)
	}
	return Result{Stations: len(stations), Observations: len(observations)}, nil
}
