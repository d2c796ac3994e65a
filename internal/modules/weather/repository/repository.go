package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"climate-server/internal/modules/weather/types"
)

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-latest-date.sql
var getLatestDateSQL string

//go:embed sql/get-daily-precipitation.sql
var getDailyPrecipitationSQL string

//go:embed sql/get-daily-temperature.sql
var getDailyTemperatureSQL string

//go:embed sql/get-daily-temperature-summary.sql
var getDailyTemperatureSummarySQL string

type WeatherRepository interface {
	GetStations(ctx context.Context) ([]types.Station, error)
	// GetLatestDate reports the newest observation date; ok is false when
	// there are no observations.
	GetLatestDate(ctx context.Context) (latest time.Time, ok bool, err error)
	GetDailyPrecipitation(ctx context.Context, w types.Window) ([]types.DailyPrecipitation, error)
	GetDailyTemperature(ctx context.Context, w types.Window) ([]types.DailyTemperature, error)
	GetDailyTemperatureSummary(ctx context.Context, w types.Window) ([]types.DailyTemperatureSummary, error)
	// ReadSnapshot runs fn against a repository bound to one read-only
	// transaction. The transaction is released when fn returns.
	ReadSnapshot(ctx context.Context, fn func(WeatherRepository) error) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repositoryImpl struct {
	db *sql.DB
	q  querier
}

func NewRepository(db *sql.DB) WeatherRepository {
	return &repositoryImpl{db: db, q: db}
}

func (r *repositoryImpl) ReadSnapshot(ctx context.Context, fn func(WeatherRepository) error) error {
	if _, nested := r.q.(*sql.Tx); nested {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read snapshot: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("rollback read snapshot", "error", err)
		}
	}()
	return fn(&repositoryImpl{db: r.db, q: tx})
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.q.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer closeRows(rows, "stations")

	out := make([]types.Station, 0)
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.StationID, &s.Name, &s.Latitude, &s.Longitude, &s.Elevation); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetLatestDate(ctx context.Context) (time.Time, bool, error) {
	var d dateColumn
	if err := r.q.QueryRowContext(ctx, getLatestDateSQL).Scan(&d); err != nil {
		return time.Time{}, false, fmt.Errorf("query latest date: %w", err)
	}
	return d.Time, d.Valid, nil
}

func (r *repositoryImpl) GetDailyPrecipitation(ctx context.Context, w types.Window) ([]types.DailyPrecipitation, error) {
	rows, err := r.q.QueryContext(ctx, getDailyPrecipitationSQL, windowArgs(w)...)
	if err != nil {
		return nil, fmt.Errorf("query daily precipitation: %w", err)
	}
	defer closeRows(rows, "daily precipitation")

	out := make([]types.DailyPrecipitation, 0)
	for rows.Next() {
		var (
			d   dateColumn
			rec types.DailyPrecipitation
		)
		if err := rows.Scan(&d, &rec.Average); err != nil {
			return nil, fmt.Errorf("scan daily precipitation: %w", err)
		}
		rec.Date = d.Time
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetDailyTemperature(ctx context.Context, w types.Window) ([]types.DailyTemperature, error) {
	rows, err := r.q.QueryContext(ctx, getDailyTemperatureSQL, windowArgs(w)...)
	if err != nil {
		return nil, fmt.Errorf("query daily temperature: %w", err)
	}
	defer closeRows(rows, "daily temperature")

	out := make([]types.DailyTemperature, 0)
	for rows.Next() {
		var (
			d   dateColumn
			rec types.DailyTemperature
		)
		if err := rows.Scan(&d, &rec.Average); err != nil {
			return nil, fmt.Errorf("scan daily temperature: %w", err)
		}
		rec.Date = d.Time
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetDailyTemperatureSummary(ctx context.Context, w types.Window) ([]types.DailyTemperatureSummary, error) {
	rows, err := r.q.QueryContext(ctx, getDailyTemperatureSummarySQL, windowArgs(w)...)
	if err != nil {
		return nil, fmt.Errorf("query daily temperature summary: %w", err)
	}
	defer closeRows(rows, "daily temperature summary")

	out := make([]types.DailyTemperatureSummary, 0)
	for rows.Next() {
		var (
			d   dateColumn
			rec types.DailyTemperatureSummary
		)
		if err := rows.Scan(&d, &rec.Min, &rec.Avg, &rec.Max); err != nil {
			return nil, fmt.Errorf("scan daily temperature summary: %w", err)
		}
		rec.Date = d.Time
		out = append(out, rec)
	}
	return out, rows.Err()
}

func windowArgs(w types.Window) []any {
	return []any{w.Start.Format(types.DateLayout), w.End.Format(types.DateLayout)}
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}

// dateColumn scans a calendar date stored as ISO text or, when the column is
// declared DATE, as the driver's time.Time. NULL leaves Valid false.
type dateColumn struct {
	Time  time.Time
	Valid bool
}

func (d *dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		d.Valid = true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported date value %T", src)
	}
}

func (d *dateColumn) parse(s string) error {
	// Accept "2017-08-23" as well as timestamps such as "2017-08-23 00:00:00.000000".
	if len(s) > len(types.DateLayout) {
		s = s[:len(types.DateLayout)]
	}
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time, d.Valid = t, true
	return nil
}
