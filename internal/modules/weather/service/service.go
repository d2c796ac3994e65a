package service

import (
	"context"
	"time"

	"climate-server/internal/modules/weather/repository"
	"climate-server/internal/modules/weather/types"
)

type Service struct {
	repository   repository.WeatherRepository
	queryTimeout time.Duration
}

// NewService builds the observation aggregator. A positive queryTimeout bounds
// every operation, including the snapshot it runs in.
func NewService(repository repository.WeatherRepository, queryTimeout time.Duration) *Service {
	return &Service{repository: repository, queryTimeout: queryTimeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *Service) Stations(ctx context.Context) ([]types.Station, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repository.GetStations(ctx)
}

// PrecipitationLastYear averages precipitation per date over the 365 days
// ending at the latest observation.
func (s *Service) PrecipitationLastYear(ctx context.Context) ([]types.DailyPrecipitation, error) {
	out := make([]types.DailyPrecipitation, 0)
	err := s.lastYear(ctx, func(ctx context.Context, r repository.WeatherRepository, w types.Window) error {
		rows, err := r.GetDailyPrecipitation(ctx, w)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TemperatureLastYear averages temperature per date over the 365 days ending
// at the latest observation.
func (s *Service) TemperatureLastYear(ctx context.Context) ([]types.DailyTemperature, error) {
	out := make([]types.DailyTemperature, 0)
	err := s.lastYear(ctx, func(ctx context.Context, r repository.WeatherRepository, w types.Window) error {
		rows, err := r.GetDailyTemperature(ctx, w)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TemperatureSummary returns per-date min/avg/max temperature for dates after
// start and up to end. An empty end means the latest observation. Malformed
// dates fail with ErrInvalidDate before the store is touched.
func (s *Service) TemperatureSummary(ctx context.Context, start, end string) ([]types.DailyTemperatureSummary, error) {
	q, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := make([]types.DailyTemperatureSummary, 0)
	err = s.repository.ReadSnapshot(ctx, func(r repository.WeatherRepository) error {
		var latest time.Time
		if !q.hasEnd {
			var ok bool
			var err error
			latest, ok, err = r.GetLatestDate(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		rows, err := r.GetDailyTemperatureSummary(ctx, q.window(latest))
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lastYear resolves the trailing-year window inside one snapshot and hands it
// to fn. fn is not called when there are no observations.
func (s *Service) lastYear(ctx context.Context, fn func(context.Context, repository.WeatherRepository, types.Window) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repository.ReadSnapshot(ctx, func(r repository.WeatherRepository) error {
		latest, ok, err := r.GetLatestDate(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return fn(ctx, r, trailingYear(latest))
	})
}
