package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"climate-server/internal/modules/weather/types"
)

// ErrStoreUnavailable is returned while the circuit around the store is open.
var ErrStoreUnavailable = errors.New("observation store unavailable")

type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

type breakerRepository struct {
	next WeatherRepository
	cb   *gobreaker.CircuitBreaker[any]
}

// WithBreaker wraps next so that repeated store failures fail fast with
// ErrStoreUnavailable instead of queueing more queries against a broken store.
// Context cancellation by the caller is not counted as a failure.
func WithBreaker(next WeatherRepository, s BreakerSettings) WeatherRepository {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "observation-store",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerRepository{next: next, cb: cb}
}

func guard[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (any, error) {
		out, err := fn()
		return out, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		return zero, err
	}
	return v.(T), nil
}

func (b *breakerRepository) GetStations(ctx context.Context) ([]types.Station, error) {
	return guard(b.cb, func() ([]types.Station, error) {
		return b.next.GetStations(ctx)
	})
}

type latestDate struct {
	t  time.Time
	ok bool
}

func (b *breakerRepository) GetLatestDate(ctx context.Context) (time.Time, bool, error) {
	v, err := guard(b.cb, func() (latestDate, error) {
		t, ok, err := b.next.GetLatestDate(ctx)
		return latestDate{t: t, ok: ok}, err
	})
	return v.t, v.ok, err
}

func (b *breakerRepository) GetDailyPrecipitation(ctx context.Context, w types.Window) ([]types.DailyPrecipitation, error) {
	return guard(b.cb, func() ([]types.DailyPrecipitation, error) {
		return b.next.GetDailyPrecipitation(ctx, w)
	})
}

func (b *breakerRepository) GetDailyTemperature(ctx context.Context, w types.Window) ([]types.DailyTemperature, error) {
	return guard(b.cb, func() ([]types.DailyTemperature, error) {
		return b.next.GetDailyTemperature(ctx, w)
	})
}

func (b *breakerRepository) GetDailyTemperatureSummary(ctx context.Context, w types.Window) ([]types.DailyTemperatureSummary, error) {
	return guard(b.cb, func() ([]types.DailyTemperatureSummary, error) {
		return b.next.GetDailyTemperatureSummary(ctx, w)
	})
}

// ReadSnapshot counts the whole snapshot as one breaker call; queries inside
// fn go straight to the transaction-bound repository.
func (b *breakerRepository) ReadSnapshot(ctx context.Context, fn func(WeatherRepository) error) error {
	_, err := guard(b.cb, func() (struct{}, error) {
		return struct{}{}, b.next.ReadSnapshot(ctx, fn)
	})
	return err
}
