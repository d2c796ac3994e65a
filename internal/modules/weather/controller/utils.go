package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/weather/repository"
	"climate-server/internal/modules/weather/service"
	"climate-server/internal/modules/weather/types"
	"climate-server/internal/utils"
)

type temperatureRecord struct {
	Date         string `json:"Date"`
	Temperatures string `json:"Temperatures"`
}

// Field order is the response key order.
type temperatureSummaryRecord struct {
	Date string  `json:"Date"`
	Min  float64 `json:"Min. Temp"`
	Avg  float64 `json:"Avg. Temp"`
	Max  float64 `json:"Max. Temp"`
}

func precipitationRecords(rows []types.DailyPrecipitation) []map[string]string {
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]string{
			r.Date.Format(types.DateLayout): fmt.Sprintf("%.4f", r.Average),
		})
	}
	return out
}

func temperatureRecords(rows []types.DailyTemperature) []temperatureRecord {
	out := make([]temperatureRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, temperatureRecord{
			Date:         r.Date.Format(types.DateLayout),
			Temperatures: fmt.Sprintf("%.2f", r.Average),
		})
	}
	return out
}

func temperatureSummaryRecords(rows []types.DailyTemperatureSummary) []temperatureSummaryRecord {
	out := make([]temperatureSummaryRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, temperatureSummaryRecord{
			Date: r.Date.Format(types.DateLayout),
			Min:  r.Min,
			Avg:  r.Avg,
			Max:  r.Max,
		})
	}
	return out
}

func stationRecords(stations []types.Station) []types.Station {
	if stations == nil {
		return []types.Station{}
	}
	return stations
}

// statusClientClosedRequest is nginx's non-standard code for a client that
// went away before the response was written.
const statusClientClosedRequest = 499

// writeServiceError maps service errors to HTTP statuses. Backend details are
// logged, never returned to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrStoreUnavailable):
		slog.Warn(op+": store unavailable", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "observation store temporarily unavailable")
	case errors.Is(err, context.Canceled):
		slog.Debug(op+": request canceled", "path", r.URL.Path)
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, context.DeadlineExceeded):
		slog.Error(op+": query timed out", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "query timed out")
	default:
		slog.Error(op+": query failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load observations")
	}
}
