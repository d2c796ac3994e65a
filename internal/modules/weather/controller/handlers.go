package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/weather/views"
	"climate-server/internal/utils"
)

var indexRoutes = []views.Route{
	{Path: "/api/v1.0/precipitation"},
	{Path: "/api/v1.0/stations"},
	{Path: "/api/v1.0/tobs"},
	{Path: "/api/v1.0/{start}", Hint: "start date as YYYY-MM-DD"},
	{Path: "/api/v1.0/{start}/{end}", Hint: "start and end dates as YYYY-MM-DD"},
}

func (c *weatherControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &views.IndexData{Routes: indexRoutes}); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.PrecipitationLastYear(r.Context())
	if err != nil {
		writeServiceError(w, r, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, precipitationRecords(rows))
}

func (c *weatherControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		writeServiceError(w, r, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stationRecords(stations))
}

func (c *weatherControllerImpl) handleTemperature(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.TemperatureLastYear(r.Context())
	if err != nil {
		writeServiceError(w, r, "tobs", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temperatureRecords(rows))
}

// handleTemperatureSummary serves both /{start} and /{start}/{end}; PathValue
// returns "" for the missing end.
func (c *weatherControllerImpl) handleTemperatureSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.TemperatureSummary(r.Context(), r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		writeServiceError(w, r, "temperature summary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, temperatureSummaryRecords(rows))
}
