package controller

import (
	"net/http"

	"climate-server/internal/modules/weather/service"
)

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service *service.Service
}

func NewWeatherController(service *service.Service) WeatherController {
	return &weatherControllerImpl{service: service}
}

// RegisterRoutes mounts the climate API. The literal /precipitation, /stations
// and /tobs patterns take precedence over the {start} wildcard.
func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTemperature)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleTemperatureSummary)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleTemperatureSummary)
}
