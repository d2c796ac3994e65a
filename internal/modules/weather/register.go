package weather

import (
	"database/sql"
	"net/http"

	"climate-server/internal/config"
	"climate-server/internal/modules/weather/controller"
	"climate-server/internal/modules/weather/repository"
	"climate-server/internal/modules/weather/service"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config) {
	weatherRepository := repository.NewRepository(db)
	if cfg.BreakerFailureThreshold > 0 {
		weatherRepository = repository.WithBreaker(weatherRepository, repository.BreakerSettings{
			ConsecutiveFailures: uint32(cfg.BreakerFailureThreshold),
			OpenTimeout:         cfg.BreakerOpenTimeout,
		})
	}
	weatherService := service.NewService(weatherRepository, cfg.QueryTimeout)
	weatherController := controller.NewWeatherController(weatherService)
	weatherController.RegisterRoutes(mux)
}
