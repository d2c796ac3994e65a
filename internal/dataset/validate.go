package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"climate-server/internal/modules/weather/types"
)

var validate = validator.New()

type stationRow struct {
	StationID string  `validate:"required"`
	Name      string  `validate:"required"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	Elevation float64 `validate:"gte=-500,lte=9000"` // meters
}

// Temperatures are degrees Fahrenheit, precipitation inches.
type observationRow struct {
	Station       string   `validate:"required"`
	Precipitation *float64 `validate:"omitempty,gte=0"`
	Temperature   float64  `validate:"gte=-80,lte=140"`
}

func validateStation(s types.Station) error {
	return describe(validate.Struct(stationRow{
		StationID: s.StationID,
		Name:      s.Name,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Elevation: s.Elevation,
	}))
}

func validateObservation(o types.Observation) error {
	return describe(validate.Struct(observationRow{
		Station:       o.Station,
		Precipitation: o.Precipitation,
		Temperature:   o.Temperature,
	}))
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() == "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s %s (got %v)", strings.ToLower(fe.Field()), fe.Tag(), fe.Param(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
