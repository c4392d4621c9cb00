package airquality

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
)

const capabilityForecast = "forecast"

type forecastWire struct {
	Forecast string       `json:"forecast" validate:"required"`
	Current  *currentWire `json:"current" validate:"required"`
	Lat      *float64     `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon      *float64     `json:"lon" validate:"required,gte=-180,lte=180"`
}

type currentWire struct {
	AQI  *float64 `json:"aqi" validate:"required,gte=0,lte=500"`
	PM25 *float64 `json:"pm25" validate:"required,gte=0"`
	PM10 *float64 `json:"pm10" validate:"required,gte=0"`
	Temp *float64 `json:"temp" validate:"required"`
}

var forecastSchema = oracle.Object(map[string]any{
	"forecast": oracle.String("A detailed 72-hour AQI forecast."),
	"current": oracle.Object(map[string]any{
		"aqi":  oracle.NumberRange("Current overall AQI.", 0, 500),
		"pm25": oracle.Number("Current PM2.5 concentration in µg/m³, non-negative."),
		"pm10": oracle.Number("Current PM10 concentration in µg/m³, non-negative."),
		"temp": oracle.Number("Current temperature in Celsius."),
	}),
	"lat": oracle.NumberRange("Latitude of the location centre.", -90, 90),
	"lon": oracle.NumberRange("Longitude of the location centre.", -180, 180),
})

func (s *service) Forecast(ctx context.Context, req ForecastRequest) (ForecastResult, error) {
	req.Location = strings.TrimSpace(req.Location)
	if err := oracle.ValidateInput(req); err != nil {
		return ForecastResult{}, err
	}

	instruction := fmt.Sprintf("Location: %s\n"+
		"Provide a detailed 72-hour AQI forecast, the current conditions (a realistic overall AQI, PM2.5, PM10 and temperature in Celsius) "+
		"and the approximate latitude and longitude of the centre of the location.", req.Location)

	wire, err := oracle.Generate[forecastWire](ctx, s.client, s.request(capabilityForecast,
		"You are an air quality expert with access to global monitoring data.", instruction, forecastSchema))
	if err != nil {
		return ForecastResult{}, err
	}
	text := strings.TrimSpace(wire.Forecast)
	if text == "" {
		return ForecastResult{}, oracle.Reject(capabilityForecast, errors.New("forecast is blank"))
	}

	s.logger.Info("forecast generated", "location", req.Location, "aqi", *wire.Current.AQI)
	return ForecastResult{
		ForecastText: text,
		Current: Conditions{
			AQI:         roundAQI(*wire.Current.AQI),
			Category:    Category(*wire.Current.AQI),
			PM25:        *wire.Current.PM25,
			PM10:        *wire.Current.PM10,
			Temperature: *wire.Current.Temp,
		},
		Latitude:  *wire.Lat,
		Longitude: *wire.Lon,
	}, nil
}
