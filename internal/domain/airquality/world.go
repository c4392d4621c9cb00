package airquality

import (
	"context"
	"sort"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
)

const capabilityWorldAQI = "world-aqi"

type worldWire struct {
	Countries []countryWire `json:"countries" validate:"min=15,max=20,dive"`
}

type countryWire struct {
	Name string   `json:"name" validate:"required"`
	AQI  *float64 `json:"aqi" validate:"required,gte=0"`
}

var worldSchema = oracle.Object(map[string]any{
	"countries": oracle.Array("Countries with the AQI of their capital or a major city.", oracle.Object(map[string]any{
		"name": oracle.String("Country name."),
		"aqi":  oracle.Number("Current AQI, non-negative."),
	}), 15, 20),
})

func (s *service) WorldAQI(ctx context.Context) (WorldAQIResult, error) {
	wire, err := oracle.Generate[worldWire](ctx, s.client, s.request(capabilityWorldAQI,
		"You are a global air quality data provider.",
		"List 15 to 20 countries from every continent with realistic current AQI values, mixing very clean and heavily polluted places.",
		worldSchema))
	if err != nil {
		return WorldAQIResult{}, err
	}

	countries := make([]CountryAQI, 0, len(wire.Countries))
	for _, c := range wire.Countries {
		countries = append(countries, CountryAQI{Name: c.Name, AQI: roundAQI(*c.AQI)})
	}
	sort.SliceStable(countries, func(i, j int) bool {
		return countries[i].AQI > countries[j].AQI
	})
	return WorldAQIResult{Countries: countries}, nil
}
