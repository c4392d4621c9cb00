package airquality

import (
	"context"
	"fmt"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
)

const (
	capabilityHospitals = "nearby-hospitals"
	capabilitySchools   = "nearby-schools"
)

type hospitalsWire struct {
	Hospitals []hospitalWire `json:"hospitals" validate:"min=5,max=7,unique=Name,dive"`
}

type hospitalWire struct {
	Name     string   `json:"name" validate:"required"`
	Address  string   `json:"address" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon      *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Distance string   `json:"distance" validate:"required"`
	ImageURL string   `json:"imageUrl" validate:"required,url"`
}

type schoolsWire struct {
	Schools []schoolWire `json:"schools" validate:"min=5,max=7,unique=Name,dive"`
}

type schoolWire struct {
	Name     string   `json:"name" validate:"required"`
	Address  string   `json:"address" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon      *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	AQI      *float64 `json:"aqi" validate:"required,gte=0,lte=500"`
	ImageURL string   `json:"imageUrl" validate:"required,url"`
}

func facilityProperties(kind string, extra map[string]any) map[string]any {
	props := map[string]any{
		"name":     oracle.String("Name of the " + kind + ", unique within the list."),
		"address":  oracle.String("Full street address."),
		"lat":      oracle.NumberRange("Latitude.", -90, 90),
		"lon":      oracle.NumberRange("Longitude.", -180, 180),
		"imageUrl": oracle.String("Placeholder image URL, e.g. https://placehold.co/600x400.png."),
	}
	for k, v := range extra {
		props[k] = v
	}
	return oracle.Object(props)
}

var hospitalsSchema = oracle.Object(map[string]any{
	"hospitals": oracle.Array("Nearby hospitals and medical centres.", facilityProperties("hospital", map[string]any{
		"distance": oracle.String("Approximate distance from the user, e.g. '5.2 km'."),
	}), 5, 7),
})

var schoolsSchema = oracle.Object(map[string]any{
	"schools": oracle.Array("Schools within about 5 km.", facilityProperties("school", map[string]any{
		"aqi": oracle.NumberRange("Current AQI at the school.", 0, 500),
	}), 5, 7),
})

func (s *service) NearbyHospitals(ctx context.Context, at Coordinates) (HospitalsResult, error) {
	if err := oracle.ValidateInput(at); err != nil {
		return HospitalsResult{}, err
	}

	instruction := fmt.Sprintf("The user is at latitude %s, longitude %s.\n"+
		"List 5 to 7 real or realistic hospitals and medical centres near this position with name, full address, "+
		"precise coordinates, approximate distance from the user and a placeholder image URL from https://placehold.co.",
		formatCoord(at.Latitude), formatCoord(at.Longitude))

	wire, err := oracle.Generate[hospitalsWire](ctx, s.client, s.request(capabilityHospitals,
		"You are a local emergency services directory.", instruction, hospitalsSchema))
	if err != nil {
		return HospitalsResult{}, err
	}

	out := make([]Hospital, 0, len(wire.Hospitals))
	for _, h := range wire.Hospitals {
		out = append(out, Hospital{
			Name:          h.Name,
			Address:       h.Address,
			Latitude:      *h.Lat,
			Longitude:     *h.Lon,
			DistanceLabel: h.Distance,
			ImageURL:      h.ImageURL,
		})
	}
	return HospitalsResult{Hospitals: out}, nil
}

func (s *service) NearbySchools(ctx context.Context, at Coordinates) (SchoolsResult, error) {
	if err := oracle.ValidateInput(at); err != nil {
		return SchoolsResult{}, err
	}

	instruction := fmt.Sprintf("The user is at latitude %s, longitude %s.\n"+
		"List 5 to 7 real or realistic schools within about 5 km with name, full address, precise coordinates, "+
		"a realistic current AQI at the school and a placeholder image URL from https://placehold.co.",
		formatCoord(at.Latitude), formatCoord(at.Longitude))

	wire, err := oracle.Generate[schoolsWire](ctx, s.client, s.request(capabilitySchools,
		"You are a local directory of schools and environmental data.", instruction, schoolsSchema))
	if err != nil {
		return SchoolsResult{}, err
	}

	out := make([]School, 0, len(wire.Schools))
	for _, sc := range wire.Schools {
		out = append(out, School{
			Name:      sc.Name,
			Address:   sc.Address,
			Latitude:  *sc.Lat,
			Longitude: *sc.Lon,
			LocalAQI:  roundAQI(*sc.AQI),
			ImageURL:  sc.ImageURL,
		})
	}
	return SchoolsResult{Schools: out}, nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
