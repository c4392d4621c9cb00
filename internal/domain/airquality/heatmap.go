package airquality

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
)

const capabilityHeatmap = "heatmap"

// Hotspot counts per source type, inclusive.
const (
	minTrafficPoints    = 8
	maxTrafficPoints    = 12
	minIndustrialPoints = 4
	maxIndustrialPoints = 6
)

type heatmapWire struct {
	Points []pointWire `json:"points" validate:"required,dive"`
}

type pointWire struct {
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng    *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Weight *float64 `json:"weight" validate:"required,gte=0,lte=1"`
	Type   string   `json:"type" validate:"required,oneof=traffic industrial"`
}

var heatmapSchema = oracle.Object(map[string]any{
	"points": oracle.Array("Pollution hotspots.", oracle.Object(map[string]any{
		"lat":    oracle.NumberRange("Latitude.", -90, 90),
		"lng":    oracle.NumberRange("Longitude.", -180, 180),
		"weight": oracle.NumberRange("Relative intensity from 0 to 1.", 0, 1),
		"type":   oracle.Enum("Source of the pollution.", string(SourceTraffic), string(SourceIndustrial)),
	}), minTrafficPoints+minIndustrialPoints, maxTrafficPoints+maxIndustrialPoints),
})

func (s *service) Heatmap(ctx context.Context, req HeatmapRequest) (HeatmapResult, error) {
	req.Location = strings.TrimSpace(req.Location)
	if err := oracle.ValidateInput(req); err != nil {
		return HeatmapResult{}, err
	}

	instruction := fmt.Sprintf("Location: %s\n"+
		"Generate %d-%d traffic hotspots at major intersections, highways and congested centres, "+
		"and %d-%d industrial hotspots at industrial areas, power plants or manufacturing zones near the location. "+
		"Weight each point from 0.0 to 1.0 by relative pollution intensity. Coordinates must be plausible for the location.",
		req.Location, minTrafficPoints, maxTrafficPoints, minIndustrialPoints, maxIndustrialPoints)

	wire, err := oracle.Generate[heatmapWire](ctx, s.client, s.request(capabilityHeatmap,
		"You are a GIS expert in urban planning and environmental science.", instruction, heatmapSchema))
	if err != nil {
		return HeatmapResult{}, err
	}

	points := make([]HeatmapPoint, 0, len(wire.Points))
	var traffic, industrial int
	for _, p := range wire.Points {
		kind := SourceType(p.Type)
		if kind == SourceTraffic {
			traffic++
		} else {
			industrial++
		}
		points = append(points, HeatmapPoint{
			Latitude:   *p.Lat,
			Longitude:  *p.Lng,
			Intensity:  *p.Weight,
			SourceType: kind,
		})
	}
	if traffic < minTrafficPoints || traffic > maxTrafficPoints {
		return HeatmapResult{}, oracle.Reject(capabilityHeatmap,
			fmt.Errorf("got %d traffic points, want %d-%d", traffic, minTrafficPoints, maxTrafficPoints))
	}
	if industrial < minIndustrialPoints || industrial > maxIndustrialPoints {
		return HeatmapResult{}, oracle.Reject(capabilityHeatmap,
			fmt.Errorf("got %d industrial points, want %d-%d", industrial, minIndustrialPoints, maxIndustrialPoints))
	}
	return HeatmapResult{Points: points}, nil
}
