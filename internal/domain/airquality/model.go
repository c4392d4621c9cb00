package airquality

// ForecastRequest names the place to forecast.
type ForecastRequest struct {
	Location string `json:"location" validate:"required,max=200"`
}

// Conditions are the current readings at a location. Category is classified
// from the reading before AQI was rounded.
type Conditions struct {
	AQI         int     `json:"aqi"`
	Category    string  `json:"category"`
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	Temperature float64 `json:"temperature"`
}

// ForecastResult is the 72-hour outlook plus current conditions.
type ForecastResult struct {
	ForecastText string     `json:"forecastText"`
	Current      Conditions `json:"current"`
	Latitude     float64    `json:"lat"`
	Longitude    float64    `json:"lon"`
}

// ChatRequest is one stateless question for the assistant.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// CountryAQI is one entry of the world ranking.
type CountryAQI struct {
	Name string `json:"name"`
	AQI  int    `json:"aqi"`
}

// WorldAQIResult is sorted by AQI, worst first.
type WorldAQIResult struct {
	Countries []CountryAQI `json:"countries"`
}

// HeatmapRequest names the place to map.
type HeatmapRequest struct {
	Location string `json:"location" validate:"required,max=200"`
}

// SourceType classifies a pollution hotspot.
type SourceType string

const (
	SourceTraffic    SourceType = "traffic"
	SourceIndustrial SourceType = "industrial"
)

// HeatmapPoint is a weighted pollution hotspot.
type HeatmapPoint struct {
	Latitude   float64    `json:"lat"`
	Longitude  float64    `json:"lng"`
	Intensity  float64    `json:"weight"`
	SourceType SourceType `json:"type"`
}

// HeatmapResult holds traffic and industrial hotspots around a location.
type HeatmapResult struct {
	Points []HeatmapPoint `json:"points"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Hospital is a nearby medical facility.
type Hospital struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"lat"`
	Longitude     float64 `json:"lon"`
	DistanceLabel string  `json:"distance"`
	ImageURL      string  `json:"imageUrl"`
}

// HospitalsResult lists hospitals near a position.
type HospitalsResult struct {
	Hospitals []Hospital `json:"hospitals"`
}

// School is a nearby school with the air quality at its gate.
type School struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	LocalAQI  int     `json:"aqi"`
	ImageURL  string  `json:"imageUrl"`
}

// SchoolsResult lists schools near a position.
type SchoolsResult struct {
	Schools []School `json:"schools"`
}

// Config wires runtime knobs for the capabilities.
type Config struct {
	SystemPrompt  string
	Temperature   float32
	MaxChatTokens int
}
