package airquality

// AQI bands, US EPA naming.
const (
	CategoryGood          = "Good"
	CategoryModerate      = "Moderate"
	CategorySensitive     = "Unhealthy for Sensitive Groups"
	CategoryUnhealthy     = "Unhealthy"
	CategoryVeryUnhealthy = "Very Unhealthy"
	CategoryHazardous     = "Hazardous"
)

// Category names the band an AQI reading falls into. Readings are compared
// unrounded, so 50.4 is already Moderate.
func Category(aqi float64) string {
	switch {
	case aqi <= 50:
		return CategoryGood
	case aqi <= 100:
		return CategoryModerate
	case aqi <= 150:
		return CategorySensitive
	case aqi <= 200:
		return CategoryUnhealthy
	case aqi <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

var colorByCategory = map[string]string{
	CategoryGood:          "green",
	CategoryModerate:      "yellow",
	CategorySensitive:     "orange",
	CategoryUnhealthy:     "red",
	CategoryVeryUnhealthy: "purple",
	CategoryHazardous:     "maroon",
}

// Color is the display colour of a category. Unknown names get the hazardous colour.
func Color(category string) string {
	if c, ok := colorByCategory[category]; ok {
		return c
	}
	return colorByCategory[CategoryHazardous]
}

// HealthAdvice is the recommendation shown next to a category.
type HealthAdvice struct {
	Category string `json:"category"`
	Headline string `json:"headline"`
	Details  string `json:"details"`
}

var adviceByCategory = map[string]HealthAdvice{
	CategoryGood: {
		Headline: "It's a great day to be active outside. Enjoy the fresh air!",
		Details:  "Air quality is satisfactory and air pollution poses little or no risk.",
	},
	CategoryModerate: {
		Headline: "Unusually sensitive people should consider reducing prolonged or heavy exertion.",
		Details:  "Air quality is acceptable, though a very small number of unusually sensitive people may be affected by some pollutants.",
	},
	CategorySensitive: {
		Headline: "Children, older adults and people with heart or lung disease should reduce prolonged outdoor exertion.",
		Details:  "The general public is not likely to be affected at this level.",
	},
	CategoryUnhealthy: {
		Headline: "Everyone may begin to experience health effects. Sensitive groups may experience more serious effects.",
		Details:  "People with respiratory disease such as asthma should avoid prolonged outdoor exertion. Everyone else should limit it.",
	},
	CategoryVeryUnhealthy: {
		Headline: "Health alert: everyone may experience more serious health effects.",
		Details:  "Sensitive groups should avoid all outdoor activity. Everyone else should avoid prolonged or heavy exertion.",
	},
	CategoryHazardous: {
		Headline: "Health warning of emergency conditions. The entire population is likely to be affected.",
		Details:  "Everyone should avoid all outdoor exertion. Stay indoors and keep activity levels low.",
	},
}

// Advice returns the health recommendation for a category name. Unknown names
// get the hazardous advice.
func Advice(category string) HealthAdvice {
	advice, ok := adviceByCategory[category]
	if !ok {
		category = CategoryHazardous
		advice = adviceByCategory[CategoryHazardous]
	}
	advice.Category = category
	return advice
}
