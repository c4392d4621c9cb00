package airquality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/breatheeasy/internal/domain/oracle"
)

type stubOracle struct {
	content string
	err     error
	calls   int
	last    oracle.Request
}

func (s *stubOracle) Complete(_ context.Context, req oracle.Request) (oracle.Completion, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return oracle.Completion{}, s.err
	}
	return oracle.Completion{Content: s.content}, nil
}

type stubCounter struct{ n int }

func (s stubCounter) Count(string) int { return s.n }

func newTestService(o *stubOracle, cfg Config) *service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &service{
		cfg:    cfg,
		client: oracle.NewClient(o, nil, logger),
		tokens: stubCounter{n: 3},
		logger: logger,
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestForecastSuccess(t *testing.T) {
	o := &stubOracle{content: "```json\n" + `{"forecast":"Hazy mornings, clearing by Thursday.","current":{"aqi":142,"pm25":55.5,"pm10":90,"temp":22},"lat":28.6139,"lon":77.209}` + "\n```"}
	svc := newTestService(o, Config{Temperature: 0.2})

	res, err := svc.Forecast(context.Background(), ForecastRequest{Location: "  New Delhi "})
	require.NoError(t, err)
	require.Equal(t, "Hazy mornings, clearing by Thursday.", res.ForecastText)
	require.Equal(t, 142, res.Current.AQI)
	require.Equal(t, 22.0, res.Current.Temperature)
	require.Equal(t, 28.6139, res.Latitude)
	require.Equal(t, CategorySensitive, res.Current.Category)

	require.Equal(t, capabilityForecast, o.last.Capability)
	require.Contains(t, o.last.Instruction, "New Delhi")
	require.Equal(t, float32(0.2), o.last.Temperature)
	require.NotNil(t, o.last.Schema)
}

func TestForecastClassifiesUnroundedAQI(t *testing.T) {
	o := &stubOracle{content: `{"forecast":"Mild haze.","current":{"aqi":50.4,"pm25":12,"pm10":20,"temp":18},"lat":1,"lon":2}`}

	res, err := newTestService(o, Config{}).Forecast(context.Background(), ForecastRequest{Location: "Lyon"})
	require.NoError(t, err)
	require.Equal(t, 50, res.Current.AQI)
	require.Equal(t, CategoryModerate, res.Current.Category)
}

func TestForecastRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"empty":    "",
		"blank":    "   ",
		"too long": strings.Repeat("a", 201),
	}
	for name, location := range tests {
		t.Run(name, func(t *testing.T) {
			o := &stubOracle{}
			_, err := newTestService(o, Config{}).Forecast(context.Background(), ForecastRequest{Location: location})
			require.True(t, oracle.IsValidation(err))
			require.Zero(t, o.calls)
		})
	}
}

func TestForecastRejectsBadAnswers(t *testing.T) {
	tests := map[string]string{
		"aqi out of range": `{"forecast":"x","current":{"aqi":650,"pm25":1,"pm10":1,"temp":20},"lat":1,"lon":1}`,
		"negative pm25":    `{"forecast":"x","current":{"aqi":50,"pm25":-1,"pm10":1,"temp":20},"lat":1,"lon":1}`,
		"missing current":  `{"forecast":"x","lat":1,"lon":1}`,
		"missing temp":     `{"forecast":"x","current":{"aqi":50,"pm25":1,"pm10":1},"lat":1,"lon":1}`,
		"latitude":         `{"forecast":"x","current":{"aqi":50,"pm25":1,"pm10":1,"temp":20},"lat":91,"lon":1}`,
		"aqi as string":    `{"forecast":"x","current":{"aqi":"high","pm25":1,"pm10":1,"temp":20},"lat":1,"lon":1}`,
		"blank forecast":   `{"forecast":"  ","current":{"aqi":50,"pm25":1,"pm10":1,"temp":20},"lat":1,"lon":1}`,
		"not json":         `The air is fine today.`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newTestService(&stubOracle{content: content}, Config{}).Forecast(context.Background(), ForecastRequest{Location: "Paris"})
			require.True(t, oracle.IsSchemaValidation(err), "got %v", err)
		})
	}
}

func TestForecastOracleDown(t *testing.T) {
	_, err := newTestService(&stubOracle{err: errors.New("dial tcp: timeout")}, Config{}).Forecast(context.Background(), ForecastRequest{Location: "Paris"})
	require.True(t, oracle.IsOracleUnavailable(err))
}

func TestChat(t *testing.T) {
	o := &stubOracle{content: `{"response":"Wear an N95 mask outdoors."}`}
	svc := newTestService(o, Config{MaxChatTokens: 10})

	res, err := svc.Chat(context.Background(), ChatRequest{Message: "Should I wear a mask?"})
	require.NoError(t, err)
	require.Equal(t, "Wear an N95 mask outdoors.", res.Response)
	require.Contains(t, o.last.Instruction, "Should I wear a mask?")
}

func TestChatRejectsOverBudgetMessage(t *testing.T) {
	o := &stubOracle{}
	svc := newTestService(o, Config{MaxChatTokens: 2})

	_, err := svc.Chat(context.Background(), ChatRequest{Message: "a long question"})
	require.True(t, oracle.IsValidation(err))
	require.Zero(t, o.calls)

	_, err = svc.Chat(context.Background(), ChatRequest{Message: " "})
	require.True(t, oracle.IsValidation(err))
}

func TestChatRejectsBlankResponse(t *testing.T) {
	_, err := newTestService(&stubOracle{content: `{"response":"   "}`}, Config{}).Chat(context.Background(), ChatRequest{Message: "hi"})
	require.True(t, oracle.IsSchemaValidation(err))
}

func countries(aqis ...int) []map[string]any {
	out := make([]map[string]any, 0, len(aqis))
	for i, aqi := range aqis {
		out = append(out, map[string]any{"name": fmt.Sprintf("Country %02d", i), "aqi": aqi})
	}
	return out
}

func TestWorldAQISortsDescendingStable(t *testing.T) {
	aqis := []int{12, 160, 45, 160, 88, 30, 200, 15, 75, 99, 5, 140, 60, 33, 21}
	o := &stubOracle{content: mustJSON(t, map[string]any{"countries": countries(aqis...)})}

	res, err := newTestService(o, Config{}).WorldAQI(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Countries, len(aqis))
	for i := 1; i < len(res.Countries); i++ {
		require.GreaterOrEqual(t, res.Countries[i-1].AQI, res.Countries[i].AQI)
	}
	require.Equal(t, CountryAQI{Name: "Country 06", AQI: 200}, res.Countries[0])
	require.Equal(t, "Country 01", res.Countries[1].Name)
	require.Equal(t, "Country 03", res.Countries[2].Name)
}

func TestWorldAQIRejectsWrongCount(t *testing.T) {
	o := &stubOracle{content: mustJSON(t, map[string]any{"countries": countries(1, 2, 3)})}
	_, err := newTestService(o, Config{}).WorldAQI(context.Background())
	require.True(t, oracle.IsSchemaValidation(err))
}

func points(traffic, industrial int) []map[string]any {
	out := make([]map[string]any, 0, traffic+industrial)
	for i := 0; i < traffic; i++ {
		out = append(out, map[string]any{"lat": 28.6 + float64(i)/100, "lng": 77.2, "weight": 0.8, "type": "traffic"})
	}
	for i := 0; i < industrial; i++ {
		out = append(out, map[string]any{"lat": 28.5, "lng": 77.1 + float64(i)/100, "weight": 0.4, "type": "industrial"})
	}
	return out
}

func TestHeatmap(t *testing.T) {
	o := &stubOracle{content: mustJSON(t, map[string]any{"points": points(9, 5)})}

	res, err := newTestService(o, Config{}).Heatmap(context.Background(), HeatmapRequest{Location: "New Delhi"})
	require.NoError(t, err)
	require.Len(t, res.Points, 14)
	require.Equal(t, SourceTraffic, res.Points[0].SourceType)
	require.Equal(t, SourceIndustrial, res.Points[13].SourceType)
	require.Equal(t, 0.4, res.Points[13].Intensity)
}

func TestHeatmapRejectsBadAnswers(t *testing.T) {
	badType := points(8, 4)
	badType[0]["type"] = "residential"
	heavy := points(8, 4)
	heavy[2]["weight"] = 1.5

	tests := map[string]any{
		"too few traffic":   map[string]any{"points": points(3, 5)},
		"too many industry": map[string]any{"points": points(10, 7)},
		"unknown type":      map[string]any{"points": badType},
		"weight above one":  map[string]any{"points": heavy},
		"points missing":    map[string]any{},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := newTestService(&stubOracle{content: mustJSON(t, body)}, Config{}).Heatmap(context.Background(), HeatmapRequest{Location: "Lagos"})
			require.True(t, oracle.IsSchemaValidation(err), "got %v", err)
		})
	}
}

func hospitals(names ...string) []map[string]any {
	out := make([]map[string]any, 0, len(names))
	for _, n := range names {
		out = append(out, map[string]any{
			"name": n, "address": n + " Road", "lat": 28.6, "lon": 77.2,
			"distance": "2.1 km", "imageUrl": "https://placehold.co/600x400.png",
		})
	}
	return out
}

func TestNearbyHospitals(t *testing.T) {
	o := &stubOracle{content: mustJSON(t, map[string]any{"hospitals": hospitals("AIIMS", "Safdarjung", "Max", "Apollo", "Fortis")})}

	res, err := newTestService(o, Config{}).NearbyHospitals(context.Background(), Coordinates{Latitude: 28.6139, Longitude: 77.209})
	require.NoError(t, err)
	require.Len(t, res.Hospitals, 5)
	require.Equal(t, "2.1 km", res.Hospitals[0].DistanceLabel)
	require.Contains(t, o.last.Instruction, "28.6139")
}

func TestNearbyHospitalsRejectsDuplicates(t *testing.T) {
	o := &stubOracle{content: mustJSON(t, map[string]any{"hospitals": hospitals("AIIMS", "AIIMS", "Max", "Apollo", "Fortis")})}
	_, err := newTestService(o, Config{}).NearbyHospitals(context.Background(), Coordinates{Latitude: 1, Longitude: 1})
	require.True(t, oracle.IsSchemaValidation(err))
}

func TestNearbyRejectsWhitespaceVariants(t *testing.T) {
	schools := func(names ...string) []map[string]any {
		out := make([]map[string]any, 0, len(names))
		for _, n := range names {
			out = append(out, map[string]any{
				"name": n, "address": "Main St", "lat": 1.3, "lon": 103.8,
				"aqi": 40, "imageUrl": "https://placehold.co/600x400.png",
			})
		}
		return out
	}
	blankAddress := hospitals("AIIMS", "B", "C", "D", "E")
	blankAddress[1]["address"] = "  "

	tests := map[string]map[string]any{
		"hospital padded duplicates": {"hospitals": hospitals("AIIMS", "AIIMS ", " AIIMS", "B", "C")},
		"hospital blank name":        {"hospitals": hospitals("AIIMS", "   ", "B", "C", "D")},
		"hospital blank address":     {"hospitals": blankAddress},
		"school padded duplicates":   {"schools": schools("AIIMS", "AIIMS ", " AIIMS", "B", "C")},
		"school blank name":          {"schools": schools("AIIMS", "\t", "B", "C", "D")},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(&stubOracle{content: mustJSON(t, body)}, Config{})
			var err error
			if _, ok := body["hospitals"]; ok {
				_, err = svc.NearbyHospitals(context.Background(), Coordinates{Latitude: 28.6, Longitude: 77.2})
			} else {
				_, err = svc.NearbySchools(context.Background(), Coordinates{Latitude: 28.6, Longitude: 77.2})
			}
			require.True(t, oracle.IsSchemaValidation(err), "got %v", err)
		})
	}
}

func TestWorldAQIRejectsBlankCountry(t *testing.T) {
	list := countries(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)
	list[4]["name"] = " "
	_, err := newTestService(&stubOracle{content: mustJSON(t, map[string]any{"countries": list})}, Config{}).WorldAQI(context.Background())
	require.True(t, oracle.IsSchemaValidation(err), "got %v", err)
}

func TestNearbyRejectsBadCoordinates(t *testing.T) {
	o := &stubOracle{}
	svc := newTestService(o, Config{})

	_, err := svc.NearbyHospitals(context.Background(), Coordinates{Latitude: 95, Longitude: 0})
	require.True(t, oracle.IsValidation(err))
	_, err = svc.NearbySchools(context.Background(), Coordinates{Latitude: 0, Longitude: -181})
	require.True(t, oracle.IsValidation(err))
	require.Zero(t, o.calls)
}

func TestNearbySchools(t *testing.T) {
	schools := make([]map[string]any, 0, 6)
	for i := 0; i < 6; i++ {
		schools = append(schools, map[string]any{
			"name": fmt.Sprintf("School %d", i), "address": "Main St", "lat": 1.3, "lon": 103.8,
			"aqi": 40.4 + float64(i), "imageUrl": "https://placehold.co/600x400.png",
		})
	}
	o := &stubOracle{content: mustJSON(t, map[string]any{"schools": schools})}

	res, err := newTestService(o, Config{}).NearbySchools(context.Background(), Coordinates{Latitude: 1.3, Longitude: 103.8})
	require.NoError(t, err)
	require.Len(t, res.Schools, 6)
	require.Equal(t, 40, res.Schools[0].LocalAQI)
	require.Equal(t, 45, res.Schools[5].LocalAQI)
}
