package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
)

// TestFromWMOCode verifies the WMO code buckets and the precedence of
// precipitation over wind and wind over fog.
func TestFromWMOCode(t *testing.T) {
	tests := []struct {
		name string
		code int
		wind float64
		want models.WeatherType
	}{
		{"clear sky", 0, 5, models.WeatherClear},
		{"light drizzle", 51, 5, models.WeatherLightRain},
		{"slight rain", 61, 5, models.WeatherLightRain},
		{"rain showers", 80, 5, models.WeatherLightRain},
		{"freezing rain", 66, 5, models.WeatherLightRain},
		{"moderate rain", 63, 5, models.WeatherHeavyRain},
		{"heavy rain", 65, 5, models.WeatherHeavyRain},
		{"violent showers", 82, 5, models.WeatherHeavyRain},
		{"thunderstorm", 95, 5, models.WeatherHeavyRain},
		{"thunderstorm with hail", 99, 5, models.WeatherHeavyRain},
		{"slight snow", 71, 5, models.WeatherSnow},
		{"snow grains", 77, 5, models.WeatherSnow},
		{"snow showers", 86, 5, models.WeatherSnow},
		{"fog", 45, 5, models.WeatherFog},
		{"rime fog", 48, 5, models.WeatherFog},
		{"clear but windy", 0, 30, models.WeatherWindy},
		{"fog loses to wind", 45, 30, models.WeatherWindy},
		{"snow wins over wind", 71, 40, models.WeatherSnow},
		{"rain wins over wind", 63, 40, models.WeatherHeavyRain},
		{"wind at threshold is calm", 0, 25, models.WeatherClear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromWMOCode(tt.code, tt.wind); got != tt.want {
				t.Errorf("FromWMOCode(%d, %v) = %q, want %q", tt.code, tt.wind, got, tt.want)
			}
		})
	}
}

// TestOpenMeteoClient_Current verifies request shape and response mapping
// against a stub server.
func TestOpenMeteoClient_Current(t *testing.T) {
	// Arrange: stub Open-Meteo returning a fixed observation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("path = %q, want /v1/forecast", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("latitude") == "" || q.Get("longitude") == "" {
			t.Error("missing coordinates in query")
		}
		if q.Get("current") != "temperature_2m,weather_code,wind_speed_10m" {
			t.Errorf("current fields = %q", q.Get("current"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":7.6,"weather_code":61,"wind_speed_10m":12.3}}`))
	}))
	defer srv.Close()

	client := NewOpenMeteoClient(srv.URL, 5*time.Second)

	// Act
	obs, err := client.Current(context.Background(), 51.5, -0.13)

	// Assert
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if obs.TemperatureC != 7.6 || obs.WMOCode != 61 || obs.WindSpeedKmh != 12.3 {
		t.Errorf("Current() = %+v, want mapped stub values", obs)
	}
}

// TestOpenMeteoClient_Current_UpstreamError verifies that non-2xx responses
// surface as ErrUpstreamFailure.
func TestOpenMeteoClient_Current_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewOpenMeteoClient(srv.URL, 5*time.Second)

	_, err := client.Current(context.Background(), 51.5, -0.13)
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Errorf("Current() error = %v, want ErrUpstreamFailure", err)
	}
}

type stubClient struct {
	obs Observation
	err error
}

func (s *stubClient) Current(ctx context.Context, lat, lon float64) (Observation, error) {
	return s.obs, s.err
}

// TestService_Snapshot_Live verifies the happy path: live observation mapped
// into a snapshot with local time.
func TestService_Snapshot_Live(t *testing.T) {
	loc, _ := locations.ByID("tokyo")
	svc := NewService(&stubClient{obs: Observation{TemperatureC: 21.4, WMOCode: 0, WindSpeedKmh: 3}}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, time.April, 5, 3, 0, 0, 0, time.UTC) }

	snap := svc.Snapshot(context.Background(), loc)

	if snap.Temperature != 21 {
		t.Errorf("Temperature = %d, want rounded 21", snap.Temperature)
	}
	if snap.Weather != models.WeatherClear {
		t.Errorf("Weather = %q, want Clear", snap.Weather)
	}
	// Tokyo is UTC+9, so 03:00 UTC is noon locally.
	if snap.LocalTime.Hour() != 12 {
		t.Errorf("LocalTime.Hour() = %d, want 12", snap.LocalTime.Hour())
	}
}

// TestService_Snapshot_Special verifies fictional locations use their fixed
// temperature and never call the live client.
func TestService_Snapshot_Special(t *testing.T) {
	loc, _ := locations.ByID("moon_base")
	svc := NewService(&stubClient{err: errors.New("must not be called")}, zap.NewNop())

	snap := svc.Snapshot(context.Background(), loc)

	if snap.Temperature != -173 {
		t.Errorf("Temperature = %d, want -173", snap.Temperature)
	}
}

// TestService_Snapshot_FallsBackToSimulated verifies that an unreachable
// upstream degrades to simulated weather instead of an error.
func TestService_Snapshot_FallsBackToSimulated(t *testing.T) {
	loc, _ := locations.ByID("london")
	svc := NewService(&stubClient{err: errors.New("connection refused")}, zap.NewNop())

	snap := svc.Snapshot(context.Background(), loc)

	if snap.Weather == "" {
		t.Error("simulated snapshot missing weather type")
	}
	if snap.LocalTime.IsZero() {
		t.Error("simulated snapshot missing local time")
	}
}

// TestService_Simulate_Deterministic verifies that simulated weather is stable
// for a city within a day and varies across cities.
func TestService_Simulate_Deterministic(t *testing.T) {
	svc := NewService(&stubClient{}, zap.NewNop())
	london, _ := locations.ByID("london")
	tokyo, _ := locations.ByID("tokyo")
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	a := svc.Simulate(london, at)
	b := svc.Simulate(london, at)
	if a.Weather != b.Weather || a.Temperature != b.Temperature {
		t.Errorf("Simulate not deterministic: %+v vs %+v", a, b)
	}

	sameWeather := true
	for day := 0; day < 30; day++ {
		la := svc.Simulate(london, at.AddDate(0, 0, day))
		to := svc.Simulate(tokyo, at.AddDate(0, 0, day))
		if la.Weather != to.Weather {
			sameWeather = false
			break
		}
	}
	if sameWeather {
		t.Error("different cities produced identical weather for 30 straight days")
	}
}

// TestService_Simulate_NoTropicalSnow verifies that snow never appears in
// low-latitude simulations.
func TestService_Simulate_NoTropicalSnow(t *testing.T) {
	svc := NewService(&stubClient{}, zap.NewNop())
	singapore, _ := locations.ByID("singapore")

	at := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	for day := 0; day < 365; day++ {
		snap := svc.Simulate(singapore, at.AddDate(0, 0, day))
		if snap.Weather == models.WeatherSnow {
			t.Fatalf("simulated snow in the tropics on day %d", day)
		}
	}
}
