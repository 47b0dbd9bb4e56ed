package sound

import (
	"testing"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
)

func mustLocation(t *testing.T, id string) locations.Location {
	t.Helper()
	loc, ok := locations.ByID(id)
	if !ok {
		t.Fatalf("unknown city %q", id)
	}
	return loc
}

// TestSelect verifies the selection priority: special, then wind/snow/polar,
// then rain, then the day/night split with the large-city distinction.
func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		city    string
		weather models.WeatherType
		hour    int
		want    string
	}{
		{"special overrides everything", "moon_base", models.WeatherClear, 12, SoundCosmic},
		{"windy", "tokyo", models.WeatherWindy, 12, SoundWind},
		{"snow howls", "tokyo", models.WeatherSnow, 12, SoundWind},
		{"polar latitude howls even when clear", "tromso", models.WeatherClear, 12, SoundWind},
		{"light rain", "tokyo", models.WeatherLightRain, 12, SoundRain},
		{"heavy rain", "tokyo", models.WeatherHeavyRain, 12, SoundRain},
		{"rain beats daytime", "tokyo", models.WeatherHeavyRain, 10, SoundRain},
		{"big city day", "tokyo", models.WeatherClear, 12, SoundCityDay},
		{"small city day", "kyoto", models.WeatherClear, 12, SoundNature},
		{"day starts at six", "tokyo", models.WeatherClear, 6, SoundCityDay},
		{"day ends at nineteen", "tokyo", models.WeatherClear, 19, SoundCityDay},
		{"night starts at twenty", "tokyo", models.WeatherClear, 20, SoundNight},
		{"night at twenty-one", "tokyo", models.WeatherClear, 21, SoundNight},
		{"night before dawn", "kyoto", models.WeatherClear, 3, SoundNight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := mustLocation(t, tt.city)
			if got := Select(loc, tt.weather, tt.hour); got != tt.want {
				t.Errorf("Select(%s, %s, %d) = %q, want %q", tt.city, tt.weather, tt.hour, got, tt.want)
			}
		})
	}
}
