// Package sound picks the ambient soundscape for a frame. Sound is presentation
// only: it is derived fresh from location and conditions on every view and is
// never cached alongside the image.
package sound

import (
	"math"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
)

// Ambient track identifiers, matched by the client's audio assets.
const (
	SoundCosmic  = "cosmic"
	SoundWind    = "wind"
	SoundRain    = "rain"
	SoundCityDay = "city_day"
	SoundNature  = "nature_day"
	SoundNight   = "night"
)

// largeCities get street-noise ambience during the day; everywhere else gets
// birdsong and wind-in-trees.
var largeCities = map[string]bool{
	"beijing":       true,
	"shanghai":      true,
	"hong-kong":     true,
	"tokyo":         true,
	"seoul":         true,
	"singapore":     true,
	"london":        true,
	"paris":         true,
	"new-york":      true,
	"san-francisco": true,
	"sydney":        true,
	"buenos-aires":  true,
}

// Select returns the ambient track for a location under the given conditions.
// Priority: special locations, then howling conditions (wind, snow, polar
// latitudes), then rain, then a day/night split.
func Select(loc locations.Location, weather models.WeatherType, localHour int) string {
	if loc.Special {
		return SoundCosmic
	}
	if weather == models.WeatherWindy || weather == models.WeatherSnow || math.Abs(loc.Lat) >= 60 {
		return SoundWind
	}
	if weather == models.WeatherLightRain || weather == models.WeatherHeavyRain {
		return SoundRain
	}
	if localHour >= 6 && localHour < 20 {
		if largeCities[loc.ID] {
			return SoundCityDay
		}
		return SoundNature
	}
	return SoundNight
}
