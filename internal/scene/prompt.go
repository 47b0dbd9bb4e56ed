package scene

import (
	"fmt"
	"strings"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
)

// KeyVersion prefixes every cache key. Bump it when the prompt format changes
// so stale images are never served for a new prompt scheme; old-prefix entries
// are left behind as unreachable dead keys.
const KeyVersion = "v15"

// NegativePrompt steers the provider away from common failure modes.
const NegativePrompt = "multiple moons, two moons, double moon, worst quality, blurry, deformed, distorted"

// Key is the discretized scene category a generated image belongs to. Two
// snapshots that resolve to the same Key are equivalent for caching: images
// regenerate across bucket, weather, and season boundaries, never per tick.
// Every field that distinguishes the prompt appears here, and nothing else.
type Key struct {
	LocationID  string
	TimeOfDay   string
	Weather     models.WeatherType
	SeasonName  string
	SeasonMonth int
	Aurora      bool
	Special     bool
}

// String renders the cache key, including the version prefix.
func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%d_aurora%s_special%s",
		KeyVersion, k.LocationID, k.TimeOfDay, k.Weather,
		k.SeasonName, k.SeasonMonth, flag(k.Aurora), flag(k.Special))
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Scene is everything derived from a location and a weather snapshot that the
// generation pipeline needs: the cache identity plus the prompt pair. Given
// identical discretized inputs the output is identical; there is no randomness
// in the wording.
type Scene struct {
	Key            Key
	Prompt         string
	NegativePrompt string
}

// Compose derives the Scene for a location under the given conditions.
//
// Special locations bypass season, weather, and time-of-day descriptors
// entirely: their prompt is built from the location's own visual fragment and
// the fixed description of its special condition, with no aurora and no
// seasonal variation.
func Compose(loc locations.Location, snap models.WeatherSnapshot) Scene {
	timeOfDay := TimeOfDay(snap.LocalTime.Hour())
	season := SeasonFor(loc.Lat, snap.LocalTime)

	if loc.Special {
		key := Key{
			LocationID:  loc.ID,
			TimeOfDay:   timeOfDay,
			Weather:     snap.Weather,
			SeasonName:  season.Name,
			SeasonMonth: season.Month,
			Special:     true,
		}
		prompt := joinFragments(
			"beautiful digital painting",
			loc.VisualPrompt,
			specialWeatherDescription(loc.SpecialWeather),
			"atmospheric perspective, cinematic composition, rich details, sci-fi aesthetic, mysterious otherworldly atmosphere, dramatic lighting",
		)
		return Scene{Key: key, Prompt: prompt}
	}

	aurora := AuroraVisible(loc.Lat, snap.LocalTime)
	key := Key{
		LocationID:  loc.ID,
		TimeOfDay:   timeOfDay,
		Weather:     snap.Weather,
		SeasonName:  season.Name,
		SeasonMonth: season.Month,
		Aurora:      aurora,
	}

	auroraFragment := ""
	if aurora {
		auroraFragment = auroraPrompt(loc.Lat)
	}

	prompt := joinFragments(
		"beautiful digital painting",
		loc.NameEN+" cityscape viewed through a window",
		loc.VisualPrompt,
		timeLighting(timeOfDay),
		season.Detail(),
		weatherDescription(snap.Weather),
		windowDetail(snap.Weather),
		auroraFragment,
		"atmospheric perspective, rich environmental details, cinematic composition, masterful lighting, high quality artwork",
	)
	return Scene{Key: key, Prompt: prompt, NegativePrompt: NegativePrompt}
}

// joinFragments assembles prompt fragments, skipping empties so optional
// details never leave dangling commas.
func joinFragments(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
