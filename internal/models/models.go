package models

import "time"

// WeatherType classifies current conditions into the fixed set of scene
// categories the prompt builder understands.
type WeatherType string

const (
	WeatherClear     WeatherType = "Clear"
	WeatherLightRain WeatherType = "LightRain"
	WeatherHeavyRain WeatherType = "HeavyRain"
	WeatherSnow      WeatherType = "Snow"
	WeatherFog       WeatherType = "Fog"
	WeatherWindy     WeatherType = "Windy"
)

// SpecialWeatherType is the fixed condition of a fictional location. Special
// locations never carry a real WeatherType; their scenes are rendered from one
// of these instead.
type SpecialWeatherType string

const (
	SpecialVacuum   SpecialWeatherType = "Vacuum"
	SpecialDeepSea  SpecialWeatherType = "DeepSea"
	SpecialGasGiant SpecialWeatherType = "GasGiant"
	SpecialGlitch   SpecialWeatherType = "Glitch"
)

// WeatherSnapshot is the current conditions at a location, expressed in the
// location's local time. Snapshots are replaced wholesale on each poll; they
// are never partially updated.
type WeatherSnapshot struct {
	Temperature int         `json:"temperature"`
	Weather     WeatherType `json:"weather"`
	LocalTime   time.Time   `json:"localTime"`
}

// CacheEntry is a generated image persisted under a scene cache key.
// Timestamp is epoch milliseconds of when the image was stored.
type CacheEntry struct {
	ImageURL  string `json:"imageUrl"`
	Timestamp int64  `json:"timestamp"`
}

// Age returns how long ago the entry was written relative to now.
func (e CacheEntry) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// GenerationRequest describes a single image to generate. A zero Seed means
// the client picks a fresh random seed at call time. A zero Model means the
// client uses its preferred model.
type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
	Model          string `json:"model,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
}

// GenerationResult is a successfully generated image. ImageURL is a data URL
// carrying the provider's declared content type.
type GenerationResult struct {
	ImageURL     string `json:"imageUrl"`
	Seed         int64  `json:"seed"`
	Model        string `json:"model"`
	FallbackUsed bool   `json:"fallbackUsed"`
}

// FrameType distinguishes the owner's own window from windows onto connections.
type FrameType string

const (
	FrameSelf       FrameType = "self"
	FrameConnection FrameType = "connection"
)

// Frame is one persisted gallery window: a person or place pinned to a city.
type Frame struct {
	UUID      string    `json:"uuid" db:"uuid"`
	Type      FrameType `json:"type" db:"type"`
	Nickname  string    `json:"nickname" db:"nickname"`
	CityID    string    `json:"cityId" db:"city_id"`
	CreatedAt int64     `json:"createdAt" db:"created_at"`
}

// Profile is the onboarded owner of the gallery.
type Profile struct {
	Name       string `json:"name" db:"name"`
	HomeCityID string `json:"homeCityId" db:"home_city_id"`
}
