package weather

import "github.com/IbbyMan/citypane/internal/models"

// FromWMOCode buckets a WMO weather interpretation code (plus wind speed in
// km/h) into the coarse weather types the scene composer understands.
// Precipitation codes win over wind, wind over fog.
func FromWMOCode(code int, windSpeedKmh float64) models.WeatherType {
	switch {
	case isSnowCode(code):
		return models.WeatherSnow
	case isHeavyRainCode(code):
		return models.WeatherHeavyRain
	case isLightRainCode(code):
		return models.WeatherLightRain
	case windSpeedKmh > 25:
		return models.WeatherWindy
	case code == 45 || code == 48:
		return models.WeatherFog
	default:
		return models.WeatherClear
	}
}

func isSnowCode(code int) bool {
	switch code {
	case 71, 73, 75, 77, 85, 86:
		return true
	}
	return false
}

func isHeavyRainCode(code int) bool {
	switch code {
	case 63, 65, 81, 82, 95, 96, 99:
		return true
	}
	return false
}

func isLightRainCode(code int) bool {
	switch code {
	case 51, 53, 55, 56, 57, 61, 66, 67, 80:
		return true
	}
	return false
}
