package scene

import "github.com/IbbyMan/citypane/internal/models"

// weatherDescription returns the visual fragment for a weather classification.
func weatherDescription(w models.WeatherType) string {
	switch w {
	case models.WeatherClear:
		return "crystal clear sky, brilliant sunshine, warm golden light casting long shadows, vibrant saturated colors, beautiful weather"
	case models.WeatherLightRain:
		return "gentle rain drizzle, wet glistening streets with beautiful reflections, soft grey overcast sky, romantic rainy atmosphere, umbrellas dotting the scene"
	case models.WeatherHeavyRain:
		return "dramatic heavy rainfall, stormy weather, deep puddles reflecting city lights, dark moody clouds, cinematic rain atmosphere, water streaming down"
	case models.WeatherSnow:
		return "magical snowfall, pristine white snow covering rooftops and streets, soft diffused winter light, peaceful snowy atmosphere, frost on windows"
	case models.WeatherFog:
		return "mysterious fog rolling through, ethereal misty atmosphere, soft diffused lighting, dreamlike visibility, romantic hazy scene"
	case models.WeatherWindy:
		return "dynamic windy weather, trees swaying gracefully, leaves dancing in the air, movement and energy in the scene"
	default:
		return "pleasant weather"
	}
}

// windowDetail returns the on-glass fragment for precipitation, or empty when
// the weather leaves the window untouched.
func windowDetail(w models.WeatherType) string {
	switch w {
	case models.WeatherLightRain, models.WeatherHeavyRain:
		return "raindrops on window glass creating beautiful patterns, wet reflections on streets"
	case models.WeatherSnow:
		return "delicate frost crystals on window edges, gentle snowflakes falling"
	default:
		return ""
	}
}

// specialWeatherDescription returns the fixed fragment for a fictional
// location's condition.
func specialWeatherDescription(w models.SpecialWeatherType) string {
	switch w {
	case models.SpecialVacuum:
		return "absolute vacuum of space, no atmosphere, harsh shadows, stark contrast between light and dark, cosmic radiation"
	case models.SpecialGasGiant:
		return "swirling gas storms, ammonia clouds, extreme pressure atmosphere, cosmic winds, diamond rain"
	case models.SpecialDeepSea:
		return "crushing water pressure, bioluminescent creatures, eternal darkness, underwater currents, ancient mystery"
	case models.SpecialGlitch:
		return "digital corruption, data fragments, broken reality, static noise, system malfunction"
	default:
		return ""
	}
}
