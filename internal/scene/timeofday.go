package scene

// Time-of-day buckets. The seven buckets partition the full 24-hour domain
// with no overlap and no gap; regeneration is keyed on the bucket, not the
// raw clock, so an image survives within a bucket.
const (
	Dawn      = "Dawn"      // 05:00-06:59
	Morning   = "Morning"   // 07:00-09:59
	Noon      = "Noon"      // 10:00-13:59
	Afternoon = "Afternoon" // 14:00-16:59
	Dusk      = "Dusk"      // 17:00-18:59
	Evening   = "Evening"   // 19:00-20:59
	Night     = "Night"     // 21:00-04:59
)

// TimeOfDay maps an hour (0-23) to its bucket.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 7:
		return Dawn
	case hour >= 7 && hour < 10:
		return Morning
	case hour >= 10 && hour < 14:
		return Noon
	case hour >= 14 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 19:
		return Dusk
	case hour >= 19 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// timeLighting returns the lighting fragment of the prompt for a bucket.
func timeLighting(timeOfDay string) string {
	switch timeOfDay {
	case Dawn:
		return "magical golden hour dawn, soft pink and orange sunrise painting the sky, first rays of sunlight, warm golden glow on buildings, peaceful morning awakening"
	case Morning:
		return "bright cheerful morning, crystal clear blue sky, fresh morning sunlight streaming through, long soft shadows, energetic start of day"
	case Noon:
		return "brilliant midday sun, vibrant colors under direct sunlight, strong contrast and deep shadows, clear visibility, peak daylight"
	case Afternoon:
		return "warm golden afternoon light, rich amber tones, beautiful long shadows stretching across the scene, relaxed afternoon atmosphere"
	case Dusk:
		return "breathtaking sunset, dramatic orange purple pink sky, sun setting on horizon painting everything in warm colors, city lights beginning to twinkle, magical twilight moment"
	case Evening:
		return "romantic blue hour, deep indigo sky after sunset, city lights glowing warmly, first stars appearing, peaceful evening atmosphere"
	default:
		return "enchanting night scene, starry sky, warm glowing windows and neon signs, city lights twinkling, cozy nighttime atmosphere"
	}
}
