package locations

import (
	"time"

	"github.com/IbbyMan/citypane/internal/models"
)

// Location is one entry of the static city database. IDs are unique and
// stable; they appear verbatim in image cache keys, so renaming an ID
// orphans its cached images.
type Location struct {
	ID             string                    `json:"id"`
	NameEN         string                    `json:"nameEn"`
	NameCN         string                    `json:"nameCn"`
	VisualPrompt   string                    `json:"-"`
	Lat            float64                   `json:"lat"`
	Lon            float64                   `json:"lon"`
	TimezoneOffset float64                   `json:"timezoneOffset"` // hours east of UTC
	Special        bool                      `json:"special,omitempty"`
	SpecialWeather models.SpecialWeatherType `json:"specialWeather,omitempty"`
	SpecialTemp    int                       `json:"specialTemp,omitempty"`
}

// LocalTime converts an instant to the location's wall-clock time using its
// fixed timezone offset.
func (l Location) LocalTime(now time.Time) time.Time {
	return now.UTC().Add(time.Duration(l.TimezoneOffset * float64(time.Hour)))
}

var registry = []Location{
	{ID: "beijing", NameEN: "Beijing", NameCN: "北京", VisualPrompt: "imperial rooftops and hutong alleys beneath modern glass towers, red lanterns", Lat: 39.9, Lon: 116.4, TimezoneOffset: 8},
	{ID: "shanghai", NameEN: "Shanghai", NameCN: "上海", VisualPrompt: "neon-lit Bund skyline across the Huangpu river, art deco facades and futuristic towers", Lat: 31.2, Lon: 121.5, TimezoneOffset: 8},
	{ID: "chengdu", NameEN: "Chengdu", NameCN: "成都", VisualPrompt: "teahouse courtyards and gingko-lined streets, misty basin haze, relaxed street life", Lat: 30.7, Lon: 104.1, TimezoneOffset: 8},
	{ID: "hong-kong", NameEN: "Hong Kong", NameCN: "香港", VisualPrompt: "dense vertical skyline stacked against green peaks, neon signs over narrow streets, harbour ferries", Lat: 22.3, Lon: 114.2, TimezoneOffset: 8},
	{ID: "tokyo", NameEN: "Tokyo", NameCN: "东京", VisualPrompt: "layered cityscape of izakaya alleys and railway crossings, distant Mount Fuji silhouette", Lat: 35.7, Lon: 139.7, TimezoneOffset: 9},
	{ID: "kyoto", NameEN: "Kyoto", NameCN: "京都", VisualPrompt: "wooden machiya townhouses, temple pagodas among maple trees, stone lantern paths", Lat: 35.0, Lon: 135.8, TimezoneOffset: 9},
	{ID: "seoul", NameEN: "Seoul", NameCN: "首尔", VisualPrompt: "hanok rooftops against glass high-rises, mountain backdrop, riverside expressways", Lat: 37.6, Lon: 127.0, TimezoneOffset: 9},
	{ID: "singapore", NameEN: "Singapore", NameCN: "新加坡", VisualPrompt: "tropical garden city, supertrees and marina skyline, shophouse rows in vivid colors", Lat: 1.35, Lon: 103.8, TimezoneOffset: 8},
	{ID: "london", NameEN: "London", NameCN: "伦敦", VisualPrompt: "Victorian terraces and red brick chimneys, the Thames winding past modern spires", Lat: 51.5, Lon: -0.13, TimezoneOffset: 0},
	{ID: "paris", NameEN: "Paris", NameCN: "巴黎", VisualPrompt: "Haussmann boulevards with zinc rooftops, the Eiffel Tower rising over chestnut trees", Lat: 48.9, Lon: 2.35, TimezoneOffset: 1},
	{ID: "reykjavik", NameEN: "Reykjavik", NameCN: "雷克雅未克", VisualPrompt: "colorful corrugated-iron houses under vast northern skies, snow-capped ridges across the bay", Lat: 64.1, Lon: -21.9, TimezoneOffset: 0},
	{ID: "tromso", NameEN: "Tromso", NameCN: "特罗姆瑟", VisualPrompt: "arctic harbour town, wooden houses glowing warm against polar darkness, fjord and cable car", Lat: 69.6, Lon: 18.96, TimezoneOffset: 1},
	{ID: "new-york", NameEN: "New York", NameCN: "纽约", VisualPrompt: "brownstone stoops and fire escapes, steam rising from manhattan avenues, skyscraper canyons", Lat: 40.7, Lon: -74.0, TimezoneOffset: -5},
	{ID: "san-francisco", NameEN: "San Francisco", NameCN: "旧金山", VisualPrompt: "pastel Victorian houses on steep hills, fog rolling over the Golden Gate", Lat: 37.8, Lon: -122.4, TimezoneOffset: -8},
	{ID: "sydney", NameEN: "Sydney", NameCN: "悉尼", VisualPrompt: "harbour sails of the opera house, ferries crossing sparkling water, jacaranda-lined streets", Lat: -33.9, Lon: 151.2, TimezoneOffset: 10},
	{ID: "buenos-aires", NameEN: "Buenos Aires", NameCN: "布宜诺斯艾利斯", VisualPrompt: "belle epoque facades and cobbled barrios, tango bars spilling light onto wide avenues", Lat: -34.6, Lon: -58.4, TimezoneOffset: -3},
	{ID: "ushuaia", NameEN: "Ushuaia", NameCN: "乌斯怀亚", VisualPrompt: "the southernmost city, snowy Martial mountains plunging to the Beagle channel, end-of-the-world harbour", Lat: -54.8, Lon: -68.3, TimezoneOffset: -3},

	{ID: "moon_base", NameEN: "Moon Base", NameCN: "月球基地", VisualPrompt: "lunar research outpost on a grey regolith plain, Earth hanging in the black sky, dome habitats", Special: true, SpecialWeather: models.SpecialVacuum, SpecialTemp: -173},
	{ID: "saturn_ring", NameEN: "Saturn Ring Station", NameCN: "土星环站", VisualPrompt: "orbital station drifting above Saturn's rings, golden cloud bands filling the horizon", Special: true, SpecialWeather: models.SpecialGasGiant, SpecialTemp: -139},
	{ID: "deep_sea", NameEN: "Deep Sea Outpost", NameCN: "深海前哨", VisualPrompt: "abyssal habitat anchored to a trench wall, porthole views of drifting bioluminescent life", Special: true, SpecialWeather: models.SpecialDeepSea, SpecialTemp: 2},
	{ID: "glitch_city", NameEN: "Glitch City", NameCN: "故障之城", VisualPrompt: "half-rendered cityscape dissolving into corrupted geometry, neon wireframes and missing textures", Special: true, SpecialWeather: models.SpecialGlitch, SpecialTemp: 404},
}

var byID = func() map[string]Location {
	m := make(map[string]Location, len(registry))
	for _, l := range registry {
		m[l.ID] = l
	}
	return m
}()

// ByID looks up a location by its stable identifier.
func ByID(id string) (Location, bool) {
	l, ok := byID[id]
	return l, ok
}

// All returns every registered location in registry order.
func All() []Location {
	out := make([]Location, len(registry))
	copy(out, registry)
	return out
}
