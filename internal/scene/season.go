package scene

import (
	"fmt"
	"time"
)

// Season is the resolved season for a latitude and calendar month. Month is
// zero-based (January = 0) to match the cache key format.
type Season struct {
	Name       string
	Month      int
	Hemisphere string
}

// Season names.
const (
	Winter = "Winter"
	Spring = "Spring"
	Summer = "Summer"
	Autumn = "Autumn"
)

// SeasonFor resolves the season at a latitude for a local time. The mapping is
// hemisphere-inverted: December through February is winter in the north and
// summer in the south.
func SeasonFor(lat float64, t time.Time) Season {
	month := int(t.Month()) - 1
	north := lat >= 0
	hemisphere := "Northern"
	if !north {
		hemisphere = "Southern"
	}

	var name string
	switch {
	case month == 11 || month <= 1:
		name = Winter
	case month >= 2 && month <= 4:
		name = Spring
	case month >= 5 && month <= 7:
		name = Summer
	default:
		name = Autumn
	}
	if !north {
		name = invertSeason(name)
	}
	return Season{Name: name, Month: month, Hemisphere: hemisphere}
}

func invertSeason(name string) string {
	switch name {
	case Winter:
		return Summer
	case Summer:
		return Winter
	case Spring:
		return Autumn
	default:
		return Spring
	}
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Detail expands the season into an early/mid/late prompt fragment depending
// on where the month sits inside the 3-month span.
func (s Season) Detail() string {
	monthName := monthNames[s.Month]

	switch s.Name {
	case Spring:
		if s.Month == 2 || s.Month == 8 {
			return fmt.Sprintf("early spring in %s, %s hemisphere, fresh new leaves budding on trees, cherry blossoms and magnolia flowers blooming, soft pastel colors, gentle spring breeze, clear fresh air after winter", monthName, s.Hemisphere)
		}
		if s.Month == 4 || s.Month == 10 {
			return fmt.Sprintf("late spring in %s, %s hemisphere, lush green foliage, colorful flowers in full bloom, warm pleasant weather, vibrant nature, birds singing", monthName, s.Hemisphere)
		}
		return fmt.Sprintf("mid-spring in %s, %s hemisphere, beautiful cherry blossoms sakura, fresh green leaves, spring flowers blooming everywhere, mild warm weather, renewal of nature", monthName, s.Hemisphere)

	case Summer:
		if s.Month == 5 || s.Month == 11 {
			return fmt.Sprintf("early summer in %s, %s hemisphere, bright sunny days, deep green lush trees, warm golden sunlight, clear blue skies, summer beginning", monthName, s.Hemisphere)
		}
		if s.Month == 7 || s.Month == 1 {
			return fmt.Sprintf("late summer in %s, %s hemisphere, intense heat, cicadas singing, deep shadows, some leaves starting to dry, end of summer atmosphere", monthName, s.Hemisphere)
		}
		return fmt.Sprintf("mid-summer in %s, %s hemisphere, hot sunny weather, vibrant green vegetation, intense sunlight, deep blue sky, peak of summer", monthName, s.Hemisphere)

	case Autumn:
		if s.Month == 8 || s.Month == 2 {
			return fmt.Sprintf("early autumn in %s, %s hemisphere, leaves beginning to change color, first hints of golden and orange, cool crisp air, harvest season beginning", monthName, s.Hemisphere)
		}
		if s.Month == 10 || s.Month == 4 {
			return fmt.Sprintf("late autumn in %s, %s hemisphere, most leaves fallen, bare branches visible, cold wind, grey overcast skies, approaching winter", monthName, s.Hemisphere)
		}
		return fmt.Sprintf("mid-autumn in %s, %s hemisphere, beautiful golden red orange maple leaves, peak fall foliage, warm amber tones, cool pleasant weather, romantic autumn atmosphere", monthName, s.Hemisphere)

	case Winter:
		if s.Month == 11 || s.Month == 5 {
			return fmt.Sprintf("early winter in %s, %s hemisphere, first snow possible, bare trees, cold crisp air, holiday season atmosphere, cozy warm lights", monthName, s.Hemisphere)
		}
		if s.Month == 1 || s.Month == 7 {
			return fmt.Sprintf("late winter in %s, %s hemisphere, deep cold, snow on ground, bare branches, hints of spring approaching, end of winter", monthName, s.Hemisphere)
		}
		return fmt.Sprintf("mid-winter in %s, %s hemisphere, cold snowy weather, bare trees covered in frost, white snow blanket, cozy warm interior lights, winter wonderland", monthName, s.Hemisphere)
	}
	return ""
}
