package scene

import (
	"math"
	"time"
)

// AuroraVisible reports whether polar lights belong in the scene. All three
// conditions must hold: |latitude| >= 60, the month falls in the hemisphere's
// aurora season (north: September through March, south: March through
// September), and the local hour is within the night window (21:00-05:00,
// wrapping midnight).
func AuroraVisible(lat float64, t time.Time) bool {
	if math.Abs(lat) < 60 {
		return false
	}

	month := int(t.Month()) - 1
	var inSeason bool
	if lat >= 0 {
		inSeason = month >= 8 || month <= 2
	} else {
		inSeason = month >= 2 && month <= 8
	}
	if !inSeason {
		return false
	}

	hour := t.Hour()
	return hour >= 21 || hour <= 5
}

// auroraPrompt names the correct polar lights for the hemisphere.
func auroraPrompt(lat float64) string {
	if lat >= 0 {
		return "spectacular aurora borealis dancing in the night sky, green and purple northern lights, magical polar lights"
	}
	return "spectacular aurora australis dancing in the night sky, green and purple southern lights, magical polar lights"
}
