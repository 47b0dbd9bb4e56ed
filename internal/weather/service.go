package weather

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
	"github.com/IbbyMan/citypane/internal/observability"
)

// Service resolves current conditions for a location. Special locations get
// synthesized conditions, real cities get live data, and a failed live fetch
// falls back to plausible simulated weather so a frame never blocks on the
// weather provider.
type Service struct {
	client Client
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a weather service.
func NewService(client Client, logger *zap.Logger) *Service {
	return &Service{client: client, logger: logger, now: time.Now}
}

// Snapshot returns the current conditions for loc. It never returns an error:
// unreachable upstreams degrade to Simulate.
func (s *Service) Snapshot(ctx context.Context, loc locations.Location) models.WeatherSnapshot {
	localTime := loc.LocalTime(s.now())

	if loc.Special {
		return models.WeatherSnapshot{
			Temperature: loc.SpecialTemp,
			Weather:     models.WeatherClear,
			LocalTime:   localTime,
		}
	}

	obs, err := s.client.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		observability.WeatherFetchTotal.WithLabelValues("simulated").Inc()
		s.logger.Warn("weather fetch failed, using simulated conditions",
			zap.String("cityId", loc.ID),
			zap.Error(err))
		return s.Simulate(loc, localTime)
	}

	observability.WeatherFetchTotal.WithLabelValues("success").Inc()
	return models.WeatherSnapshot{
		Temperature: int(math.Round(obs.TemperatureC)),
		Weather:     FromWMOCode(obs.WMOCode, obs.WindSpeedKmh),
		LocalTime:   localTime,
	}
}

// Simulate produces deterministic pseudo-weather for a city. The seed mixes
// city ID and day of year, so a city keeps the same simulated conditions for
// a whole day and different cities diverge.
func (s *Service) Simulate(loc locations.Location, localTime time.Time) models.WeatherSnapshot {
	h := fnv.New64a()
	h.Write([]byte(loc.ID))
	rng := rand.New(rand.NewSource(int64(h.Sum64()) + int64(localTime.YearDay())))

	pool := []models.WeatherType{
		models.WeatherClear, models.WeatherClear, models.WeatherClear, models.WeatherClear,
		models.WeatherLightRain, models.WeatherLightRain,
		models.WeatherHeavyRain,
		models.WeatherWindy,
		models.WeatherFog,
	}
	if math.Abs(loc.Lat) >= 30 {
		pool = append(pool, models.WeatherSnow)
	}
	weather := pool[rng.Intn(len(pool))]

	return models.WeatherSnapshot{
		Temperature: simulateTemperature(loc.Lat, localTime, rng),
		Weather:     weather,
		LocalTime:   localTime,
	}
}

// simulateTemperature models a rough annual cycle by latitude plus a diurnal
// swing peaking mid-afternoon.
func simulateTemperature(lat float64, localTime time.Time, rng *rand.Rand) int {
	// Annual mean cools toward the poles.
	annualMean := 28 - math.Abs(lat)*0.55

	// Seasonal swing, inverted in the southern hemisphere. Day 172 is near
	// the June solstice.
	seasonPhase := 2 * math.Pi * float64(localTime.YearDay()-172) / 365
	seasonAmplitude := math.Abs(lat) * 0.25
	seasonal := seasonAmplitude * math.Cos(seasonPhase)
	if lat < 0 {
		seasonal = -seasonal
	}

	// Diurnal swing peaks around 14:00.
	diurnal := 4 * math.Cos(2*math.Pi*float64(localTime.Hour()-14)/24)

	noise := rng.Float64()*4 - 2
	return int(math.Round(annualMean + seasonal + diurnal + noise))
}
