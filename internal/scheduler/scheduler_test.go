package scheduler

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

// TestNew_IntervalDefaults verifies the fallback for non-positive intervals.
func TestNew_IntervalDefaults(t *testing.T) {
	tests := []struct {
		name        string
		weather     time.Duration
		refresh     time.Duration
		wantWeather time.Duration
		wantRefresh time.Duration
	}{
		{"zero falls back", 0, 0, DefaultWeatherInterval, DefaultRefreshInterval},
		{"negative falls back", -time.Minute, -time.Minute, DefaultWeatherInterval, DefaultRefreshInterval},
		{"explicit kept", 5 * time.Minute, 10 * time.Minute, 5 * time.Minute, 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, zap.NewNop(), tt.weather, tt.refresh)
			if s.weatherInterval != tt.wantWeather {
				t.Errorf("weatherInterval = %s, want %s", s.weatherInterval, tt.wantWeather)
			}
			if s.refreshInterval != tt.wantRefresh {
				t.Errorf("refreshInterval = %s, want %s", s.refreshInterval, tt.wantRefresh)
			}
		})
	}
}
