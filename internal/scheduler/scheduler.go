// Package scheduler runs the periodic sweeps: the weather poll and the forced
// image refresh.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/frame"
)

const (
	DefaultWeatherInterval = 15 * time.Minute
	DefaultRefreshInterval = 30 * time.Minute
)

// Scheduler owns the background jobs over the frame manager. The weather poll
// regenerates only frames whose scene changed; the refresh job forces every
// frame through the provider so no image outlives its interval.
type Scheduler struct {
	cron            *gocron.Scheduler
	manager         *frame.Manager
	logger          *zap.Logger
	weatherInterval time.Duration
	refreshInterval time.Duration
}

// New creates a scheduler. Non-positive intervals fall back to the defaults.
func New(manager *frame.Manager, logger *zap.Logger, weatherInterval, refreshInterval time.Duration) *Scheduler {
	if weatherInterval <= 0 {
		weatherInterval = DefaultWeatherInterval
	}
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:            cron,
		manager:         manager,
		logger:          logger,
		weatherInterval: weatherInterval,
		refreshInterval: refreshInterval,
	}
}

// Start registers the jobs and launches the scheduler in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(s.weatherInterval).Do(s.pollWeather); err != nil {
		return err
	}
	if _, err := s.cron.Every(s.refreshInterval).Do(s.refreshAll); err != nil {
		return err
	}
	s.cron.StartAsync()
	s.logger.Info("scheduler started",
		zap.Duration("weatherInterval", s.weatherInterval),
		zap.Duration("refreshInterval", s.refreshInterval))
	return nil
}

// Stop halts the scheduler. Running jobs finish; no new runs start.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) pollWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), s.weatherInterval)
	defer cancel()

	start := time.Now()
	s.manager.PollWeather(ctx)
	s.logger.Info("weather poll completed", zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), s.refreshInterval)
	defer cancel()

	start := time.Now()
	s.manager.RefreshAll(ctx)
	s.logger.Info("forced refresh completed", zap.Duration("took", time.Since(start)))
}
