// Package service owns the sampling loop and the read/query facade the HTTP
// layer consumes. All sensor and storage faults are contained here: a failed
// cycle is logged and skipped, never propagated.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/repository"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
	"github.com/hanriel/thermal-controller-iot/internal/sensor"
)

// Publisher is the optional telemetry sink for stored readings.
type Publisher interface {
	PublishReading(r types.Reading) error
}

type Service struct {
	repo      repository.MeasurementRepository
	source    sensor.Source
	publisher Publisher
	interval  time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds the service. publisher may be nil when MQTT is disabled.
func New(repo repository.MeasurementRepository, source sensor.Source, publisher Publisher, interval time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		source:    source,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Start launches the background sampling loop. Calling Start while the loop
// is running is a no-op. The loop stops when ctx is cancelled or Stop is
// called.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(loopCtx, s.done)
}

// Stop cancels the loop and waits for the in-flight cycle to drain.
// Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.logger.Info("sampling loop started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sample()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sampling loop stopped")
			return
		case <-ticker.C:
			s.sample()
		}
	}
}

// sample runs one read-and-persist cycle. Failures of either step are logged
// and the cycle is skipped.
func (s *Service) sample() {
	reading, err := s.source.Read()
	if err != nil {
		s.logger.Error("sensor read failed, skipping cycle", "error", err)
		return
	}

	m, err := s.repo.Insert(reading)
	if err != nil {
		s.logger.Error("measurement insert failed, skipping cycle", "error", err)
		return
	}

	s.logger.Debug("measurement stored",
		"id", m.ID,
		"temperature", m.Temperature,
		"humidity", m.Humidity,
	)

	if s.publisher != nil {
		if err := s.publisher.PublishReading(reading); err != nil {
			s.logger.Warn("telemetry publish failed", "error", err)
		}
	}
}

// Current performs an on-demand read. A successful reading is also appended
// to the store, sharing the persistence path with the loop. The connected
// flag is reported even when the read fails.
func (s *Service) Current() (types.Reading, bool, error) {
	connected := s.source.Connected()

	reading, err := s.source.Read()
	if err != nil {
		return types.Reading{}, connected, err
	}

	if _, err := s.repo.Insert(reading); err != nil {
		// The caller still gets the reading; only persistence failed.
		s.logger.Error("store on-demand reading", "error", err)
	}

	return reading, connected, nil
}

// History returns measurements for the requested span. A 1-hour span is a
// true time window; longer spans approximate the window by record count
// (span minutes / sample interval), newest first.
func (s *Service) History(hours int) ([]types.Measurement, error) {
	if hours <= 1 {
		return s.repo.Window(time.Now().Add(-time.Hour))
	}
	intervalSec := int(s.interval / time.Second)
	if intervalSec < 1 {
		intervalSec = 1
	}
	return s.repo.Recent(hours * 60 / intervalSec)
}

// Health reports sensor connectivity and the current server time.
type Health struct {
	Status          string    `json:"status"`
	SensorConnected bool      `json:"sensor_connected"`
	Timestamp       time.Time `json:"timestamp"`
}

func (s *Service) Health() Health {
	return Health{
		Status:          "ok",
		SensorConnected: s.source.Connected(),
		Timestamp:       time.Now(),
	}
}
