package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
)

const (
	mockBaseTemperature = 22.0
	mockBaseHumidity    = 45.0
	mockBasePressure    = 1013.25
	mockBaseAltitude    = 100.0
)

// Mock synthesizes plausible readings from a time-of-day model with bounded
// uniform jitter: cooler at night (02-06h), warmer in the afternoon (12-16h).
// Read never fails.
type Mock struct {
	mu        sync.Mutex
	rng       *rand.Rand
	now       func() time.Time
	connected bool
}

// NewMock returns an emulated source that reports itself connected; used for
// development and tests that want synthetic data on purpose.
func NewMock() *Mock {
	return &Mock{
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
		connected: true,
	}
}

// NewDegradedMock returns the same emulated source but reporting
// disconnected; it backs the system when BME280 init fails.
func NewDegradedMock() *Mock {
	m := NewMock()
	m.connected = false
	return m
}

func (m *Mock) Read() (types.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	var variation float64
	switch hour := now.Hour(); {
	case hour >= 2 && hour <= 6:
		variation = -3.0
	case hour >= 12 && hour <= 16:
		variation = 3.0
	}

	temperature := round2(mockBaseTemperature + variation + m.uniform(-0.5, 0.5))
	humidity := round2(mockBaseHumidity + m.uniform(-5, 5))
	pressure := round2(mockBasePressure + m.uniform(-10, 10))
	altitude := round2(mockBaseAltitude + m.uniform(-10, 10))

	return types.Reading{
		Time:        now,
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
		Altitude:    &altitude,
	}, nil
}

func (m *Mock) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *Mock) uniform(lo, hi float64) float64 {
	return lo + m.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
