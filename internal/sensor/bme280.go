package sensor

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/hanriel/thermal-controller-iot/internal/config"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
)

// envSensor is the subset of *bmxx80.Dev the BME280 source needs; tests
// substitute a fake.
type envSensor interface {
	Sense(e *physic.Env) error
}

// BME280 reads a Bosch BME280 over I2C. The mutex is the single exclusive
// access point for the device handle: the sampling loop and on-demand HTTP
// reads both go through it, so bus transactions never interleave.
type BME280 struct {
	mu     sync.Mutex
	dev    envSensor
	bus    i2c.BusCloser
	cfg    config.SensorConfig
	logger *slog.Logger
}

// NewBME280 opens the configured I2C bus and probes the device. Any failure
// is returned to the caller; the factory in New turns it into a degrade.
func NewBME280(cfg config.SensorConfig, logger *slog.Logger) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(strconv.Itoa(cfg.I2CBus))
	if err != nil {
		return nil, fmt.Errorf("i2c bus %d open: %w", cfg.I2CBus, err)
	}

	dev, err := bmxx80.NewI2C(bus, cfg.I2CAddress, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("bme280 at 0x%02x: %w", cfg.I2CAddress, err)
	}

	return &BME280{dev: dev, bus: bus, cfg: cfg, logger: logger}, nil
}

// Read samples the device and applies the configured additive calibration
// offsets per field. Altitude is derived from the compensated pressure.
func (s *BME280) Read() (types.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return types.Reading{}, fmt.Errorf("bme280 sense: %w", err)
	}

	temperature := env.Temperature.Celsius() + s.cfg.TemperatureOffset

	// env.Humidity is fixed point %rH, env.Pressure nano Pascal; 1 hPa = 100 Pa.
	humidity := float64(env.Humidity)/float64(physic.PercentRH) + s.cfg.HumidityOffset
	pressure := float64(env.Pressure)/float64(physic.Pascal)/100.0 + s.cfg.PressureOffset

	altitude := altitudeFromPressure(pressure, s.cfg.SeaLevelPressure)

	return types.Reading{
		Time:        time.Now(),
		Temperature: temperature,
		Humidity:    humidity,
		Pressure:    pressure,
		Altitude:    &altitude,
	}, nil
}

// Connected probes the device with one read.
func (s *BME280) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		s.logger.Debug("bme280 liveness probe failed", "error", err)
		return false
	}
	return true
}

// Close halts the device and releases the I2C bus.
func (s *BME280) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.dev.(*bmxx80.Dev); ok {
		if err := d.Halt(); err != nil {
			s.logger.Warn("bme280 halt", "error", err)
		}
	}
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}
