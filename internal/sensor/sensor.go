// Package sensor provides the environment sensor abstraction: a real BME280
// over I2C, and an emulated source producing plausible synthetic readings so
// the same binary runs on machines without the hardware attached.
package sensor

import (
	"log/slog"
	"math"

	"github.com/hanriel/thermal-controller-iot/internal/config"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
)

// Source produces sensor readings. Implementations must be safe for
// concurrent use; the sampling loop and on-demand HTTP reads share one Source.
type Source interface {
	// Read returns one sample timestamped at call time.
	Read() (types.Reading, error)
	// Connected reports whether real hardware is answering.
	Connected() bool
}

// New selects the source once at startup: the BME280 when it responds at the
// configured bus/address, otherwise an emulated source that reports
// disconnected. Hardware absence is a degrade, never a startup failure.
func New(cfg config.SensorConfig, logger *slog.Logger) Source {
	src, err := NewBME280(cfg, logger)
	if err != nil {
		logger.Warn("bme280 unavailable, falling back to emulated readings", "error", err)
		return NewDegradedMock()
	}
	logger.Info("bme280 initialized",
		"i2c_bus", cfg.I2CBus,
		"i2c_address", cfg.I2CAddress,
	)
	return src
}

// altitudeFromPressure derives altitude in meters from station pressure and
// the sea-level reference, both in hPa (international barometric formula).
func altitudeFromPressure(pressureHPa, seaLevelHPa float64) float64 {
	if pressureHPa <= 0 || seaLevelHPa <= 0 {
		return 0
	}
	return 44330.0 * (1.0 - math.Pow(pressureHPa/seaLevelHPa, 1.0/5.255))
}
