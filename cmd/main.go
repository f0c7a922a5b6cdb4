package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanriel/thermal-controller-iot/internal/app"
	"github.com/hanriel/thermal-controller-iot/internal/config"
	"github.com/hanriel/thermal-controller-iot/internal/logging"
	"github.com/hanriel/thermal-controller-iot/internal/sensor"
)

var version = "dev"

const appName = "thermal-station"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	testSensor := flag.Bool("test-sensor", false, "read the sensor a few times and exit")
	flag.Parse()

	// Load never aborts the process: a bad file falls back to defaults.
	cfg, _ := config.Load(*configPath)

	logger := logging.New(cfg.Logging, version, appName)
	slog.SetDefault(logger)

	if *testSensor {
		runSensorTest(cfg)
		return
	}

	slog.Info("starting",
		"app", appName,
		"version", version,
		"log_level", cfg.Logging.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}

// runSensorTest reads the sensor five times and prints the samples; handy for
// verifying wiring and calibration from a shell.
func runSensorTest(cfg config.Config) {
	source := sensor.New(cfg.Sensor, slog.Default())

	fmt.Println("testing sensor...")
	for i := 1; i <= 5; i++ {
		reading, err := source.Read()
		if err != nil {
			fmt.Printf("reading %d: read failed: %v\n", i, err)
		} else {
			fmt.Printf("reading %d: %.2f °C, %.2f %%, %.2f hPa\n",
				i, reading.Temperature, reading.Humidity, reading.Pressure)
		}
		time.Sleep(2 * time.Second)
	}
	fmt.Printf("sensor connected: %v\n", source.Connected())
}
