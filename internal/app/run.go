package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hanriel/thermal-controller-iot/internal/config"
	"github.com/hanriel/thermal-controller-iot/internal/db"
	"github.com/hanriel/thermal-controller-iot/internal/httpapi"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/repository"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/service"
	climateviews "github.com/hanriel/thermal-controller-iot/internal/modules/climate/views"
	"github.com/hanriel/thermal-controller-iot/internal/mqtt"
	"github.com/hanriel/thermal-controller-iot/internal/sensor"
)

// Run wires the system together and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"device", cfg.Device.Name,
		"location", cfg.Device.Location,
		"httpAddr", cfg.HTTP.Addr,
		"sqlitePath", cfg.SQLite.Path,
		"i2cBus", cfg.Sensor.I2CBus,
		"i2cAddress", cfg.Sensor.I2CAddress,
		"readInterval", cfg.Sensor.ReadInterval,
		"mqttEnabled", cfg.MQTT.Enabled,
	)

	dbConn, err := db.Open(cfg.SQLite)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := db.Migrate(dbConn); err != nil {
		return err
	}

	if err := climateviews.LoadTemplates(); err != nil {
		return err
	}

	source := sensor.New(cfg.Sensor, slog.Default())
	defer func() {
		if bme, ok := source.(*sensor.BME280); ok {
			if closeErr := bme.Close(); closeErr != nil {
				slog.Error("sensor close", "error", closeErr)
			}
		}
	}()

	// Publish failures degrade to log noise; readings keep flowing to SQLite
	// even with the broker down.
	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher = mqtt.NewPublisher(cfg.MQTT, cfg.Device.Name, slog.Default())
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
		defer publisher.Disconnect()
	}

	repo := repository.NewRepository(dbConn)

	var sink service.Publisher
	if publisher != nil {
		sink = publisher
	}
	svc := service.New(repo, source, sink, cfg.Sensor.ReadIntervalDuration(), slog.Default())
	svc.Start(ctx)
	defer svc.Stop()

	mux := httpapi.NewMux(dbConn)
	climate.RegisterFeature(mux, svc, cfg.Device)

	srv := httpapi.NewServer(cfg.HTTP, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
