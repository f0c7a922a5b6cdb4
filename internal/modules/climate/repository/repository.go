package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
)

//go:embed sql/insert-measurement.sql
var insertMeasurementSQL string

//go:embed sql/get-recent.sql
var getRecentSQL string

//go:embed sql/get-window.sql
var getWindowSQL string

// MeasurementRepository is the append-only measurement log. Insert is atomic:
// the row is either fully visible to subsequent queries with its id assigned,
// or the call fails and nothing is stored.
type MeasurementRepository interface {
	Insert(r types.Reading) (types.Measurement, error)
	// Recent returns at most limit measurements, most-recent-first.
	Recent(limit int) ([]types.Measurement, error)
	// Window returns all measurements with timestamp >= since, earliest-first.
	Window(since time.Time) ([]types.Measurement, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) MeasurementRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Insert(reading types.Reading) (types.Measurement, error) {
	ts := reading.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	tsStr := ts.UTC().Format(time.RFC3339Nano)

	res, err := r.db.Exec(insertMeasurementSQL, tsStr, reading.Temperature, reading.Humidity, reading.Pressure)
	if err != nil {
		return types.Measurement{}, fmt.Errorf("insert measurement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Measurement{}, fmt.Errorf("measurement id: %w", err)
	}

	return types.Measurement{
		ID:          id,
		Time:        ts,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Pressure:    reading.Pressure,
	}, nil
}

func (r *repositoryImpl) Recent(limit int) ([]types.Measurement, error) {
	rows, err := r.db.Query(getRecentSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close recent rows", "error", err)
		}
	}()
	return scanMeasurements(rows)
}

func (r *repositoryImpl) Window(since time.Time) ([]types.Measurement, error) {
	sinceStr := since.UTC().Format(time.RFC3339Nano)
	rows, err := r.db.Query(getWindowSQL, sinceStr)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close window rows", "error", err)
		}
	}()
	return scanMeasurements(rows)
}

func scanMeasurements(rows *sql.Rows) ([]types.Measurement, error) {
	var out []types.Measurement
	for rows.Next() {
		var m types.Measurement
		var ts string
		if err := rows.Scan(&m.ID, &ts, &m.Temperature, &m.Humidity, &m.Pressure); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			var err2 error
			t, err2 = time.Parse(time.RFC3339, ts)
			if err2 != nil {
				return nil, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
			}
		}
		m.Time = t
		out = append(out, m)
	}
	return out, rows.Err()
}
