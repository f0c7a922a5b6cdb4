package types

import "time"

// Reading is one sample from the environment sensor. Altitude is derived
// from pressure and the configured sea-level reference; it is nil when the
// source cannot provide it.
type Reading struct {
	Time        time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Altitude    *float64  `json:"altitude,omitempty"`
}

// Measurement is a Reading persisted in the store, with the surrogate id
// assigned on insert. Ids are monotonically increasing.
type Measurement struct {
	ID          int64     `json:"id"`
	Time        time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
}
