package controller

import (
	"net/http"

	"github.com/hanriel/thermal-controller-iot/internal/config"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/service"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
)

// climateService is what the handlers need from the service layer; tests
// substitute a fake.
type climateService interface {
	Current() (types.Reading, bool, error)
	History(hours int) ([]types.Measurement, error)
	Health() service.Health
}

type climateControllerImpl struct {
	service climateService
	device  config.DeviceConfig
}

func NewClimateController(svc climateService, device config.DeviceConfig) *climateControllerImpl {
	return &climateControllerImpl{service: svc, device: device}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /api/current", c.handleCurrent)
	mux.HandleFunc("GET /api/history", c.handleHistory)
	mux.HandleFunc("GET /api/health", c.handleHealth)
}
