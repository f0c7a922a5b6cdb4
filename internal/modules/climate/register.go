package climate

import (
	"net/http"

	"github.com/hanriel/thermal-controller-iot/internal/config"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/controller"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/service"
)

// RegisterFeature mounts the climate module's routes on the mux.
func RegisterFeature(mux *http.ServeMux, svc *service.Service, device config.DeviceConfig) {
	climateController := controller.NewClimateController(svc, device)
	climateController.RegisterRoutes(mux)
}
