package controller

import (
	"log/slog"
	"net/http"

	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/views"
	"github.com/hanriel/thermal-controller-iot/internal/utils"
)

func (c *climateControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	health := c.service.Health()

	statusText := "Sensor disconnected"
	statusClass := "offline"
	if health.SensorConnected {
		statusText = "Sensor connected"
		statusClass = "online"
	}

	data := views.DashboardData{
		DeviceName:  c.device.Name,
		Location:    c.device.Location,
		StatusText:  statusText,
		StatusClass: statusClass,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.RenderDashboard(w, data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
}

// handleCurrent performs an on-demand read. A read failure still answers 200
// with stats null and the connected flag; a dead sensor is a status, not an
// application error.
func (c *climateControllerImpl) handleCurrent(w http.ResponseWriter, r *http.Request) {
	reading, connected, err := c.service.Current()
	if err != nil {
		slog.Warn("on-demand sensor read failed", "error", err)
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"success":          true,
			"sensor_connected": connected,
			"stats":            nil,
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"sensor_connected": connected,
		"stats":            reading,
	})
}

func (c *climateControllerImpl) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours, err := parseHoursQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := c.service.History(hours)
	if err != nil {
		slog.Error("history query failed", "hours", hours, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func (c *climateControllerImpl) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.service.Health())
}
