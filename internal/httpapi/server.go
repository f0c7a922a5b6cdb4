package httpapi

import (
	"net/http"

	"github.com/hanriel/thermal-controller-iot/internal/config"
)

func NewServer(cfg config.HTTPConfig, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: requestLogger(mux),
	}
}
