package api

import (
	"net/http"
	"os"
	"time"

	"github.com/snarg/clipcast/internal/pronounce"
	"github.com/snarg/clipcast/internal/transcode"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	converter *transcode.Converter
	clipDir   string
	yandexOK  bool
	version   string
	startTime time.Time
}

func NewHealthHandler(converter *transcode.Converter, clipDir string, yandexConfigured bool, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		converter: converter,
		clipDir:   clipDir,
		yandexOK:  yandexConfigured,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	// Clip store check: nothing works if the directory rejects writes.
	if err := writableDir(h.clipDir); err != nil {
		checks["clip_dir"] = "error"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["clip_dir"] = "ok"
	}

	// Converter check
	if h.converter.Available() {
		checks["converter"] = "ok"
	} else {
		checks["converter"] = "missing"
		if status == "healthy" {
			status = "degraded"
		}
	}

	// Host-dependent backends are informational; their absence is a normal
	// deployment state, not a fault.
	if pronounce.SayAvailable() {
		checks["say"] = "ok"
	} else {
		checks["say"] = "not_available"
	}
	if h.yandexOK {
		checks["yandex"] = "ok"
	} else {
		checks["yandex"] = "not_configured"
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}

func writableDir(dir string) error {
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
