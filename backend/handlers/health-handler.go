package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
)

const apiVersion = "1.0.0"

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Health reports liveness. With a ping func it also reports whether the
// store is reachable, answering 503 when it is not.
func Health(ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Success:   true,
			Message:   "MesaTech API is running",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}
		status := http.StatusOK

		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				logging.Logger.Errorf("Event ID: HEALTH_CHECK_FAILED, Description: store ping failed: %v", err)
				resp.Success = false
				resp.Message = "Database unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		utils.WriteJSON(w, status, resp)
	}
}

func Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the MesaTech API",
		"version": apiVersion,
		"docs":    "/api/health",
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "Route not found")
}
