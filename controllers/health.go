package controllers

import (
	"context"
	"net/http"

	"helmet-store/utils"

	"go.uber.org/zap"
)

const serviceName = "helmet-store"

func Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"service": serviceName, "status": "ok"})
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports 503 while the store cannot be reached
func Ready(store pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := requestContext(r)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
