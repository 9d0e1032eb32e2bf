package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"helmet-store/middleware"
	"helmet-store/services"
	"helmet-store/utils"

	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type dataResponse struct {
	Data interface{} `json:"data"`
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// decodeBody decodes the JSON request body into v. An empty body is accepted
// when optional is set.
func decodeBody(r *http.Request, v interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return utils.NewValidationError("Invalid input")
	}
	return nil
}

func callerFrom(r *http.Request) (services.Caller, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return services.Caller{}, false
	}
	return services.Caller{UserID: claims.Subject, Role: claims.Role}, true
}

// firstNonEmpty returns the first non-empty value. Used to fold legacy field
// names into the canonical ones.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func requestLogger(log *zap.Logger, r *http.Request) *zap.Logger {
	if id := middleware.RequestID(r.Context()); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
