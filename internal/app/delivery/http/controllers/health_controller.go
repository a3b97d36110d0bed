package controllers

import (
	"context"
	"net/http"
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/dto/responses"
	"qlinme-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	Log    *zap.Logger
	Checks map[string]HealthCheck
}

func NewHealthController(logger *zap.Logger, checks map[string]HealthCheck) *HealthController {
	return &HealthController{Log: logger, Checks: checks}
}

// Health answers 200 with UP when every check passes, 503 otherwise.
func (ctrl *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := responses.Health{Status: constvars.ResponseHealthy}
	code := constvars.StatusOK
	if len(ctrl.Checks) > 0 {
		health.Components = make(map[string]string, len(ctrl.Checks))
	}
	for name, check := range ctrl.Checks {
		if err := check(ctx); err != nil {
			ctrl.Log.Warn("HealthController.Health check failed",
				zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(r.Context())),
				zap.String("component", name),
				zap.Error(err),
			)
			health.Components[name] = constvars.ResponseUnhealthy
			health.Status = constvars.ResponseUnhealthy
			code = constvars.StatusServiceUnavailable
			continue
		}
		health.Components[name] = constvars.ResponseHealthy
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
