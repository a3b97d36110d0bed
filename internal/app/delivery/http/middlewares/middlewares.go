package middlewares

import (
	"qlinme-service/internal/app/config"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/services/shared/metrics"

	"go.uber.org/zap"
)

type Middlewares struct {
	Log            *zap.Logger
	TokenVerifier  contracts.TokenVerifier
	Metrics        *metrics.Metrics
	InternalConfig *config.InternalConfig
}

func NewMiddlewares(logger *zap.Logger, tokenVerifier contracts.TokenVerifier, m *metrics.Metrics, internalConfig *config.InternalConfig) *Middlewares {
	return &Middlewares{
		Log:            logger,
		TokenVerifier:  tokenVerifier,
		Metrics:        m,
		InternalConfig: internalConfig,
	}
}
