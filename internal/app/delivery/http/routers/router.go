package routers

import (
	"net/http"
	"qlinme-service/internal/app/config"
	"qlinme-service/internal/app/delivery/http/controllers"
	"qlinme-service/internal/app/delivery/http/middlewares"
	"qlinme-service/internal/pkg/constvars"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Controllers struct {
	Batch   *controllers.BatchController
	Auth    *controllers.AuthController
	Health  *controllers.HealthController
	Metrics http.Handler
}

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
	accessLog *logrus.Logger,
	middlewares *middlewares.Middlewares,
	ctrls Controllers,
) {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", constvars.HeaderXRequestID},
		ExposedHeaders:   []string{constvars.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))

	router.Use(httprate.LimitByIP(internalConfig.App.MaxRequests, time.Second))

	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging(logger))
	if accessLog != nil {
		router.Use(middlewares.RequestLogger(accessLog))
	}
	router.Use(middlewares.ErrorHandler)
	if internalConfig.Metrics.Enabled {
		router.Use(middlewares.Instrument)
	}
	router.Use(middlewares.BodyLimit)
	router.Use(middlewares.Authenticate)

	router.Get("/actuator/health", ctrls.Health.Health)
	if internalConfig.Metrics.Enabled && ctrls.Metrics != nil {
		router.Method(constvars.MethodGet, internalConfig.Metrics.Path, ctrls.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			attachAuthRoutes(r, ctrls.Auth)
		})
		r.Route("/batch/{batch_id}", func(r chi.Router) {
			attachBatchRoutes(r, middlewares, ctrls.Batch)
		})
	})
}

func attachAuthRoutes(router chi.Router, authController *controllers.AuthController) {
	router.Get("/login", authController.Login)
}

func attachBatchRoutes(router chi.Router, middlewares *middlewares.Middlewares, batchController *controllers.BatchController) {
	router.Use(middlewares.RequireRole(constvars.RoleQlinMe))

	router.Get("/", batchController.GetBatch)
	router.Post("/", batchController.CreateOrUpdateBatch)
	router.Get("/status", batchController.GetBatchStatus)
	router.Get("/history", batchController.ListBatchHistory)
	router.Get("/history/{version}", batchController.GetBatchHistoryVersion)
}
