package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"qlinme-service/internal/app/config"
	"qlinme-service/internal/app/contracts"
	"qlinme-service/internal/app/delivery/http/controllers"
	"qlinme-service/internal/app/delivery/http/middlewares"
	"qlinme-service/internal/app/delivery/http/routers"
	"qlinme-service/internal/app/drivers/database"
	"qlinme-service/internal/app/drivers/logger"
	"qlinme-service/internal/app/drivers/messaging"
	storageDriver "qlinme-service/internal/app/drivers/storage"
	"qlinme-service/internal/app/services/auth"
	"qlinme-service/internal/app/services/batch"
	"qlinme-service/internal/app/services/fhir"
	"qlinme-service/internal/app/services/shared/cache"
	"qlinme-service/internal/app/services/shared/eventqueue"
	"qlinme-service/internal/app/services/shared/jwtmanager"
	"qlinme-service/internal/app/services/shared/locker"
	"qlinme-service/internal/app/services/shared/metrics"
	"qlinme-service/internal/app/services/shared/redis"
	"qlinme-service/internal/app/services/shared/storage"
	"qlinme-service/internal/app/services/validation"
	"qlinme-service/internal/pkg/constvars"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)

	redisClient := database.NewRedisClient(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := config.Bootstrap{
		Router:         chiRouter,
		Redis:          redisClient,
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}
	if internalConfig.RabbitMQ.Enabled {
		bootstrap.RabbitMQ = messaging.NewRabbitMQ(driverConfig)
	}

	bootstrapingTheApp(bootstrap)

	server := &http.Server{
		Addr:              ":" + internalConfig.App.Port,
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Error("Error releasing drivers", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap config.Bootstrap) {
	cfg := bootstrap.InternalConfig
	log := bootstrap.Logger

	var appMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		appMetrics = metrics.NewMetrics()
	}

	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockerService(redisRepository, log)

	// Storage
	objectStorage := newObjectStorage(bootstrap)
	batchStorage := storage.NewBatchStore(objectStorage, log)

	backends := cache.Backends{
		Storage:    objectStorage,
		Redis:      redisRepository,
		MemorySize: cfg.Cache.MemorySize,
	}
	vcfCache := cache.NewTimedCache(cfg.Cache.Driver, constvars.CacheNameVCF,
		time.Duration(cfg.Cache.VCFTTLInMinutes)*time.Minute, backends, log, appMetrics)
	referenceCache := cache.NewTimedCache(cfg.Cache.Driver, constvars.CacheNameReferenceData,
		time.Duration(cfg.Cache.ReferenceDataTTLInMinute)*time.Minute, backends, log, appMetrics)

	// Reference data
	fhirClient := fhir.NewReferenceFhirClient(
		cfg.FHIR.BaseUrl,
		time.Duration(cfg.FHIR.RequestTimeoutInSecond)*time.Second,
		cfg.FHIR.RequestsPerSecond,
		cfg.FHIR.Burst,
		log,
		appMetrics,
	)
	referenceData := fhir.NewReferenceDataService(fhirClient, referenceCache, cfg.Validation.WorkflowVersions, log)

	// Validation
	extractor := validation.NewVCFAliquotExtractor(objectStorage, vcfCache,
		time.Duration(cfg.Storage.VCFTimeoutInSeconds)*time.Second, log)

	// Events
	var publisher contracts.BatchEventPublisher = eventqueue.NewNoopPublisher(log)
	if bootstrap.RabbitMQ != nil {
		amqpPublisher, err := eventqueue.NewBatchEventPublisher(bootstrap.RabbitMQ, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey, log)
		if err != nil {
			log.Fatal("Failed to open the batch event channel", zap.Error(err))
		}
		publisher = amqpPublisher
	}

	// Batch
	batchUsecase := batch.NewBatchUsecase(batch.Dependencies{
		BatchStorage:      batchStorage,
		ReferenceData:     referenceData,
		MetadataValidator: validation.NewMetadataValidator(log, appMetrics),
		FilesValidator:    validation.NewFilesValidator(log, appMetrics),
		VCFsValidator:     validation.NewVCFsValidator(extractor, cfg.Storage.VCFWorkers, log, appMetrics),
		Locker:            lockerService,
		Publisher:         publisher,
	}, time.Duration(cfg.App.BatchLockTTLInSeconds)*time.Second, log)

	// Auth
	keycloakTimeout := time.Duration(cfg.Keycloak.RequestTimeoutInSecond) * time.Second
	authUsecase := auth.NewAuthUsecase(cfg.Keycloak.Issuer(), cfg.Keycloak.Client, cfg.Keycloak.Audience, keycloakTimeout, log)
	tokenVerifier := jwtmanager.NewJWKSVerifier(cfg.Keycloak.Issuer(), cfg.Keycloak.Audience, cfg.Security.SystemClient, keycloakTimeout, log)

	// Delivery
	requestTimeout := time.Duration(cfg.App.RequestTimeoutInSeconds) * time.Second
	healthChecks := map[string]controllers.HealthCheck{
		"redis": func(ctx context.Context) error {
			return bootstrap.Redis.Ping(ctx).Err()
		},
	}
	ctrls := routers.Controllers{
		Batch:  controllers.NewBatchController(log, batchUsecase, requestTimeout),
		Auth:   controllers.NewAuthController(log, authUsecase, requestTimeout),
		Health: controllers.NewHealthController(log, healthChecks),
	}
	if appMetrics != nil {
		ctrls.Metrics = appMetrics.Handler()
	}

	mw := middlewares.NewMiddlewares(log, tokenVerifier, appMetrics, cfg)
	routers.SetupRoutes(bootstrap.Router, cfg, log, logger.NewLogrusLogger(cfg), mw, ctrls)
}

func newObjectStorage(bootstrap config.Bootstrap) contracts.ObjectStorage {
	cfg := bootstrap.InternalConfig
	switch cfg.Storage.Driver {
	case constvars.StorageDriverS3:
		return storage.NewS3Storage(storageDriver.NewS3(context.Background(), bootstrap.DriverConfig), cfg.Storage.BucketName, bootstrap.Logger)
	case constvars.StorageDriverMemory:
		bootstrap.Logger.Warn("Using in-process object storage, nothing survives a restart")
		return storage.NewMemoryStorage()
	default:
		return storage.NewMinioStorage(storageDriver.NewMinio(bootstrap.DriverConfig), cfg.Storage.BucketName, bootstrap.Logger)
	}
}
