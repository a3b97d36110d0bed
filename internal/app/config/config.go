package config

import (
	"qlinme-service/internal/pkg/constvars"
	"qlinme-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		Minio: Minio{
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Username: utils.GetEnvString("MINIO_USERNAME", "minio"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "minio123"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		S3: S3{
			Endpoint:     utils.GetEnvString("AWS_ENDPOINT", "http://localhost:9000"),
			Region:       utils.GetEnvString("AWS_REGION", "us-east-1"),
			AccessKey:    utils.GetEnvString("AWS_ACCESS_KEY", "minio"),
			SecretKey:    utils.GetEnvString("AWS_SECRET_KEY", "minio123"),
			UsePathStyle: utils.GetEnvBool("AWS_PATH_STYLE_ACCESS", true),
		},
		RabbitMQ: RabbitMQ{
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", constvars.AppEnvDevelopment),
			Port:                       utils.GetEnvString("APP_PORT", "7979"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "localhost"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 20),
			ShutdownTimeout:            utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			RequestTimeoutInSeconds:    utils.GetEnvInt("APP_REQUEST_TIMEOUT_IN_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 10),
			BatchLockTTLInSeconds:      utils.GetEnvInt("APP_BATCH_LOCK_TTL_IN_SECONDS", 30),
		},
		FHIR: FHIR{
			BaseUrl:                utils.GetEnvString("FHIR_URL", "http://localhost:8080/fhir"),
			RequestTimeoutInSecond: utils.GetEnvInt("FHIR_REQUEST_TIMEOUT_IN_SECONDS", 15),
			RequestsPerSecond:      utils.GetEnvInt("FHIR_REQUESTS_PER_SECOND", 20),
			Burst:                  utils.GetEnvInt("FHIR_BURST", 20),
		},
		Keycloak: Keycloak{
			Url:                    utils.GetEnvString("KEYCLOAK_URL", "http://localhost:8081"),
			Realm:                  utils.GetEnvString("KEYCLOAK_REALM", "clin"),
			Client:                 utils.GetEnvString("KEYCLOAK_CLIENT", "clin-client"),
			Audience:               utils.GetEnvString("KEYCLOAK_AUDIENCE", "clin-acl"),
			RequestTimeoutInSecond: utils.GetEnvInt("KEYCLOAK_REQUEST_TIMEOUT_IN_SECONDS", 15),
		},
		Security: Security{
			Enabled:      utils.GetEnvBool("SECURITY_ENABLED", true),
			SystemClient: utils.GetEnvString("SECURITY_SYSTEM_CLIENT", "clin-system"),
			Publics:      utils.GetEnvStringSlice("SECURITY_PUBLIC_PATHS", []string{"/actuator/health", "/api/v1/auth/login", "/metrics"}),
		},
		Storage: Storage{
			Driver:              utils.GetEnvString("STORAGE_DRIVER", constvars.StorageDriverMinio),
			BucketName:          utils.GetEnvString("STORAGE_BUCKET_NAME", "cqgc-qa-app-files-import"),
			VCFTimeoutInSeconds: utils.GetEnvInt("STORAGE_VCF_TIMEOUT_IN_SECONDS", 15),
			VCFWorkers:          utils.GetEnvInt("STORAGE_VCF_WORKERS", 8),
		},
		Cache: Cache{
			Driver:                   utils.GetEnvString("CACHE_DRIVER", constvars.CacheDriverStorage),
			MemorySize:               utils.GetEnvInt("CACHE_MEMORY_SIZE", 1024),
			VCFTTLInMinutes:          utils.GetEnvInt("CACHE_VCF_TTL_IN_MINUTES", 24*60),
			ReferenceDataTTLInMinute: utils.GetEnvInt("CACHE_REFERENCE_DATA_TTL_IN_MINUTES", 60),
		},
		Validation: Validation{
			WorkflowVersions: utils.GetEnvStringSlice("VALIDATION_WORKFLOW_VERSIONS", constvars.DefaultWorkflowVersion),
		},
		RabbitMQ: AppRabbitMQ{
			Enabled:    utils.GetEnvBool("APP_RABBITMQ_ENABLED", false),
			Exchange:   utils.GetEnvString("APP_RABBITMQ_EXCHANGE", "qlinme"),
			RoutingKey: utils.GetEnvString("APP_RABBITMQ_ROUTING_KEY", constvars.EventBatchMetadataSaved),
		},
		Metrics: Metrics{
			Enabled: utils.GetEnvBool("METRICS_ENABLED", true),
			Path:    utils.GetEnvString("METRICS_PATH", "/metrics"),
		},
	}
}
