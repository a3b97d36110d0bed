package config

import (
	"testing"

	"qlinme-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
)

func TestNewInternalConfig_Defaults(t *testing.T) {
	t.Setenv("SECURITY_ENABLED", "")
	cfg := NewInternalConfig()

	assert.Equal(t, constvars.DefaultWorkflowVersion, cfg.Validation.WorkflowVersions)
	assert.Equal(t, constvars.StorageDriverMinio, cfg.Storage.Driver)
	assert.Contains(t, cfg.Security.Publics, "/actuator/health")
}

func TestNewInternalConfig_FromEnv(t *testing.T) {
	t.Setenv("SECURITY_ENABLED", "false")
	t.Setenv("VALIDATION_WORKFLOW_VERSIONS", "5.0.0, 5.1.0")
	t.Setenv("CACHE_DRIVER", constvars.CacheDriverRedis)
	t.Setenv("KEYCLOAK_URL", "https://auth.example.org")
	t.Setenv("KEYCLOAK_REALM", "clin")

	cfg := NewInternalConfig()

	assert.False(t, cfg.Security.Enabled)
	assert.Equal(t, []string{"5.0.0", "5.1.0"}, cfg.Validation.WorkflowVersions)
	assert.Equal(t, constvars.CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, "https://auth.example.org/realms/clin", cfg.Keycloak.Issuer())
}

func TestNewDriverConfig_FromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis.local")
	t.Setenv("AWS_PATH_STYLE_ACCESS", "false")

	cfg := NewDriverConfig()

	assert.Equal(t, "redis.local", cfg.Redis.Host)
	assert.False(t, cfg.S3.UsePathStyle)
}
