package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  host: 0.0.0.0
  http_port: 8080
  grpc_port: 9090
database:
  host: localhost
  port: 5432
  user: agrirent
  database: agrirent
jwt:
  secret: 0123456789abcdef0123456789abcdef
credentials:
  secret: fedcba9876543210fedcba9876543210
booking:
  timezone: Asia/Kolkata
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Booking.MaxWindowDays)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "agrirent", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.FlagOverdue)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetHTTPAddress())
	assert.Equal(t, "0.0.0.0:9090", cfg.GetGRPCAddress())
	assert.Equal(t, "postgres://agrirent:@localhost:5432/agrirent?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 8181, cfg.Server.HTTPPort)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Short credential secret", strings.Replace(minimalYAML, "fedcba9876543210fedcba9876543210", "short", 1)},
		{"Bad timezone", strings.Replace(minimalYAML, "Asia/Kolkata", "Mars/Olympus", 1)},
		{"Missing grpc port", strings.Replace(minimalYAML, "grpc_port: 9090", "grpc_port: 0", 1)},
		{"Short jwt secret", strings.Replace(minimalYAML, "0123456789abcdef0123456789abcdef", "tiny", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityAccess, GetSecurityLevel("/agrirent.v1.RentalService/SubmitRentalRequest"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("/agrirent.v1.RentalService/ConfirmPickup"))
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/grpc.health.v1.Health/Check"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("/agrirent.v1.RentalService/Unknown"))
}
