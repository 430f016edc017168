package config_test

import (
	"testing"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUDIT_ACTOR_POLICY", "")
	t.Setenv("HASH_MAX_ATTEMPTS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("AUDIT_REPORT_SCHEDULE", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "1337", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, audit.PolicyRequire, cfg.AuditPolicy)
	assert.Equal(t, 3, cfg.HashAttempts)
	assert.Equal(t, "@daily", cfg.ReportSchedule)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUDIT_ACTOR_POLICY", "System")
	t.Setenv("HASH_MAX_ATTEMPTS", "5")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("AUDIT_REPORT_SCHEDULE", "0 6 * * *")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, audit.PolicySystem, cfg.AuditPolicy)
	assert.Equal(t, 5, cfg.HashAttempts)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"policy", "AUDIT_ACTOR_POLICY", "whoever"},
		{"attempts", "HASH_MAX_ATTEMPTS", "0"},
		{"driver", "DB_DRIVER", "mysql"},
		{"schedule", "AUDIT_REPORT_SCHEDULE", "every now and then"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := config.Config{DBUsername: "u", DBPassword: "p", DBHostname: "db:5432", DBName: "images", DBSchema: "register"}
	assert.Equal(t, "postgres://u:p@db:5432/images?search_path=register", cfg.PostgresDSN())
}
