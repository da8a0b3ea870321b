package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsMissingDatabaseHost(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Host = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadSpillThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.SpillThreshold = 150
	assert.Error(t, cfg.Validate())
}

func TestLoadFromYAML_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  host: 0.0.0.0
  port: 9669
database:
  host: db.internal
  port: 5432
  user: graphd
  dbname: graphd
  sslmode: disable
engine:
  max_connections: 500
  max_query_memory: 134217728
  spill_threshold: 75
  max_sequence_stmts: 100
auth:
  enable_authorize: true
  failed_login_attempts: 5
  default_username: root
  default_password: changeme
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9669, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 500, cfg.Engine.MaxConnections)
	assert.Equal(t, uint32(5), cfg.Auth.FailedLoginAttempts)
}

func TestGetDBConfig(t *testing.T) {
	cfg := DefaultConfig()
	dbCfg := cfg.GetDBConfig()
	assert.Equal(t, cfg.Database.Host, dbCfg.Host)
	assert.Equal(t, cfg.Database.DBName, dbCfg.DBName)
}

func TestAuthConfig_ToAuthConfig(t *testing.T) {
	cfg := DefaultConfig()
	authCfg := cfg.Auth.ToAuthConfig(cfg.Engine.SessionIdleTimeout)
	assert.Equal(t, cfg.Auth.FailedLoginAttempts, authCfg.FailedLoginAttempts)
	assert.Equal(t, uint32(cfg.Engine.SessionIdleTimeout.Seconds()), authCfg.SessionIdleTimeoutSecs)
}
