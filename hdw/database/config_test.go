package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hcanalytics/hdw-app/hdw/testUtils"
)

func TestLoadConfig(t *testing.T) {
	restoreURL := testUtils.SetAndRestoreEnvKey("DATABASE_URL", "postgresql://u:p@localhost:5432/hdw")
	defer restoreURL()
	restoreConns := testUtils.SetAndRestoreEnvKey("HDW_DB_MAX_OPEN_CONNS", "7")
	defer restoreConns()

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@localhost:5432/hdw", cfg.DatabaseURL)
	assert.Equal(t, 7, cfg.MaxOpenConns)
	assert.Equal(t, 20, cfg.MaxIdleConns)
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	restore := testUtils.SetAndRestoreEnvKey("DATABASE_URL", "")
	defer restore()

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.EqualError(t, err, "invalid config, DatabaseURL must be set")
}
