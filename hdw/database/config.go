package database

import (
	"errors"

	"github.com/hcanalytics/hdw-app/conf"
	"github.com/hcanalytics/hdw-app/hdw/utils"
)

type Config struct {
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	ConnMaxIdleTime    int

	DatabaseURL string
}

func LoadConfig() (cfg *Config, err error) {
	cfg = &Config{
		MaxOpenConns:       utils.GetEnvInt("HDW_DB_MAX_OPEN_CONNS", 40),
		MaxIdleConns:       utils.GetEnvInt("HDW_DB_MAX_IDLE_CONNS", 20),
		ConnMaxLifetimeMin: utils.GetEnvInt("HDW_DB_CONN_MAX_LIFETIME_MIN", 5),
		ConnMaxIdleTime:    utils.GetEnvInt("HDW_DB_CONN_MAX_IDLE_TIME", 30),
		DatabaseURL:        conf.GetEnv("DATABASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("invalid config, DatabaseURL must be set")
	}

	return cfg, nil
}
