package db_test

import (
	"testing"

	"app/internal/config"
	"app/internal/infra/db"

	"github.com/stretchr/testify/assert"
)

func TestDSN_BuildsFromConfig(t *testing.T) {
	cfg := config.Config{
		PostgresHost:     "db.example.com",
		PostgresPort:     5433,
		PostgresUser:     "shop",
		PostgresPassword: "secret",
		PostgresDB:       "orders",
	}

	got := db.DSN(cfg)
	assert.Equal(t, "host=db.example.com port=5433 user=shop password=secret dbname=orders sslmode=disable", got)
}
