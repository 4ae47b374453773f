package testutil

import (
	"testing"

	"github.com/kasuganosora/patrolbot/config"
	dbadapter "github.com/kasuganosora/patrolbot/db"
	dbsqlite "github.com/kasuganosora/patrolbot/db/sqlite"
	"github.com/kasuganosora/patrolbot/events"
	"github.com/kasuganosora/patrolbot/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: dbsqlite.MemoryPath,
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestBus creates an in-process bus (no Redis required).
func SetupTestBus(t *testing.T) events.Bus {
	t.Helper()
	bus, err := events.NewBus(events.Config{})
	require.NoError(t, err, "SetupTestBus: NewBus")
	return bus
}
