package db

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/patrolbot/config"
	dbmysql "github.com/kasuganosora/patrolbot/db/mysql"
	dbsqlite "github.com/kasuganosora/patrolbot/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeOff    = ""
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// ErrDisabled is returned by Open when no database is configured.
var ErrDisabled = errors.New("db: recording disabled")

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeOff:
		return nil, ErrDisabled
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
