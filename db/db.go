package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/letsco/splithub/lib/service"
	"github.com/letsco/splithub/lib/store"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	sqltrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/database/sql"
)

const boltScheme = "bolt://"

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.HasPrefix(dsn, "unix://")
}

func Open(config *service.Config) (*bun.DB, error) {
	var db *bun.DB
	dsn := config.DatabaseUri
	switch {
	case isPostgres(dsn):
		var dbConn *sql.DB
		//if Datadog is configured, send sql traces there
		if config.DatadogAgentUrl != "" {
			sqltrace.Register("postgres", pgdriver.Driver{}, sqltrace.WithServiceName("splithub"))
			dbConn = sqltrace.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		} else {
			dbConn = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		}
		db = bun.NewDB(dbConn, pgdialect.New())
		db.SetMaxOpenConns(config.DatabaseMaxConns)
		db.SetMaxIdleConns(config.DatabaseMaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(config.DatabaseConnMaxLifetime) * time.Second)
	default:
		return nil, fmt.Errorf("invalid database connection string %s, only (postgres|postgresql|unix):// is supported", dsn)
	}

	db.AddQueryHook(bundebug.NewQueryHook(
		// disable the hook
		bundebug.WithEnabled(false),
		// BUNDEBUG=1 logs failed queries
		// BUNDEBUG=2 logs all queries
		bundebug.FromEnv("BUNDEBUG"),
	))

	return db, nil
}

// OpenStore returns the ledger store for the configured DATABASE_URI:
// postgres through bun, or an embedded bolt file for bolt://<path>.
// The returned bun.DB is nil for bolt and must be migrated by the caller otherwise.
func OpenStore(config *service.Config) (store.Store, *bun.DB, error) {
	dsn := config.DatabaseUri
	if strings.HasPrefix(dsn, boltScheme) {
		s, err := store.OpenBolt(strings.TrimPrefix(dsn, boltScheme))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
	dbConn, err := Open(config)
	if err != nil {
		return nil, nil, err
	}
	return store.NewBunStore(dbConn), dbConn, nil
}
