package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Dialect captures the few SQL differences between the primary MySQL store
// and the SQLite lite mode. Both drivers accept '?' placeholders.
type Dialect struct {
	Name string
	// LockSuffix is appended to SELECTs that must hold a row lock until commit.
	LockSuffix string
	// InsertIgnore is the verb used to insert a row unless its unique key exists.
	InsertIgnore string
	Isolation    sql.IsolationLevel
}

var (
	MySQL = Dialect{
		Name:         "mysql",
		LockSuffix:   " FOR UPDATE",
		InsertIgnore: "INSERT IGNORE",
		Isolation:    sql.LevelSerializable,
	}
	// SQLite serializes writers itself; row locks and isolation levels are not supported.
	SQLite = Dialect{
		Name:         "sqlite",
		InsertIgnore: "INSERT OR IGNORE",
		Isolation:    sql.LevelDefault,
	}
)

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQL, nil
	case "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// TxOptions returns the options every write operation begins its transaction with.
func (d Dialect) TxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: d.Isolation}
}

// Open creates and configures a connection pool for the given driver and DSN,
// then verifies it with a ping.
func Open(ctx context.Context, driver, dsn string, log *zap.Logger) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, Dialect{}, err
	}

	if driver == "sqlite" {
		// An in-memory database lives on a single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		log.Error("database ping failed", zap.String("driver", driver), zap.Error(err))
		return nil, Dialect{}, fmt.Errorf("ping %s: %w", driver, err)
	}

	log.Info("database connection pool established", zap.String("driver", driver))
	return db, dialect, nil
}
