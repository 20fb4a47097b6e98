package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Connect opens the database, checks it is reachable and creates the users
// and notes tables when they are missing.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	conn, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	if err := Migrate(ctx, conn, driver); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Open returns a configured pool without touching the network.
func Open(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DSN is empty")
	}

	switch driver {
	case DriverMySQL:
		cfg, err := mysqlConfig(dsn)
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "mysql connector")
		}
		conn := sql.OpenDB(connector)
		conn.SetMaxOpenConns(20)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(30 * time.Minute)
		conn.SetConnMaxIdleTime(5 * time.Minute)
		return conn, nil

	case DriverSQLite:
		conn, err := sql.Open(DriverSQLite, sqliteDSN(dsn))
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		// An in-memory database lives and dies with its connection.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
		return conn, nil

	default:
		return nil, errors.Errorf("unsupported driver %q", driver)
	}
}

// mysqlConfig parses dsn and turns on the options the stores rely on.
func mysqlConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse mysql DSN")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
