package db

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nijaru/yt-sum/errors"
	"github.com/sirupsen/logrus"
)

// Applied to every pooled connection.
const connParams = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the summary history database.
type DB struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Open opens the SQLite database at path, creating its directory when needed,
// and applies pending migrations.
func Open(ctx context.Context, path string, logger *logrus.Logger) (*DB, error) {
	const op = "db.Open"

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, errors.Internal(op, err, "failed to create database directory")
	}

	conn, err := sql.Open("sqlite3", path+connParams)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to open database")
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Internal(op, err, "failed to connect to database")
	}

	if err := migrateUp(conn, path, logger); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{db: conn, logger: logger}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func migrateUp(conn *sql.DB, path string, logger *logrus.Logger) error {
	const op = "db.migrateUp"

	dbInstance, err := sqlite3.WithInstance(conn, &sqlite3.Config{})
	if err != nil {
		return errors.Internal(op, err, "failed to create migration driver")
	}

	srcInstance, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Internal(op, err, "failed to load migrations")
	}

	m, err := migrate.NewWithInstance("iofs", srcInstance, "sqlite3", dbInstance)
	if err != nil {
		return errors.Internal(op, err, "failed to create migrator")
	}

	migrateErr := m.Up()

	fields := logrus.Fields{"path": path}
	version, dirty, versionErr := m.Version()
	if versionErr == nil {
		fields["version"] = version
		fields["dirty"] = dirty
	} else if !stderrors.Is(versionErr, migrate.ErrNilVersion) {
		logger.WithError(versionErr).WithFields(fields).Warn("Failed to fetch migration version")
	}

	if migrateErr != nil {
		if !stderrors.Is(migrateErr, migrate.ErrNoChange) {
			return errors.Internal(op, migrateErr, "failed to apply migrations")
		}
		logger.WithFields(fields).Debug("No migrations to apply")
		return nil
	}

	logger.WithFields(fields).Info("Database migrated")
	return nil
}
