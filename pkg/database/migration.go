package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

var upMigrationFile = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

// migrateLog routes golang-migrate output through the service logger.
type migrateLog struct {
	logger ectologger.Logger
}

func (l migrateLog) Verbose() bool { return true }

func (l migrateLog) Printf(format string, v ...any) {
	l.logger.Infof(strings.TrimSuffix(format, "\n"), v...)
}

type MigrationConfig struct {
	MigrationFolderPath string
	// Version pins the schema to a version; 0 applies everything.
	Version uint
	// Force marks the schema as being at this version before migrating, clearing a dirty flag.
	Force int
	// AutoRollback forces a dirty schema back to the version it had before a failed run.
	AutoRollback bool
}

type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
}

func NewMigrationService(logger ectologger.Logger, config *MigrationConfig) *MigrationService {
	return &MigrationService{config: config, logger: logger}
}

// MigratePostgres applies the migration folder to the database behind db.
func (ms *MigrationService) MigratePostgres(db *sql.DB, databaseName string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: databaseName})
	if err != nil {
		return errors.Wrap(err, "failed to create postgres migration driver")
	}
	return ms.Migrate(databaseName, driver)
}

func (ms *MigrationService) Migrate(databaseName string, driver migratedb.Driver) error {
	folder, err := ms.folder()
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(folder), databaseName, driver)
	if err != nil {
		return errors.Wrap(err, "failed to create migrate instance")
	}
	m.Log = migrateLog{logger: ms.logger}

	if ms.config.Force != 0 {
		if err := m.Force(ms.config.Force); err != nil {
			return errors.Wrapf(err, "failed to force schema to version %d", ms.config.Force)
		}
	}

	before, _, err := m.Version()
	if err != nil {
		before = 0
	}

	started := time.Now()
	if ms.config.Version != 0 {
		err = m.Migrate(ms.config.Version)
	} else {
		err = m.Up()
	}
	log := ms.logger.WithFields(map[string]any{
		"from_version": before,
		"duration":     time.Since(started).String(),
	})

	switch {
	case err == nil:
		log.Info("Applied database migrations")
		return nil
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("Database schema is up to date")
		return nil
	case strings.Contains(err.Error(), "no migration found for version"):
		// the database is ahead of this build; pin it to the newest migration we ship
		return ms.forceLatest(m, folder, before)
	}

	log.WithError(err).Error("Database migration failed")
	ms.recoverDirty(m, before)
	return errors.Wrap(err, "failed to migrate database")
}

func (ms *MigrationService) folder() (string, error) {
	folder := ms.config.MigrationFolderPath
	if !filepath.IsAbs(folder) {
		abs, err := filepath.Abs(folder)
		if err != nil {
			return "", errors.Wrapf(err, "failed to resolve migration folder %s", folder)
		}
		folder = abs
	}
	if _, err := os.Stat(folder); err != nil {
		return "", errors.Wrapf(err, "migration folder %s does not exist", folder)
	}
	return folder, nil
}

func (ms *MigrationService) forceLatest(m *migrate.Migrate, folder string, current uint) error {
	latest, err := latestVersion(folder)
	if err != nil {
		return err
	}
	ms.logger.Warnf("Schema version %d is unknown to this build, forcing version %d", current, latest)
	if err := m.Force(latest); err != nil {
		return errors.Wrapf(err, "failed to force schema to version %d", latest)
	}
	return nil
}

func (ms *MigrationService) recoverDirty(m *migrate.Migrate, before uint) {
	if !ms.config.AutoRollback {
		return
	}
	version, dirty, err := m.Version()
	if err != nil || !dirty {
		return
	}
	target := int(before)
	if before == 0 && version > 0 {
		target = int(version) - 1
	}
	ms.logger.Warnf("Schema is dirty at version %d, forcing version %d", version, target)
	if err := m.Force(target); err != nil {
		ms.logger.WithError(err).Errorf("Failed to force schema to version %d", target)
	}
}

// latestVersion returns the highest version among the *.up.sql files in folder.
func latestVersion(folder string) (int, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, err
	}

	latest := -1
	for _, entry := range entries {
		match := upMigrationFile.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}
		version, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, err
		}
		if version > latest {
			latest = version
		}
	}
	if latest < 0 {
		return 0, errors.Errorf("no migration files found in %s", folder)
	}
	return latest, nil
}
