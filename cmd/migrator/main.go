package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/noah-isme/whenfree-api/pkg/config"
	"github.com/noah-isme/whenfree-api/pkg/database"
	"github.com/noah-isme/whenfree-api/pkg/logger"
)

const (
	migrationUp   = "up"
	migrationDown = "down"
)

func main() {
	var direction, migrationsPath string
	var steps int
	flag.StringVar(&direction, "direction", migrationUp, "up or down")
	flag.StringVar(&migrationsPath, "migrations-path", "migrations", "directory holding the SQL migrations")
	flag.IntVar(&steps, "steps", 0, "apply only this many migrations (0 means all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	m, err := migrate.New("file://"+migrationsPath, database.URL(cfg.Database))
	if err != nil {
		logr.Fatal("failed to open migrations", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, direction, steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logr.Info("no migrations to apply")
			return
		}
		logr.Fatal("migration failed", zap.String("direction", direction), zap.Error(err))
	}

	version, dirty, _ := m.Version()
	logr.Info("migrations applied", zap.String("direction", direction), zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func run(m *migrate.Migrate, direction string, steps int) error {
	switch direction {
	case migrationUp:
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	case migrationDown:
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	}
	return errors.New("direction must be up or down")
}
