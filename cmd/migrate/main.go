package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/pitchcraft/internal/config"
	"github.com/JaimeStill/pitchcraft/internal/workflow"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "PITCHCRAFT_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(config.DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error("load .env", "error", err)
		os.Exit(1)
	}

	opts := parseFlags()
	if err := run(opts, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dsn, "dsn", "", "database URL (default: $"+envDSN+", then config.toml)")
	flag.BoolVar(&o.up, "up", false, "apply all up migrations")
	flag.BoolVar(&o.down, "down", false, "revert all migrations")
	flag.IntVar(&o.steps, "steps", 0, "apply N migrations (negative reverts)")
	flag.BoolVar(&o.version, "version", false, "print the current migration version")
	flag.IntVar(&o.force, "force", -1, "force the recorded version without migrating")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			o.forced = true
		}
	})
	return o
}

// resolveDSN prefers the flag, then the environment, then the postgres
// section of the service configuration.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Workflow.Store != workflow.StorePostgres {
		return "", fmt.Errorf("no database URL: pass -dsn, set %s, or configure workflow.store = %q",
			envDSN, workflow.StorePostgres)
	}
	return cfg.Database.Dsn(), nil
}

func run(o options, logger *slog.Logger) error {
	dsn, err := resolveDSN(o.dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch {
	case o.version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("migration version", "version", v, "dirty", dirty)
		return nil
	case o.forced:
		if err := m.Force(o.force); err != nil {
			return fmt.Errorf("force version %d: %w", o.force, err)
		}
		logger.Info("version forced", "version", o.force)
		return nil
	case o.up:
		return apply(logger, "up", m.Up())
	case o.down:
		return apply(logger, "down", m.Down())
	case o.steps != 0:
		return apply(logger, fmt.Sprintf("steps %d", o.steps), m.Steps(o.steps))
	}

	fmt.Fprintln(os.Stderr, "usage: migrate [-dsn URL] -up | -down | -steps N | -version | -force N")
	flag.PrintDefaults()
	return nil
}

func apply(logger *slog.Logger, op string, err error) error {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("no migrations to apply", "op", op)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	default:
		logger.Info("migrations applied", "op", op)
	}
	return nil
}
