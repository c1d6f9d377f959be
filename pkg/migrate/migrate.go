package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Commands soportados por el CLI de migraciones.
var Commands = []string{"up", "down", "status", "version", "redo", "reset"}

// OpenDB abre un *sql.DB sobre el driver pgx (goose trabaja con database/sql).
func OpenDB(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	return stdlib.OpenDB(*cfg), nil
}

// Run ejecuta un comando goose contra las migraciones embebidas en fsys (directorio dir).
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db es obligatorio")
	}
	if !isSupported(command) {
		return fmt.Errorf("comando de migración no soportado: %q", command)
	}
	if err := setup(fsys); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion sube o baja hasta la versión indicada según la versión actual.
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, dir, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("versión inválida %q: %w", targetVersion, err)
	}
	if err := setup(fsys); err != nil {
		return err
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// AutoRun aplica "up" al arrancar la API cuando está habilitado (DB_AUTO_MIGRATE en development).
func AutoRun(ctx context.Context, enabled bool, dsn string, fsys fs.FS, dir string, log *logger.Logger) error {
	if !enabled {
		return nil
	}
	db, err := OpenDB(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Str("dir", dir).Msg("aplicando migraciones goose (auto-migrate)")
	if err := Run(ctx, db, fsys, dir, "up"); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info().Msg("migraciones aplicadas")
	return nil
}

func setup(fsys fs.FS) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

func isSupported(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}
