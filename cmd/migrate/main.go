// migrate aplica las migraciones goose embebidas en el binario.
//
// Uso: go run ./cmd/migrate -cmd=up|down|status|version|redo|reset [-version=YYYYMMDDHHMMSS]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jhoicas/geststore-api/migrations"
	"github.com/jhoicas/geststore-api/pkg/config"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/migrate"
)

func main() {
	cmd := flag.String("cmd", "up", "comando: "+strings.Join(migrate.Commands, "|"))
	version := flag.String("version", "", "versión destino (YYYYMMDDHHMMSS) para -cmd=version; vacío imprime la actual")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	db, err := migrate.OpenDB(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("abrir base de datos")
	}
	defer db.Close()

	ctx := context.Background()
	log.Info().Str("cmd", *cmd).Msg("migrate listo")

	if *cmd == "version" && *version != "" {
		err = migrate.MigrateToVersion(ctx, db, migrations.FS, migrations.Dir, *version)
	} else {
		err = migrate.Run(ctx, db, migrations.FS, migrations.Dir, *cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "goose %s falló: %v\n", *cmd, err)
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migración completada")
}
