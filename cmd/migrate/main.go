package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/stock-ledger/migrations"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Uso: migrate [up|down|status|version|redo|reset] [args...]
func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Env: "production", Level: "info"}).Fatal().Err(err).Msg("config")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	db, err := sql.Open("pgx", cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("goose: abrir DB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("goose: cerrar DB")
		}
	}()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("goose: dialecto")
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := goose.RunContext(context.Background(), command, db, ".", args...); err != nil {
		log.Error().Err(err).Str("command", command).Msg("goose falló")
		os.Exit(1)
	}
	log.Info().Str("command", command).Msg("goose ok")
}
