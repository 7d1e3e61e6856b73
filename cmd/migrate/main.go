package main

import (
	"context"
	"flag"
	"os"

	"github.com/nikkisuraj26/cafe54-timecard/internal/platform/config"
	pg "github.com/nikkisuraj26/cafe54-timecard/internal/platform/db/postgres"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "", "directory containing migration files (defaults to the embedded set)")
	)
	flag.Parse()

	action := pg.MigrateUp
	if flag.NArg() > 0 {
		action = pg.MigrationAction(flag.Arg(0))
	}

	ctx := context.Background()
	log := logger.New().Named("migrate")

	cfg, err := config.Load(ctx, effectiveConfigPath(*configPath))
	if err != nil {
		log.Fatal(ctx, "failed to load config", logger.Error(err))
	}

	var opts []pg.MigratorOption
	if *migrationsDir != "" {
		opts = append(opts, pg.WithSourceDir(*migrationsDir))
	}

	res, err := pg.NewMigrator(cfg.Database.DSN(), opts...).Run(action)
	if err != nil {
		log.Fatal(ctx, "migration failed", logger.String("action", string(action)), logger.Error(err))
	}

	log.Info(ctx, "migration completed",
		logger.String("action", string(action)),
		logger.Any("version", res.Version),
		logger.Bool("dirty", res.Dirty),
		logger.Bool("applied", res.Applied),
	)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}
