package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/yigit/taluation/internal/app/migrations"
	"github.com/yigit/taluation/internal/bootstrap"
	"github.com/yigit/taluation/internal/config"
	"github.com/yigit/taluation/internal/db"
	"github.com/yigit/taluation/internal/importer"
	"github.com/yigit/taluation/internal/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:      "import",
		Usage:     "bulk-load a JSON array of records into a table",
		ArgsUsage: "<accounts|classes|evaluations> <file.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"TALUATION_CONFIG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Import failed")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("expected a table name and an input file", 2)
	}
	table, path := c.Args().Get(0), c.Args().Get(1)

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	bootstrap.SetupLogger(cfg)

	database, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := db.Ping(ctx, database); err != nil {
		return err
	}
	if err := migrations.NewMigrator(database, logger.Component("migrator")).Migrate(ctx); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	im := importer.New(database, cfg.Auth.BcryptCost, cfg.Evaluation.MinScore, cfg.Evaluation.MaxScore, logger.Component("importer"))
	count, err := im.Import(ctx, table, file)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Imported %d records\n", count)
	return nil
}
