package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/internal/database"
	"github.com/bjorkit/backupwatch/internal/repository"
	"github.com/bjorkit/backupwatch/server"
)

func main() {
	app := &cli.App{
		Name:  "backupwatch",
		Usage: "monitors third-party backup services through their e-mail reports",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: runMigrate,
			},
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewConnection(&database.DatabaseConfig{
		Path:     cfg.StoreConfig.Path,
		LogLevel: cfg.StoreConfig.LogLevel,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runMigrate(_ *cli.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(db); err != nil {
		return err
	}
	log.Println("Database migration completed successfully")
	return nil
}

func runServer(_ *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}

	// Schema is kept current on startup as well, so a fresh deployment
	// can skip the explicit migrate step.
	if err := repository.MigrateDB(db); err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, db)
	if err != nil {
		return err
	}
	return srv.Run()
}
