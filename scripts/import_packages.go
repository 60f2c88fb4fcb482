package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type PackagesFile struct {
	Packages []models.EventPackage `yaml:"packages"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		packagesPath = flag.String("packages", "configs/packages.yaml", "path to packages.yaml")
		dbPath       = flag.String("db", "./data/slotbook.db", "path to sqlite db")
		dryRun       = flag.Bool("dry-run", false, "validate the file without writing")
	)
	flag.Parse()

	data, err := os.ReadFile(*packagesPath)
	if err != nil {
		return fmt.Errorf("read packages: %w", err)
	}
	var file PackagesFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse packages: %w", err)
	}
	if len(file.Packages) == 0 {
		return fmt.Errorf("no packages in yaml")
	}
	if err = config.ValidatePackages(file.Packages); err != nil {
		return err
	}
	if *dryRun {
		fmt.Printf("ok: %d package(s)\n", len(file.Packages))
		return nil
	}

	db, err := database.Open(database.DriverSQLite, *dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	before, err := db.ListPackages(ctx)
	if err != nil {
		return fmt.Errorf("list packages: %w", err)
	}
	if err = db.ReplacePackages(ctx, file.Packages); err != nil {
		return fmt.Errorf("replace packages: %w", err)
	}

	fmt.Printf("done: replaced=%d imported=%d\n", len(before), len(file.Packages))
	return nil
}
