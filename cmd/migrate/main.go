package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/secureguard-backend/internal/admins"
	"github.com/angelmondragon/secureguard-backend/pkg/config"
	"github.com/angelmondragon/secureguard-backend/pkg/db"
	"github.com/angelmondragon/secureguard-backend/pkg/logger"
	"github.com/angelmondragon/secureguard-backend/pkg/migrate"
	"github.com/angelmondragon/secureguard-backend/pkg/security"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|reset|seed")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")

	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	resetPassword := flag.Bool("reset-password", false, "reset the initial admin password when it already exists (for seed)")

	flag.Parse()

	// create and validate only touch the filesystem
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "missing -name for create")
			os.Exit(1)
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			fmt.Fprintf(os.Stderr, "goose %s failed: %v\n", *cmd, err)
			os.Exit(1)
		}

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "missing -version for version command")
			os.Exit(1)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fmt.Fprintf(os.Stderr, "goose version migrate failed: %v\n", err)
			os.Exit(1)
		}

	case "reset":
		if cfg.App.IsProd() {
			fmt.Fprintln(os.Stderr, "reset is disabled in production")
			os.Exit(1)
		}
		if err := migrate.Reset(ctx, sqlDB, *dir); err != nil {
			fmt.Fprintf(os.Stderr, "goose reset failed: %v\n", err)
			os.Exit(1)
		}

	case "seed":
		svc, err := admins.NewService(admins.ServiceParams{DB: dbClient, Hasher: security.NewHasher(cfg.Password), Logger: logg})
		requireResource(ctx, logg, "admin service", err)
		result, err := svc.Seed(ctx, admins.SeedRequest{
			Email:    cfg.Bootstrap.AdminEmail,
			Password: cfg.Bootstrap.AdminPassword,
			Name:     cfg.Bootstrap.AdminName,
		}, *resetPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seeding admin failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("admin %s ready (created=%t, admins=%d, supervisors=%d)\n",
			result.Admin.Email, result.Created, result.TotalAdmins, result.TotalSupervisors)

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
