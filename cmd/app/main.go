package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/namsral/flag"

	"github.com/daniilsolovey/sitecontent/config"
	_ "github.com/daniilsolovey/sitecontent/docs"
	"github.com/daniilsolovey/sitecontent/internal/app"
	"github.com/daniilsolovey/sitecontent/internal/auth"
)

var (
	flConfig        = flag.String("config", "config.toml", "path to TOML configuration file")
	flDebug         = flag.Bool("debug", false, "enable debug mode")
	flAdminPassword = flag.String("admin-password", "", "shared admin password, overrides auth.password (ADMIN_PASSWORD)")
	flHashPassword  = flag.String("hash-password", "", "print the bcrypt hash of the given password for auth.password_hash and exit")
	lg              *slog.Logger
)

// @title Site Content API
// @version 1.0
// @description Content store for the articles and interviews of the corporate site
// @host localhost:3000
// @BasePath /

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	flag.Parse()

	lg = newLogger(*flDebug)

	if *flHashPassword != "" {
		hash, err := auth.Hash(*flHashPassword)
		exitOnError(err)
		fmt.Println(hash)
		return
	}

	cfg, err := loadConfig()
	exitOnError(err)

	ctx := context.Background()
	service, err := app.New(ctx, cfg, lg)
	exitOnError(err)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		err := service.Run(ctx)
		if err != nil {
			lg.Error("service run failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	lg.Info("service stopping")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = service.GracefulShutdown(shutdownCtx)
	if err != nil {
		lg.Error("service graceful shutdown failed", "error", err)
	}
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(*flConfig); err == nil {
		cfg, err = config.Decode(*flConfig)
		if err != nil {
			return config.Config{}, err
		}
	} else {
		lg.Warn("config file not found, using defaults", "path", *flConfig)
	}

	if *flAdminPassword != "" {
		cfg.Auth.Password = *flAdminPassword
		cfg.Auth.PasswordHash = ""
	}

	return cfg, cfg.Validate()
}

func newLogger(debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func exitOnError(err error) {
	if err != nil {
		lg.Error("app init failed", "error", err)
		os.Exit(1)
	}
}
