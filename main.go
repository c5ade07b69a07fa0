package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Bernardxu123/unicom-calc/internal/config"
	"github.com/Bernardxu123/unicom-calc/internal/database"
	"github.com/Bernardxu123/unicom-calc/internal/logging"
	"github.com/Bernardxu123/unicom-calc/internal/router"
	"github.com/Bernardxu123/unicom-calc/internal/util"
)

func main() {
	// load configuration
	cfg, err := config.Load(os.Getenv("UCC_CONFIG"))
	if err != nil {
		logging.Fatal("load config", "error", err)
	}
	logging.Setup(os.Stdout, cfg.Log.Level)

	if err := serve(cfg); err != nil {
		logging.Fatal("run server", "error", err)
	}
}

// serve opens the database and blocks serving the API. It returns when the
// listener fails.
func serve(cfg *config.Config) error {
	if cfg.JWT.Secret == "" {
		secret, err := util.RandomString(32)
		if err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWT.Secret = secret
		slog.Warn("jwt.secret is empty, using a random secret; tokens will not survive a restart")
	}
	if cfg.Security.EncryptionKey == "" {
		slog.Warn("security.encryption_key is empty, snapshots are stored in plain text")
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close(db)

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	slog.Info("server listening", "addr", addr, "driver", cfg.Database.Driver)
	return r.Run(addr)
}
