package main

import (
	"context"
	"fmt"
	"os"

	"session-portal/internal/config"
	"session-portal/internal/repository/sqlite"
	"session-portal/internal/service"
)

func main() {
	if err := newRootCmd(openStore).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore opens the database the server is configured with.
func openStore(ctx context.Context) (service.UserService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	policy, err := cfg.LookupPolicy()
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	repo := sqlite.NewUserRepository(db)
	if err := repo.Init(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init user repository: %w", err)
	}

	return service.NewUserService(repo, policy, cfg.Auth.BcryptCost), db.Close, nil
}
