package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tastelog/tastelog/internal/catalog"
	"github.com/tastelog/tastelog/internal/config"
	httpserver "github.com/tastelog/tastelog/internal/http"
	"github.com/tastelog/tastelog/internal/identity"
	"github.com/tastelog/tastelog/internal/repository"
	"github.com/tastelog/tastelog/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[tastelog-api] ", log.LstdFlags|log.Lmsgprefix)

	if err := run(logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Println("server stopped")
}

func run(logger *log.Logger) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	repos := repository.New(st)
	queries := catalog.NewQueryService(repos.Dishes, repos.Locations, repos.Ratings, repos.Tags)
	mutations := catalog.NewMutationService(repos.Dishes, repos.Locations, repos.Ratings, repos.Tags, catalog.Policy{
		OneRatingPerUserPerDish: cfg.RatingUniquePerUser,
	})
	idm := identity.NewManager(repos.Users, []byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLMins)*time.Minute)

	srv, err := httpserver.New(cfg, st, queries, mutations, idm, repos.Users, logger)
	if err != nil {
		return err
	}

	logger.Printf("listening on :%s", cfg.Port)
	return srv.Start(ctx)
}
