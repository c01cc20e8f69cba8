package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/colmedica/association-api/internal/api"
	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
	mongodb "github.com/colmedica/association-api/internal/infrastructure/db/mongo"
	redisdb "github.com/colmedica/association-api/internal/infrastructure/db/redis"
	"github.com/colmedica/association-api/internal/infrastructure/storage"
	"github.com/colmedica/association-api/internal/pkg/config"
	"github.com/colmedica/association-api/pkg/logger"
)

// @title Association Membership API
// @version 1.0
// @description Membership applications, offerings, enrollments and news for a professional association.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token, prefixed with "Bearer "

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	blobs, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("blob store init failed")
	}

	if err := ensureOwner(ctx, mongodb.NewAccountRepository(db), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("owner bootstrap failed")
	}

	e := api.NewRouter(db, client, rdb, blobs, cfg)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, ensure := range []func(context.Context) error{
		mongodb.NewAccountRepository(db).EnsureIndexes,
		mongodb.NewApplicationRepository(db).EnsureIndexes,
		mongodb.NewOfferingRepository(db).EnsureIndexes,
		mongodb.NewEnrollmentRepository(db).EnsureIndexes,
		mongodb.NewNewsRepository(db).EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ensureOwner creates the bootstrap admin account when it does not exist
// yet. The owner is the only account allowed to create further admins.
func ensureOwner(ctx context.Context, accounts ports.AccountRepository, cfg *config.Config, log zerolog.Logger) error {
	if cfg.OwnerEmail == "" {
		log.Warn().Msg("OWNER_EMAIL not set, skipping owner bootstrap")
		return nil
	}

	_, err := accounts.FindByEmail(ctx, cfg.OwnerEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}

	if cfg.OwnerPassword == "" {
		log.Error().Msg("OWNER_PASSWORD not set, cannot create owner account")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = accounts.Create(ctx, &domain.Account{
		Email:         cfg.OwnerEmail,
		Name:          "Owner",
		PasswordHash:  string(hash),
		Role:          domain.RoleAdmin,
		IsActive:      true,
		PaymentStatus: domain.PaymentPaid,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	log.Info().Str("email", cfg.OwnerEmail).Msg("owner account created")
	return nil
}
