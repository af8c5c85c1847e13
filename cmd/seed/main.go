package main

import (
	"context"
	"errors"
	"flag"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/config"
	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	pginfra "github.com/oksasatya/go-account-core/internal/infrastructure/postgres"
	"github.com/oksasatya/go-account-core/pkg/helpers"
)

func main() {
	email := flag.String("email", "demo@example.com", "email of the seeded account")
	password := flag.String("password", "password123", "password of the seeded account")
	tier := flag.String("tier", string(entity.SubscriptionStarter), "subscription tier")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	sub := entity.Subscription(*tier)
	if !sub.Valid() {
		logger.Fatalf("unknown tier %q", *tier)
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}
	repo := pginfra.NewUserRepository(pool)

	addr := entity.NormalizeEmail(*email)
	digest, err := helpers.NewHasher(cfg.BcryptCost).Hash(*password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}

	u, err := repo.Insert(ctx, entity.UserDraft{
		Email:        addr,
		PasswordHash: digest,
		AvatarURL:    helpers.GravatarURL(addr),
		Subscription: sub,
	})
	if errors.Is(err, repository.ErrConflict) {
		logger.WithField("email", addr).Info("account already exists; marking verified")
		u, err = repo.FindByEmail(ctx, addr)
	}
	if err != nil {
		logger.Fatalf("failed to seed user: %v", err)
	}

	verified := true
	if _, err := repo.Update(ctx, u.ID, entity.UserPatch{Verified: &verified, ClearVerificationCode: true}); err != nil {
		logger.Fatalf("failed to verify user: %v", err)
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": addr, "tier": sub}).Info("seeded verified user")
}
