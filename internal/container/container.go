package container

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/config"
	"github.com/oksasatya/go-account-core/internal/application"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/pkg/helpers"
	"github.com/oksasatya/go-account-core/pkg/mailer"
)

// app-level container shared between cmd and the router. cmd/main.go fills
// it once at startup; the router builds modules from it.

var (
	cfg    *config.Config
	logger *logrus.Logger

	userRepo   repository.UserRepository
	assets     application.AssetStore
	indexer    application.UserIndexer
	dispatcher *mailer.Dispatcher

	jwtManager *helpers.JWTManager
	hasher     *helpers.Hasher
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return helpers.NewNopLogger()
}

func SetUserRepo(r repository.UserRepository) { userRepo = r }
func GetUserRepo() repository.UserRepository  { return userRepo }
func SetAssets(s application.AssetStore)      { assets = s }
func GetAssets() application.AssetStore       { return assets }

// SetIndexer registers the optional user directory indexer.
func SetIndexer(i application.UserIndexer) { indexer = i }
func GetIndexer() application.UserIndexer  { return indexer }

func SetDispatcher(d *mailer.Dispatcher) { dispatcher = d }
func GetDispatcher() *mailer.Dispatcher  { return dispatcher }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }
func SetHasher(h *helpers.Hasher)  { hasher = h }
func GetHasher() *helpers.Hasher {
	if hasher != nil {
		return hasher
	}
	return helpers.NewHasher(helpers.DefaultBcryptCost)
}
