package router

import (
	"path/filepath"

	"github.com/oksasatya/go-account-core/internal/application"
	"github.com/oksasatya/go-account-core/internal/container"
	handlers "github.com/oksasatya/go-account-core/internal/interface/http"
	"github.com/oksasatya/go-account-core/internal/router/modules"
	"github.com/oksasatya/go-account-core/pkg/mailer/templates"
)

type UserModuleDeps struct {
	Service *application.AuthService
	Guard   *application.SessionGuard
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	repo := container.GetUserRepo()

	verification := application.NewVerification(
		repo,
		container.GetDispatcher(),
		templates.Branding{AppName: cfg.AppName, CompanyName: cfg.CompanyName, SupportURL: cfg.SupportURL},
		cfg.VerifyLinkBase(),
		logger,
	)
	avatars := application.NewAvatarPipeline(repo, container.GetAssets(), cfg.AvatarSize, logger)

	service := application.NewAuthService(
		repo,
		container.GetHasher(),
		container.GetJWT(),
		verification,
		avatars,
		container.GetIndexer(),
		logger,
	)

	return UserModuleDeps{
		Service: service,
		Guard:   application.NewSessionGuard(repo, container.GetJWT()),
		Handler: handlers.NewUserHandler(service, logger, cfg.TempDir),
	}
}

// InitModules wires every module from the container. Call once at startup,
// after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	deps := buildUserDeps()
	r.Add(modules.NewUserModule(deps.Handler, deps.Guard))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	if cfg.AvatarBackend != "gcs" {
		r.Static("/"+application.AvatarDir, filepath.Join(cfg.PublicDir, application.AvatarDir))
	}
}
