package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-account-core/internal/interface/http"
	"github.com/oksasatya/go-account-core/internal/interface/middleware"
)

// UserModule mounts the account routes under /users.
// Public: register, login, verify (GET by code, POST resend)
// Protected: logout, current, avatars
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   middleware.SessionResolver
}

func NewUserModule(h *handlers.UserHandler, guard middleware.SessionResolver) *UserModule {
	return &UserModule{Handler: h, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("/register", m.Handler.Register)
	users.POST("/login", m.Handler.Login)
	users.GET("/verify/:verificationCode", m.Handler.VerifyEmail)
	users.POST("/verify", m.Handler.ResendVerify)

	auth := users.Group("")
	auth.Use(middleware.RequireSession(m.Guard, m.Handler.WriteError))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/current", m.Handler.Current)
		auth.PATCH("/avatars", m.Handler.UpdateAvatar)
	}
}
