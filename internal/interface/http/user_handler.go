package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/internal/application"
	"github.com/oksasatya/go-account-core/internal/domain/apperror"
	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/interface/middleware"
	"github.com/oksasatya/go-account-core/pkg/response"
	"github.com/oksasatya/go-account-core/pkg/validation"
)

// AvatarField is the multipart field carrying the avatar upload.
const AvatarField = "avatar"

type UserHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	TempDir string

	writeErr func(c *gin.Context, err error)
}

func NewUserHandler(svc *application.AuthService, logger *logrus.Logger, tempDir string) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, TempDir: tempDir, writeErr: ErrorWriter(logger)}
}

// WriteError is the handler's error renderer, shared with the auth middleware.
func (h *UserHandler) WriteError(c *gin.Context, err error) { h.writeErr(c, err) }

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type userResponse struct {
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscriptionTier"`
}

type loginResponse struct {
	Token            string `json:"token"`
	Email            string `json:"email"`
	SubscriptionTier string `json:"subscriptionTier"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{Email: u.Email, SubscriptionTier: string(u.Subscription)}
}

func (h *UserHandler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.AbortError(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

// currentUser is only reached behind RequireSession; a miss means the route
// was wired without it.
func (h *UserHandler) currentUser(c *gin.Context) (*entity.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeErr(c, apperror.Unauthorized("Not authorized"))
	}
	return u, ok
}

func (h *UserHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:            res.Token,
		Email:            res.User.Email,
		SubscriptionTier: string(res.User.Subscription),
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.Svc.Logout(c.Request.Context(), u); err != nil {
		h.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Current(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toUserResponse(h.Svc.Current(u)))
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	msg, err := h.Svc.VerifyEmail(c.Request.Context(), c.Param("verificationCode"))
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *UserHandler) ResendVerify(c *gin.Context) {
	var req emailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResendVerify(c.Request.Context(), req.Email); err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": entity.NormalizeEmail(req.Email)})
}

// UpdateAvatar saves the multipart upload to TempDir and runs the pipeline.
// A missing file is passed through as a nil upload.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}

	var upload *application.Upload
	fh, err := c.FormFile(AvatarField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		h.writeErr(c, apperror.BadRequest("File not found"))
		return
	default:
		name := filepath.Base(fh.Filename)
		tmp := filepath.Join(h.TempDir, fmt.Sprintf("%s_%s", uuid.NewString(), name))
		if err := c.SaveUploadedFile(fh, tmp); err != nil {
			h.writeErr(c, apperror.Internal(fmt.Errorf("save upload: %w", err)))
			return
		}
		defer func() { _ = os.Remove(tmp) }()
		upload = &application.Upload{TempPath: tmp, OriginalName: name}
	}

	avatarURL, err := h.Svc.UpdateAvatar(c.Request.Context(), u, upload)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatarURL": avatarURL})
}
