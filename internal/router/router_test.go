package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-account-core/config"
	"github.com/oksasatya/go-account-core/internal/container"
	"github.com/oksasatya/go-account-core/internal/infrastructure/memory"
	"github.com/oksasatya/go-account-core/internal/infrastructure/storage"
	"github.com/oksasatya/go-account-core/internal/interface/middleware"
	"github.com/oksasatya/go-account-core/pkg/helpers"
	"github.com/oksasatya/go-account-core/pkg/mailer"
	"github.com/oksasatya/go-account-core/pkg/validation"
)

type testServer struct {
	engine *gin.Engine
	repo   *memory.UserRepository
	public string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	dir := t.TempDir()
	cfg := &config.Config{
		AppName:       "accounts",
		BaseURL:       "http://localhost:3000",
		AvatarSize:    250,
		AvatarBackend: "local",
		PublicDir:     filepath.Join(dir, "public"),
		TempDir:       filepath.Join(dir, "tmp"),
	}
	require.NoError(t, os.MkdirAll(cfg.TempDir, 0o755))

	logger := helpers.NewNopLogger()
	repo := memory.NewUserRepository()
	store, err := storage.NewLocalStore(filepath.Join(cfg.PublicDir, "avatars"))
	require.NoError(t, err)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetUserRepo(repo)
	container.SetAssets(store)
	container.SetIndexer(nil)
	container.SetDispatcher(mailer.NewDispatcher(mailer.NewMemorySender(), logger, time.Second))
	container.SetJWT(helpers.NewJWTManager("test-secret", time.Hour))
	container.SetHasher(helpers.NewHasher(bcrypt.MinCost))

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()
	return &testServer{engine: r, repo: repo, public: cfg.PublicDir}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func (s *testServer) code(t *testing.T, email string) string {
	t.Helper()
	u, err := s.repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, u.VerificationCode)
	return *u.VerificationCode
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["token"].(string)
}

func TestAccountLifecycle(t *testing.T) {
	s := newTestServer(t)
	creds := gin.H{"email": "a@x.com", "password": "secret1"}

	w, body := s.do(t, http.MethodPost, "/api/users/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, map[string]any{"email": "a@x.com", "subscriptionTier": "starter"}, body)

	w, body = s.do(t, http.MethodPost, "/api/users/login", "", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email is not verified", body["message"])

	w, body = s.do(t, http.MethodGet, "/api/users/verify/"+s.code(t, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Verification successful", body["message"])

	w, body = s.do(t, http.MethodPost, "/api/users/login", "", creds)
	require.Equal(t, http.StatusOK, w.Code)
	token := body["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "starter", body["subscriptionTier"])

	w, body = s.do(t, http.MethodGet, "/api/users/current", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"email": "a@x.com", "subscriptionTier": "starter"}, body)

	w, _ = s.do(t, http.MethodPost, "/api/users/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())

	w, body = s.do(t, http.MethodGet, "/api/users/current", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", body["message"])
}

func TestRegisterDuplicateReturns409(t *testing.T) {
	s := newTestServer(t)
	creds := gin.H{"email": "a@x.com", "password": "secret1"}

	w, _ := s.do(t, http.MethodPost, "/api/users/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code)
	w, body := s.do(t, http.MethodPost, "/api/users/register", "", creds)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already in use", body["message"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"email": "bad", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
}

func TestRegisterOverlongPassword(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"email": "a@x.com", "password": strings.Repeat("a", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "password")
}

func TestResendVerify(t *testing.T) {
	s := newTestServer(t)
	creds := gin.H{"email": "a@x.com", "password": "secret1"}
	w, _ := s.do(t, http.MethodPost, "/api/users/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := s.do(t, http.MethodPost, "/api/users/verify", "", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@x.com", body["email"])

	w, _ = s.do(t, http.MethodGet, "/api/users/verify/"+s.code(t, "a@x.com"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/users/verify", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/users/verify", "", gin.H{"email": "ghost@x.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyUnknownCode(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/api/users/verify/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/current"},
		{http.MethodPost, "/api/users/logout"},
		{http.MethodPatch, "/api/users/avatars"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Token abc")
		w, _ := s.serve(t, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)

		w, _ = s.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func registerVerified(t *testing.T, s *testServer, email, password string) string {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/users/register", "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/users/verify/"+s.code(t, email), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	return s.login(t, email, password)
}

func multipartRequest(t *testing.T, token, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatars", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUpdateAvatar(t *testing.T) {
	s := newTestServer(t)
	token := registerVerified(t, s, "a@x.com", "secret1")

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	w, body := s.serve(t, multipartRequest(t, token, "avatar", "me.png", img.Bytes()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	avatarURL := body["avatarURL"].(string)
	assert.Regexp(t, `^avatars/[0-9a-f-]{36}_me\.png$`, avatarURL)

	// served statically from the public dir
	req := httptest.NewRequest(http.MethodGet, "/"+avatarURL, nil)
	w, _ = s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	cfg, err := png.DecodeConfig(w.Body)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Width)
	assert.Equal(t, 250, cfg.Height)

	w, _ = s.serve(t, multipartRequest(t, token, "avatar", "notes.png", []byte("not an image")))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, body = s.serve(t, multipartRequest(t, token, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File not found", body["message"])

	u, err := s.repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, avatarURL, u.AvatarURL)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", body["message"])
	assert.NotEmpty(t, body["request_id"])
}
