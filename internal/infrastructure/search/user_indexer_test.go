package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
)

type captured struct {
	method string
	path   string
	body   map[string]any
}

func fakeES(t *testing.T, status int) (*elasticsearch.Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got.body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es, got
}

func TestIndexSendsPublicFields(t *testing.T) {
	es, got := fakeES(t, http.StatusCreated)
	tok := "secret-token"
	u := &entity.User{
		ID: "u-1", Email: "a@x.io", PasswordHash: "hash", Token: &tok,
		Subscription: entity.SubscriptionPro, AvatarURL: "avatars/u-1_me.png",
	}

	require.NoError(t, NewUserIndexer(es, "users").Index(context.Background(), u))

	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/users/_doc/u-1", got.path)
	assert.Equal(t, "a@x.io", got.body["email"])
	assert.Equal(t, "pro", got.body["subscription"])
	assert.NotContains(t, got.body, "password_hash")
	assert.NotContains(t, got.body, "token")
}

func TestIndexReportsErrorStatus(t *testing.T) {
	es, _ := fakeES(t, http.StatusBadRequest)
	err := NewUserIndexer(es, "users").Index(context.Background(), &entity.User{ID: "u-1"})
	assert.Error(t, err)
}
