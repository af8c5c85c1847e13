// Package search mirrors public account fields into an Elasticsearch index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/pkg/helpers"
)

// userDoc holds only public fields. Credentials never leave the store.
type userDoc struct {
	Email        string    `json:"email"`
	Subscription string    `json:"subscription"`
	AvatarURL    string    `json:"avatar_url"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserIndexer struct {
	es    *elasticsearch.Client
	index string
}

func NewUserIndexer(es *elasticsearch.Client, index string) *UserIndexer {
	return &UserIndexer{es: es, index: index}
}

// Index upserts the user's document keyed by id.
func (i *UserIndexer) Index(ctx context.Context, u *entity.User) error {
	body, err := json.Marshal(userDoc{
		Email:        u.Email,
		Subscription: string(u.Subscription),
		AvatarURL:    u.AvatarURL,
		Verified:     u.Verified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: u.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.es)
	if err != nil {
		return err
	}
	return helpers.ESResponseError(res)
}
