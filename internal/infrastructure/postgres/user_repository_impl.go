package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, avatar_url, subscription, verified, verification_code, token, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var sub string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.AvatarURL, &sub, &u.Verified,
		&u.VerificationCode, &u.Token, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Subscription = entity.Subscription(sub)
	return u, nil
}

func (r *UserRepository) findOne(ctx context.Context, column, value string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	// ids are UUIDs; anything else cannot exist and would make postgres error
	if !isUUID(id) {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, "id", id)
}

func (r *UserRepository) FindByVerificationCode(ctx context.Context, code string) (*entity.User, error) {
	if code == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, "verification_code", code)
}

func (r *UserRepository) Insert(ctx context.Context, d entity.UserDraft) (*entity.User, error) {
	sub := d.Subscription
	if sub == "" {
		sub = entity.SubscriptionStarter
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, avatar_url, subscription)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns, d.Email, d.PasswordHash, d.AvatarURL, string(sub))

	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

// Update applies patch in a single UPDATE ... RETURNING statement.
func (r *UserRepository) Update(ctx context.Context, id string, p entity.UserPatch) (*entity.User, error) {
	if !isUUID(id) {
		return nil, repository.ErrNotFound
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if p.AvatarURL != nil {
		add("avatar_url = $%d", *p.AvatarURL)
	}
	if p.Verified != nil {
		add("verified = verified OR $%d", *p.Verified)
	}
	switch {
	case p.ClearVerificationCode:
		sets = append(sets, "verification_code = NULL")
	case p.VerificationCode != nil:
		add("verification_code = $%d", *p.VerificationCode)
	}
	switch {
	case p.ClearToken:
		sets = append(sets, "token = NULL")
	case p.Token != nil:
		add("token = $%d", *p.Token)
	}
	add("updated_at = $%d", time.Now().UTC())

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if p.OnlyIfUnverified {
		where += " AND verified = FALSE"
	}
	q := fmt.Sprintf(`UPDATE users SET %s WHERE %s RETURNING %s`,
		strings.Join(sets, ", "), where, userColumns)

	u, err := scanUser(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) && p.OnlyIfUnverified {
			return nil, r.missOrPrecondition(ctx, id)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

// missOrPrecondition tells apart a conditional update that matched no row
// because the user is gone from one whose guard failed.
func (r *UserRepository) missOrPrecondition(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return repository.ErrPrecondition
	}
	return repository.ErrNotFound
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
