package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// UserStore persists local users and their external identity links.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ authflow.UserStore = (*UserStore)(nil)

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// EnsureExists inserts the user and its identity link if absent. Both
// inserts are conflict-tolerant so repeated calls are no-ops, which the
// orchestrator relies on for its idempotent safety net.
func (s *UserStore) EnsureExists(ctx context.Context, user authflow.User, externalID, realm string) error {
	q := querier(ctx, s.pool)

	if _, err := q.Exec(ctx, `
		INSERT INTO users (id, display_name, email, username, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO NOTHING`,
		user.ID, user.DisplayName, user.Email, user.Username,
	); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO user_identities (user_id, realm, external_id, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (realm, external_id) DO NOTHING`,
		user.ID, realm, externalID,
	); err != nil {
		return fmt.Errorf("insert user identity: %w", err)
	}
	return nil
}
