package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// JoinLinkStore reads shareable join links.
type JoinLinkStore struct {
	pool *pgxpool.Pool
}

var _ authflow.JoinLinkStore = (*JoinLinkStore)(nil)

func NewJoinLinkStore(pool *pgxpool.Pool) *JoinLinkStore {
	return &JoinLinkStore{pool: pool}
}

func (s *JoinLinkStore) FindByToken(ctx context.Context, token string) (*authflow.JoinLink, error) {
	var link authflow.JoinLink
	err := querier(ctx, s.pool).QueryRow(ctx, `
		SELECT token, tenant_id, revoked, expires_at, default_role_id
		FROM join_links WHERE token = $1`, token,
	).Scan(&link.Token, &link.TenantID, &link.Revoked, &link.ExpiresAt, &link.DefaultRoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authflow.ErrNotFound
		}
		return nil, fmt.Errorf("find join link: %w", err)
	}
	return &link, nil
}
