package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsbst23/groundup/pkg/authflow"
)

// MembershipStore manages the user/tenant join entity.
type MembershipStore struct {
	pool *pgxpool.Pool
}

var _ authflow.MembershipStore = (*MembershipStore)(nil)

func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

const membershipColumns = `user_id, tenant_id, external_user_id, is_admin, joined_at`

func scanMembership(row pgx.Row) (*authflow.Membership, error) {
	var m authflow.Membership
	err := row.Scan(&m.UserID, &m.TenantID, &m.ExternalID, &m.IsAdmin, &m.JoinedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authflow.ErrNotFound
		}
		return nil, fmt.Errorf("scan membership: %w", err)
	}
	return &m, nil
}

func (s *MembershipStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]authflow.Membership, error) {
	rows, err := querier(ctx, s.pool).Query(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 ORDER BY joined_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var out []authflow.Membership
	for rows.Next() {
		var m authflow.Membership
		if err := rows.Scan(&m.UserID, &m.TenantID, &m.ExternalID, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MembershipStore) Get(ctx context.Context, userID, tenantID uuid.UUID) (*authflow.Membership, error) {
	row := querier(ctx, s.pool).QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND tenant_id = $2`, userID, tenantID)
	return scanMembership(row)
}

// GetByRealmAndExternalID resolves a membership through the tenant's realm,
// the secondary lookup used before the local user id is known.
func (s *MembershipStore) GetByRealmAndExternalID(ctx context.Context, realm, externalID string) (*authflow.Membership, error) {
	row := querier(ctx, s.pool).QueryRow(ctx, `
		SELECT m.user_id, m.tenant_id, m.external_user_id, m.is_admin, m.joined_at
		FROM memberships m
		JOIN tenants t ON t.id = m.tenant_id
		WHERE t.realm = $1 AND m.external_user_id = $2
		ORDER BY m.joined_at
		LIMIT 1`, realm, externalID)
	return scanMembership(row)
}

// Create inserts a membership. The (user_id, tenant_id) primary key turns
// concurrent duplicate provisioning into ErrAlreadyMember instead of a
// second row.
func (s *MembershipStore) Create(ctx context.Context, m authflow.Membership) error {
	_, err := querier(ctx, s.pool).Exec(ctx, `
		INSERT INTO memberships (user_id, tenant_id, external_user_id, is_admin, joined_at)
		VALUES ($1, $2, $3, $4, now())`,
		m.UserID, m.TenantID, m.ExternalID, m.IsAdmin)
	if err != nil {
		if isUniqueViolation(err) {
			return authflow.ErrAlreadyMember
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *MembershipStore) TenantHasMembers(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := querier(ctx, s.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE tenant_id = $1)`, tenantID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("member existence check: %w", err)
	}
	return exists, nil
}
