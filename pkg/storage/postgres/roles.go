package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rsbst23/groundup/pkg/authflow"
	"github.com/rsbst23/groundup/pkg/authz"
)

// RoleStore resolves and assigns tenant roles, and doubles as the
// authorization layer's permission source.
type RoleStore struct {
	pool *pgxpool.Pool
}

var (
	_ authflow.RoleStore     = (*RoleStore)(nil)
	_ authz.PermissionSource = (*RoleStore)(nil)
)

func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

func (s *RoleStore) FindRoleIDByName(ctx context.Context, tenantID uuid.UUID, name string) (int64, error) {
	var id int64
	err := querier(ctx, s.pool).QueryRow(ctx,
		`SELECT id FROM roles WHERE tenant_id = $1 AND name = $2`, tenantID, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, authflow.ErrNotFound
		}
		return 0, fmt.Errorf("find role: %w", err)
	}
	return id, nil
}

func (s *RoleStore) AssignRole(ctx context.Context, userID, tenantID uuid.UUID, roleID int64) error {
	_, err := querier(ctx, s.pool).Exec(ctx, `
		INSERT INTO user_roles (user_id, tenant_id, role_id, assigned_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, tenant_id, role_id) DO NOTHING`,
		userID, tenantID, roleID)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// PermissionsForUser computes the effective permission set across all of
// the user's roles. Results are memoized by the authz permission cache.
func (s *RoleStore) PermissionsForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := querier(ctx, s.pool).Query(ctx, `
		SELECT DISTINCT rp.permission
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		WHERE ur.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
