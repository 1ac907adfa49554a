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

// TenantStore reads and provisions tenants.
type TenantStore struct {
	pool *pgxpool.Pool
}

var _ authflow.TenantStore = (*TenantStore)(nil)

func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

const tenantColumns = `id, name, realm, kind, status, sso_allowed_domains, sso_role_id, created_at`

func scanTenant(row pgx.Row) (*authflow.Tenant, error) {
	var t authflow.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Realm, &t.Kind, &t.Status, &t.SSOAllowedDomains, &t.SSORoleID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authflow.ErrNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}

func (s *TenantStore) GetByID(ctx context.Context, id uuid.UUID) (*authflow.Tenant, error) {
	row := querier(ctx, s.pool).QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

func (s *TenantStore) GetByRealm(ctx context.Context, realm string) (*authflow.Tenant, error) {
	row := querier(ctx, s.pool).QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE realm = $1`, realm)
	return scanTenant(row)
}

// CreateStandard inserts a self-service tenant in active state.
func (s *TenantStore) CreateStandard(ctx context.Context, id uuid.UUID, realm, name string) (*authflow.Tenant, error) {
	row := querier(ctx, s.pool).QueryRow(ctx, `
		INSERT INTO tenants (id, name, realm, kind, status, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING `+tenantColumns,
		id, name, realm, authflow.TenantStandard, authflow.TenantActive)
	return scanTenant(row)
}
