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

// InvitationStore manages single-use invitations.
type InvitationStore struct {
	pool *pgxpool.Pool
}

var _ authflow.InvitationStore = (*InvitationStore)(nil)

func NewInvitationStore(pool *pgxpool.Pool) *InvitationStore {
	return &InvitationStore{pool: pool}
}

// AcceptByToken transitions a pending, unexpired invitation to accepted and
// creates the membership. The conditional UPDATE is the single-use gate:
// under concurrent duplicate acceptance only one transaction matches the
// pending row, the loser gets ErrInvitationInvalid and commits nothing.
func (s *InvitationStore) AcceptByToken(ctx context.Context, token string, userID uuid.UUID, externalID string) (*authflow.Invitation, error) {
	q := querier(ctx, s.pool)

	var inv authflow.Invitation
	err := q.QueryRow(ctx, `
		UPDATE invitations
		SET status = $2, accepted_by = $3, accepted_at = now()
		WHERE token = $1 AND status = $4 AND expires_at > now()
		RETURNING token, tenant_id, email, status, expires_at`,
		token, authflow.InvitationAccepted, userID, authflow.InvitationPending,
	).Scan(&inv.Token, &inv.TenantID, &inv.Email, &inv.Status, &inv.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authflow.ErrInvitationInvalid
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	if _, err := q.Exec(ctx, `
		INSERT INTO memberships (user_id, tenant_id, external_user_id, is_admin, joined_at)
		VALUES ($1, $2, $3, false, now())`,
		userID, inv.TenantID, externalID,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, authflow.ErrAlreadyMember
		}
		return nil, fmt.Errorf("insert membership: %w", err)
	}
	return &inv, nil
}

func (s *InvitationStore) FindPendingForEmail(ctx context.Context, email string) ([]authflow.Invitation, error) {
	rows, err := querier(ctx, s.pool).Query(ctx, `
		SELECT token, tenant_id, email, status, expires_at
		FROM invitations
		WHERE lower(email) = lower($1) AND status = $2 AND expires_at > now()`,
		email, authflow.InvitationPending)
	if err != nil {
		return nil, fmt.Errorf("find pending invitations: %w", err)
	}
	defer rows.Close()

	var out []authflow.Invitation
	for rows.Next() {
		var inv authflow.Invitation
		if err := rows.Scan(&inv.Token, &inv.TenantID, &inv.Email, &inv.Status, &inv.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
