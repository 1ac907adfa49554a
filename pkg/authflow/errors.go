package authflow

import "errors"

// Store errors. Implementations must return ErrNotFound (possibly wrapped)
// for missing rows so flow handlers can branch on absence.
var (
	ErrNotFound      = errors.New("authflow: not found")
	ErrAlreadyMember = errors.New("authflow: user is already a member of this tenant")
)

// Exchange and preamble errors.
var (
	ErrExchangeFailed = errors.New("authflow: code exchange failed")
	ErrMissingSubject = errors.New("authflow: access token carries no subject")
)

// Flow-specific rejections. All of them are raised before any write.
var (
	ErrInvitationInvalid = errors.New("authflow: invitation is invalid, revoked or expired")
	ErrJoinLinkInvalid   = errors.New("authflow: join link is invalid, revoked or expired")
	ErrTenantUnavailable = errors.New("authflow: tenant does not exist or is not available")
	ErrTenantOccupied    = errors.New("authflow: tenant already has members")
	ErrNoMembership      = errors.New("authflow: unable to assign user to tenant")
	ErrSSOUnauthorized   = errors.New("authflow: sso access denied, request an invitation")
)
