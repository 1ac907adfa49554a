package sessiontoken

import "errors"

var (
	ErrMissingSigningKey = errors.New("sessiontoken: missing signing key")
	ErrInvalidToken      = errors.New("sessiontoken: invalid token")
	ErrNotAMember        = errors.New("sessiontoken: user is not a member of the requested tenant")
	ErrNoTenants         = errors.New("sessiontoken: user has no tenant memberships")
)
