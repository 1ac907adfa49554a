package idp

import "errors"

var (
	ErrExchangeFailed  = errors.New("idp: authorization code exchange failed")
	ErrMalformedToken  = errors.New("idp: access token is not a well-formed JWT")
	ErrProfileNotFound = errors.New("idp: user profile not found")
	ErrAdminRequest    = errors.New("idp: admin api request failed")
)
