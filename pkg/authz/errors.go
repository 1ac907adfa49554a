package authz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNoPrincipal marks a permission-guarded call without an authenticated
// principal in context.
var ErrNoPrincipal = errors.New("authz: no authenticated principal")

// ForbiddenError is the distinguished denial signal. It is always fatal for
// the guarded call and is never downgraded to a generic error.
type ForbiddenError struct {
	UserID    uuid.UUID
	Operation string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("authz: user %s is not allowed to call %s", e.UserID, e.Operation)
}

// IsForbidden reports whether err is (or wraps) a denial.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
