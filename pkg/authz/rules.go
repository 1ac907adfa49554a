package authz

// Rule declares what a single operation requires: any of the listed
// permissions, or membership in any of the listed roles (a short-circuit
// that skips the permission computation entirely). A rule with roles and no
// permissions is a hard role requirement; callers outside those roles are
// denied without consulting the permission source.
type Rule struct {
	Permissions []string
	Roles       []string
}

// Rules is the startup-built operation table. It replaces annotation
// scanning and proxy reflection with explicit registration: each guarded
// interface registers its operations once during wiring, and the table is
// treated as immutable afterwards, so lookups need no locking.
type Rules struct {
	byOperation map[string]Rule
}

// NewRules creates an empty rule table.
func NewRules() *Rules {
	return &Rules{byOperation: make(map[string]Rule)}
}

// Require registers the rule for an operation name, replacing any previous
// registration. Operation names are conventionally "<service>.<method>",
// e.g. "inventory.UpdateItem".
func (r *Rules) Require(operation string, rule Rule) *Rules {
	r.byOperation[operation] = rule
	return r
}

// Lookup returns the rule for an operation. Absence means the operation is
// not permission-guarded and must be allowed unconditionally.
func (r *Rules) Lookup(operation string) (Rule, bool) {
	rule, ok := r.byOperation[operation]
	return rule, ok
}

// Len reports the number of registered operations.
func (r *Rules) Len() int {
	return len(r.byOperation)
}
