// Package scopes implements permission-string matching for the
// authorization layer. Permissions are dot-delimited strings such as
// "inventory.items.read"; a trailing wildcard ("inventory.*") matches every
// permission under that prefix and a bare "*" matches everything.
package scopes

import (
	"slices"
	"sort"
	"strings"
)

const (
	// Separator splits permissions inside a list string.
	Separator = " "
	// Wildcard matches everything, alone or as a suffix.
	Wildcard = "*"
	// Delimiter separates hierarchy levels inside one permission.
	Delimiter = "."
)

// Parse splits a space-separated permission list, trimming whitespace and
// dropping empty entries. Returns nil for empty input.
func Parse(list string) []string {
	fields := strings.Fields(list)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Join renders permissions back to the canonical space-separated form.
func Join(perms []string) string {
	return strings.Join(perms, Separator)
}

// Matches reports whether a granted pattern covers the wanted permission.
// "inventory.*" covers "inventory.items.read"; "*" covers anything.
func Matches(wanted, granted string) bool {
	if wanted == granted || granted == Wildcard {
		return true
	}
	if strings.HasSuffix(granted, Wildcard) {
		prefix := strings.TrimSuffix(granted, Wildcard)
		prefix = strings.TrimSuffix(prefix, Delimiter)
		return strings.HasPrefix(wanted, prefix+Delimiter)
	}
	return false
}

// Has reports whether any granted permission covers wanted.
func Has(granted []string, wanted string) bool {
	return slices.ContainsFunc(granted, func(g string) bool {
		return Matches(wanted, g)
	})
}

// HasAny reports whether at least one of wanted is covered by granted.
// An empty wanted set is vacuously satisfied.
func HasAny(granted, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	if slices.Contains(granted, Wildcard) {
		return true
	}
	return slices.ContainsFunc(wanted, func(w string) bool {
		return Has(granted, w)
	})
}

// HasAll reports whether every permission in wanted is covered by granted.
func HasAll(granted, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	if slices.Contains(granted, Wildcard) {
		return true
	}
	for _, w := range wanted {
		if !Has(granted, w) {
			return false
		}
	}
	return true
}

// Normalize sorts and deduplicates a permission set.
func Normalize(perms []string) []string {
	if len(perms) == 0 {
		return nil
	}
	out := make([]string, 0, len(perms))
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
