package domain

import (
	"fmt"
	"regexp"
)

const maxNamespaceLen = 128

var namespaceRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateNamespace checks a namespace name. Namespaces become part of Redis
// key and index names, so the charset is restricted accordingly.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNamespace)
	}
	if len(ns) > maxNamespaceLen {
		return fmt.Errorf("%w: longer than %d chars", ErrInvalidNamespace, maxNamespaceLen)
	}
	if !namespaceRe.MatchString(ns) {
		return fmt.Errorf("%w: %q (allowed: [a-zA-Z0-9_-])", ErrInvalidNamespace, ns)
	}
	return nil
}
