package permissions

import (
	"context"
	"errors"
	"strings"
)

// Rights understood by the parse pipeline.
const (
	RightRead             = "read"
	RightDeletedText      = "deletedtext"
	RightSuppressRevision = "suppressrevision"
	RightViewSuppressed   = "viewsuppressed"
)

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

// Set is a static list of rights. "*" grants everything and "read:*" grants
// every namespaced read right.
type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		normalized := normalizePermission(perm)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	if len(s) == 0 {
		return false
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	resource, _ := splitPermission(normalized)
	if resource != "" {
		if _, ok := s[resource+":*"]; ok {
			return true
		}
	}
	if _, ok := s["*"]; ok {
		return true
	}
	return false
}

type contextKey string

const checkerKey contextKey = "wikiparse.permissions.checker"

// WithChecker stores a permission checker on the context. It takes precedence
// over the rights carried by the caller.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static permission set on the context.
func WithPermissions(ctx context.Context, perms ...string) context.Context {
	if ctx == nil || len(perms) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(perms...))
}

// CheckerFromContext returns the configured permission checker if available.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	switch typed := ctx.Value(checkerKey).(type) {
	case Checker:
		return typed
	case []string:
		return NewSet(typed...)
	default:
		return nil
	}
}

// Require returns an Error when checker does not grant permission.
func Require(checker Checker, permission string) error {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return nil
	}
	if checker != nil && checker.Allowed(normalized) {
		return nil
	}
	return Error{Permission: normalized}
}

// NamespaceRead builds the namespaced read right, e.g. "read:4".
func NamespaceRead(namespace string) string {
	return RightRead + ":" + normalizeToken(namespace)
}

func splitPermission(permission string) (string, string) {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return "", ""
	}
	parts := strings.SplitN(normalized, ":", 2)
	resource := normalizeToken(parts[0])
	if len(parts) == 1 {
		return resource, ""
	}
	return resource, normalizeToken(parts[1])
}

func normalizePermission(permission string) string {
	trimmed := strings.TrimSpace(permission)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
