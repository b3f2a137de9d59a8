package interfaces

import "context"

// PermissionChecker answers the two visibility questions the resolver asks.
type PermissionChecker interface {
	CanRead(ctx context.Context, caller Caller, page PageRecord) bool
	CanSeeDeletedText(ctx context.Context, caller Caller, rev RevisionRecord) bool
}
