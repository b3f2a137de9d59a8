package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

func TestSetWildcards(t *testing.T) {
	set := NewSet(" READ:* ", "deletedtext")
	if !set.Allowed("read:4") || !set.Allowed("DeletedText") {
		t.Fatalf("expected wildcard and case-insensitive matches")
	}
	if set.Allowed("suppressrevision") {
		t.Fatalf("unexpected grant")
	}
	if !NewSet("*").Allowed("anything") {
		t.Fatalf("star must grant everything")
	}
}

func TestRequireReturnsTypedError(t *testing.T) {
	err := Require(NewSet("read"), RightDeletedText)
	var permErr Error
	if !errors.As(err, &permErr) || permErr.Permission != RightDeletedText {
		t.Fatalf("expected typed error, got %v", err)
	}
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected sentinel")
	}
}

func TestPolicyCanRead(t *testing.T) {
	policy := NewPolicy(WithRestrictedNamespaces(4))
	ctx := context.Background()
	reader := interfaces.Caller{Rights: []string{"read"}}
	page := interfaces.PageRecord{ID: 1, Namespace: 0, Title: "Main"}
	private := interfaces.PageRecord{ID: 2, Namespace: 4, Title: "Internal"}

	if !policy.CanRead(ctx, reader, page) {
		t.Fatalf("reader should read main namespace")
	}
	if policy.CanRead(ctx, reader, private) {
		t.Fatalf("restricted namespace requires namespaced right")
	}
	if !policy.CanRead(ctx, interfaces.Caller{Rights: []string{"read", "read:4"}}, private) {
		t.Fatalf("namespaced right should grant access")
	}
	if policy.CanRead(ctx, interfaces.Caller{}, page) {
		t.Fatalf("caller without rights must not read")
	}
}

func TestPolicyDeletedText(t *testing.T) {
	policy := NewPolicy()
	ctx := context.Background()
	deleted := interfaces.RevisionRecord{ID: 42, Deleted: interfaces.DeletedText}
	suppressed := interfaces.RevisionRecord{ID: 43, Deleted: interfaces.DeletedText | interfaces.DeletedRestricted}

	if policy.CanSeeDeletedText(ctx, interfaces.Caller{Rights: []string{"read"}}, deleted) {
		t.Fatalf("plain reader must not see deleted text")
	}
	admin := interfaces.Caller{ID: 7, Rights: []string{"read", "deletedtext"}}
	if !policy.CanSeeDeletedText(ctx, admin, deleted) {
		t.Fatalf("deletedtext holder should see deleted text")
	}
	if policy.CanSeeDeletedText(ctx, admin, suppressed) {
		t.Fatalf("suppressed text needs suppression rights")
	}
	overseer := interfaces.Caller{ID: 8, Rights: []string{"deletedtext", "viewsuppressed"}}
	if !policy.CanSeeDeletedText(ctx, overseer, suppressed) {
		t.Fatalf("overseer should see suppressed text")
	}
	if !policy.CanSeeDeletedText(ctx, interfaces.Caller{}, interfaces.RevisionRecord{ID: 1}) {
		t.Fatalf("visible revisions are always allowed")
	}
}

func TestContextCheckerOverridesCallerRights(t *testing.T) {
	policy := NewPolicy()
	ctx := WithPermissions(context.Background(), "read", "deletedtext")
	deleted := interfaces.RevisionRecord{ID: 42, Deleted: interfaces.DeletedText}
	if !policy.CanSeeDeletedText(ctx, interfaces.Caller{}, deleted) {
		t.Fatalf("context checker should grant deleted text")
	}
}
