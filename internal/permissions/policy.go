package permissions

import (
	"context"
	"strconv"

	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

var _ interfaces.PermissionChecker = (*Policy)(nil)

// Policy answers the page and revision visibility questions of the parse
// pipeline from caller rights.
type Policy struct {
	restricted map[int]struct{}
}

// PolicyOption customises a Policy.
type PolicyOption func(*Policy)

// WithRestrictedNamespaces requires "read:<ns>" on top of "read" for ns.
func WithRestrictedNamespaces(namespaces ...int) PolicyOption {
	return func(p *Policy) {
		for _, ns := range namespaces {
			p.restricted[ns] = struct{}{}
		}
	}
}

func NewPolicy(opts ...PolicyOption) *Policy {
	p := &Policy{restricted: map[int]struct{}{}}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Policy) checker(ctx context.Context, caller interfaces.Caller) Checker {
	if checker := CheckerFromContext(ctx); checker != nil {
		return checker
	}
	return NewSet(caller.Rights...)
}

func (p *Policy) CanRead(ctx context.Context, caller interfaces.Caller, page interfaces.PageRecord) bool {
	checker := p.checker(ctx, caller)
	if Require(checker, RightRead) != nil {
		return false
	}
	if _, ok := p.restricted[page.Namespace]; ok {
		return Require(checker, NamespaceRead(strconv.Itoa(page.Namespace))) == nil
	}
	return true
}

// CanSeeDeletedText grants deleted text to "deletedtext" holders. Suppressed
// revisions additionally need one of the suppression rights.
func (p *Policy) CanSeeDeletedText(ctx context.Context, caller interfaces.Caller, rev interfaces.RevisionRecord) bool {
	if !rev.IsDeleted(interfaces.DeletedText) {
		return true
	}
	checker := p.checker(ctx, caller)
	if Require(checker, RightDeletedText) != nil {
		return false
	}
	if rev.IsDeleted(interfaces.DeletedRestricted) {
		return Require(checker, RightSuppressRevision) == nil || Require(checker, RightViewSuppressed) == nil
	}
	return true
}
