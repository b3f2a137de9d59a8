package pageset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

// PropHiddenCat marks category pages hidden from the category bar.
const PropHiddenCat = "hiddencat"

const maxRedirectHops = 10

var ErrRedirectLoop = errors.New("pageset: redirect loop")

// Resolver resolves titles and ids against a PageLookup, following
// redirects one batch per hop.
type Resolver struct {
	lookup interfaces.PageLookup
	site   titles.Site
}

var _ interfaces.PageSetResolver = (*Resolver)(nil)

func New(lookup interfaces.PageLookup, site titles.Site) *Resolver {
	return &Resolver{lookup: lookup, site: site}
}

// CacheMode reports the cacheability of page set lookups.
func (r *Resolver) CacheMode() string {
	return "public"
}

func (r *Resolver) Resolve(ctx context.Context, req interfaces.PageSetRequest) (*interfaces.PageSet, error) {
	set := &interfaces.PageSet{}

	pending := make([]*interfaces.PageRecord, 0, len(req.Titles)+len(req.PageIDs))
	if len(req.PageIDs) > 0 {
		found, err := r.lookup.PagesByIDs(ctx, req.PageIDs)
		if err != nil {
			return nil, err
		}
		seen := make(map[int64]struct{}, len(found))
		for _, page := range found {
			seen[page.ID] = struct{}{}
		}
		for _, id := range req.PageIDs {
			if _, ok := seen[id]; !ok {
				set.MissingIDs = append(set.MissingIDs, id)
			}
		}
		pending = append(pending, found...)
	}

	if len(req.Titles) > 0 {
		found, missing, err := r.byTitles(ctx, req.Titles)
		if err != nil {
			return nil, err
		}
		pending = append(pending, found...)
		set.Missing = append(set.Missing, missing...)
	}

	if !req.FollowRedirects {
		set.Good = pending
		return set, nil
	}

	visited := map[string]struct{}{}
	for hop := 0; len(pending) > 0; hop++ {
		var redirects []*interfaces.PageRecord
		for _, page := range pending {
			if page.IsRedirect && page.RedirectTarget != "" {
				redirects = append(redirects, page)
				continue
			}
			set.Good = append(set.Good, page)
		}
		if len(redirects) == 0 {
			break
		}
		if hop >= maxRedirectHops {
			return nil, fmt.Errorf("%w after %d hops", ErrRedirectLoop, hop)
		}

		targets := make([]string, 0, len(redirects))
		for _, page := range redirects {
			from := prefixed(page)
			if _, loop := visited[from]; loop {
				return nil, fmt.Errorf("%w at %s", ErrRedirectLoop, from)
			}
			visited[from] = struct{}{}

			target, err := r.site.Parse(page.RedirectTarget)
			if err != nil || !target.CanExist() {
				// Broken redirects resolve to themselves.
				set.Good = append(set.Good, page)
				continue
			}
			set.Redirects = append(set.Redirects, interfaces.Redirect{
				From:     from,
				To:       target.PrefixedText(),
				Fragment: target.Fragment,
			})
			targets = append(targets, target.PrefixedText())
		}
		if len(targets) == 0 {
			break
		}
		found, missing, err := r.byTitles(ctx, targets)
		if err != nil {
			return nil, err
		}
		set.Missing = append(set.Missing, missing...)
		pending = found
	}
	return set, nil
}

// LinkExistence maps every existing title to its page id with one lookup.
func (r *Resolver) LinkExistence(ctx context.Context, prefixedTitles []string) (map[string]int64, error) {
	out := make(map[string]int64, len(prefixedTitles))
	if len(prefixedTitles) == 0 {
		return out, nil
	}
	found, err := r.lookup.PagesByTitles(ctx, dedupe(prefixedTitles))
	if err != nil {
		return nil, err
	}
	for _, page := range found {
		out[prefixed(page)] = page.ID
	}
	return out, nil
}

// Categories resolves existence and the hidden flag of every category name
// with one page lookup and one property lookup.
func (r *Resolver) Categories(ctx context.Context, names []string) (map[string]interfaces.CategoryInfo, error) {
	out := make(map[string]interfaces.CategoryInfo, len(names))
	if len(names) == 0 {
		return out, nil
	}
	keys := make([]string, 0, len(names))
	byKey := make(map[string]string, len(names))
	for _, name := range dedupe(names) {
		key := titles.Title{Namespace: titles.NSCategory, Text: strings.ReplaceAll(name, "_", " ")}.PrefixedText()
		keys = append(keys, key)
		byKey[key] = name
		out[name] = interfaces.CategoryInfo{}
	}

	found, err := r.lookup.PagesByTitles(ctx, keys)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(found))
	idToName := make(map[int64]string, len(found))
	for _, page := range found {
		name, ok := byKey[prefixed(page)]
		if !ok {
			continue
		}
		ids = append(ids, page.ID)
		idToName[page.ID] = name
		out[name] = interfaces.CategoryInfo{Exists: true, Known: true}
	}

	hidden, err := r.lookup.PageProps(ctx, ids, PropHiddenCat)
	if err != nil {
		return nil, err
	}
	for id := range hidden {
		name := idToName[id]
		info := out[name]
		info.Hidden = true
		out[name] = info
	}
	return out, nil
}

func (r *Resolver) byTitles(ctx context.Context, raw []string) ([]*interfaces.PageRecord, []string, error) {
	keys := make([]string, 0, len(raw))
	for _, title := range raw {
		parsed, err := r.site.Parse(title)
		if err != nil {
			continue
		}
		keys = append(keys, parsed.PrefixedText())
	}
	found, err := r.lookup.PagesByTitles(ctx, keys)
	if err != nil {
		return nil, nil, err
	}
	present := make(map[string]struct{}, len(found))
	for _, page := range found {
		present[prefixed(page)] = struct{}{}
	}
	var missing []string
	for _, key := range keys {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	return found, missing, nil
}

func prefixed(page *interfaces.PageRecord) string {
	return titles.Title{Namespace: page.Namespace, Text: page.Title}.PrefixedText()
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
