package interfaces

import "context"

// PageSetRequest selects pages by title or id.
type PageSetRequest struct {
	Titles          []string
	PageIDs         []int64
	FollowRedirects bool
}

// Redirect records a single hop followed while resolving a page set.
type Redirect struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Fragment string `json:"tofragment,omitempty"`
}

// PageSet is the outcome of a page-set resolution.
type PageSet struct {
	Good       []*PageRecord
	Missing    []string
	MissingIDs []int64
	Redirects  []Redirect
}

// CategoryInfo reports what the page store knows about a category page.
type CategoryInfo struct {
	Exists bool
	Hidden bool
	Known  bool
}

// PageSetResolver resolves selectors and answers batched existence queries.
type PageSetResolver interface {
	Resolve(ctx context.Context, req PageSetRequest) (*PageSet, error)
	LinkExistence(ctx context.Context, prefixedTitles []string) (map[string]int64, error)
	Categories(ctx context.Context, names []string) (map[string]CategoryInfo, error)
	CacheMode() string
}
