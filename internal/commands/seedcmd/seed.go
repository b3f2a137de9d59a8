package seedcmd

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-wikiparse/internal/commands"
	"github.com/goliatone/go-wikiparse/internal/content"
	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/internal/revisions"
	"github.com/goliatone/go-wikiparse/internal/titles"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

const seedPagesMessageType = "wikiparse.pages.seed"

// Page is one page with its revisions, oldest first.
type Page struct {
	Title     string            `yaml:"title" json:"title"`
	Model     string            `yaml:"model" json:"model,omitempty"`
	Revisions []Revision        `yaml:"revisions" json:"revisions,omitempty"`
	Props     map[string]string `yaml:"props" json:"props,omitempty"`
}

type Revision struct {
	Text    string `yaml:"text" json:"text"`
	User    string `yaml:"user" json:"user,omitempty"`
	Comment string `yaml:"comment" json:"comment,omitempty"`
	// Deleted is the revision deletion bitfield.
	Deleted int `yaml:"deleted" json:"deleted,omitempty"`
}

// Summary counts what a seed run wrote.
type Summary struct {
	Pages     int
	Revisions int
}

// ResultCallback receives the summary of a seed run, including a partial one
// when a write fails.
type ResultCallback func(Summary)

// SeedPagesCommand loads pages into a content store.
type SeedPagesCommand struct {
	Source         string         `json:"source,omitempty"`
	Pages          []Page         `json:"pages"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (SeedPagesCommand) Type() string { return seedPagesMessageType }

// Validate checks what can be checked without a site: titles are present and
// deletion bitfields are not negative.
func (m SeedPagesCommand) Validate() error {
	errs := validation.Errors{}
	for i, page := range m.Pages {
		if strings.TrimSpace(page.Title) == "" {
			errs["pages"] = validation.NewError("wikiparse.pages.seed.title_required", fmt.Sprintf("pages[%d]: title is required", i))
			break
		}
		for _, rev := range page.Revisions {
			if rev.Deleted < 0 {
				errs["revisions"] = validation.NewError("wikiparse.pages.seed.deleted_invalid", fmt.Sprintf("%s: deleted must not be negative", page.Title))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SeedPagesHandler writes seed pages through the shared command handler.
type SeedPagesHandler struct {
	inner *commands.Handler[SeedPagesCommand]
}

// NewSeedPagesHandler constructs a handler writing to store. Titles are
// parsed with site.
func NewSeedPagesHandler(store revisions.Writer, site titles.Site, logger interfaces.Logger, opts ...commands.HandlerOption[SeedPagesCommand]) *SeedPagesHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SeedPagesCommand) error {
		summary, err := seed(ctx, store, site, msg.Pages)
		if msg.ResultCallback != nil {
			msg.ResultCallback(summary)
		}
		if err != nil {
			return err
		}
		baseLogger.Debug("seed written", "pages", summary.Pages, "revisions", summary.Revisions)
		return nil
	}

	handlerOpts := []commands.HandlerOption[SeedPagesCommand]{
		commands.WithLogger[SeedPagesCommand](baseLogger),
		commands.WithOperation[SeedPagesCommand]("pages.seed"),
		commands.WithMessageFields(func(msg SeedPagesCommand) map[string]any {
			fields := map[string]any{"pages": len(msg.Pages)}
			if msg.Source != "" {
				fields["source"] = msg.Source
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SeedPagesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SeedPagesCommand].
func (h *SeedPagesHandler) Execute(ctx context.Context, msg SeedPagesCommand) error {
	return h.inner.Execute(ctx, msg)
}

func seed(ctx context.Context, store revisions.Writer, site titles.Site, pages []Page) (Summary, error) {
	var summary Summary
	for _, sp := range pages {
		title, err := site.Parse(sp.Title)
		if err != nil || !title.CanExist() {
			return summary, fmt.Errorf("seed page %q: invalid title", sp.Title)
		}
		model := sp.Model
		if model == "" {
			model = content.ModelWikitext
		}
		page, err := store.CreatePage(ctx, revisions.PageInput{
			Namespace: title.Namespace,
			Title:     title.Text,
			Model:     model,
		})
		if err != nil {
			return summary, fmt.Errorf("seed page %q: %w", sp.Title, err)
		}
		summary.Pages++

		for _, rev := range sp.Revisions {
			if _, err := store.AddRevision(ctx, revisions.RevisionInput{
				PageID:  page.ID,
				Text:    rev.Text,
				Model:   model,
				User:    rev.User,
				Comment: rev.Comment,
				Deleted: rev.Deleted,
			}); err != nil {
				return summary, fmt.Errorf("seed revision of %q: %w", sp.Title, err)
			}
			summary.Revisions++
		}
		for name, value := range sp.Props {
			if err := store.SetPageProp(ctx, page.ID, name, value); err != nil {
				return summary, fmt.Errorf("seed prop %s of %q: %w", name, sp.Title, err)
			}
		}
	}
	return summary, nil
}
