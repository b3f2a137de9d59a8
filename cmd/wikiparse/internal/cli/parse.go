package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	wikiparse "github.com/goliatone/go-wikiparse"
	"github.com/goliatone/go-wikiparse/cmd/wikiparse/internal/bootstrap"
	"github.com/goliatone/go-wikiparse/internal/commands"
)

const formatJSON = "json"

type parseFlags struct {
	text         string
	file         string
	title        string
	page         string
	pageID       int64
	oldID        int64
	revID        int64
	redirects    bool
	section      string
	sectionTitle string
	contentModel string
	summary      string
	props        string
	pst          bool
	onlyPST      bool
	preview      bool
	useSkin      string
	wrapClass    string

	disableLimitReport bool
	disablePP          bool
	disableTOC         bool
	disableEditSection bool

	user     string
	userID   int64
	rights   string
	seedFile string
}

type parseOutput struct {
	Parse     *wikiparse.Result   `json:"parse"`
	CacheMode wikiparse.CacheMode `json:"cachemode"`
}

type errorOutput struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// ErrParseFailed signals that the error body was already written to stdout.
var ErrParseFailed = errors.New("parse failed")

func newParseCommand(global *globalFlags) *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse wikitext or a stored page",
		Long: `Parse wikitext given with --text or --file (use "-" for stdin), or a
stored page selected with --page, --pageid or --oldid. The result is
printed as JSON in the same shape the parse action returns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := global.buildModule()
			if err != nil {
				return err
			}
			defer module.Close()

			if flags.seedFile != "" {
				file, err := bootstrap.LoadSeedFile(flags.seedFile)
				if err != nil {
					return err
				}
				logger := commands.CommandLogger(module.Container().LoggerProvider(), "seed")
				if _, err := bootstrap.Seed(cmd.Context(), module.Store(), module.Container().Site(), file, flags.seedFile, logger); err != nil {
					return err
				}
			}

			req, err := flags.request(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")

			res, err := module.Parse(cmd.Context(), req)
			if err != nil {
				code := wikiparse.Code(err)
				if code == "" {
					return err
				}
				if encErr := enc.Encode(errorOutput{Error: errorBody{Code: code, Info: err.Error()}}); encErr != nil {
					return encErr
				}
				return ErrParseFailed
			}
			return enc.Encode(parseOutput{Parse: res, CacheMode: res.CacheMode})
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.text, "text", "", "wikitext to parse")
	f.StringVar(&flags.file, "file", "", "read wikitext from a file, or - for stdin")
	f.StringVar(&flags.title, "title", "", "title the text is parsed as")
	f.StringVar(&flags.page, "page", "", "parse the current revision of this page")
	f.Int64Var(&flags.pageID, "pageid", 0, "parse the current revision of this page ID")
	f.Int64Var(&flags.oldID, "oldid", 0, "parse this revision ID")
	f.Int64Var(&flags.revID, "revid", 0, "revision ID used for {{REVISIONID}} in text parses")
	f.BoolVar(&flags.redirects, "redirects", false, "follow a redirect on --page or --pageid")
	f.StringVar(&flags.section, "section", "", "section number, T-n for template sections, or new")
	f.StringVar(&flags.sectionTitle, "sectiontitle", "", "title of a new section")
	f.StringVar(&flags.contentModel, "contentmodel", "", "content model of the input text")
	f.StringVar(&flags.summary, "summary", "", "edit summary to parse")
	f.StringVar(&flags.props, "prop", "", "pipe separated list of result properties")
	f.BoolVar(&flags.pst, "pst", false, "apply pre-save transform to the text")
	f.BoolVar(&flags.onlyPST, "onlypst", false, "return only the pre-save transformed text")
	f.BoolVar(&flags.preview, "preview", false, "parse in preview mode")
	f.StringVar(&flags.useSkin, "useskin", "", "skin to decorate the output with")
	f.StringVar(&flags.wrapClass, "wrapoutputclass", "", "CSS class of the output wrapper")
	f.BoolVar(&flags.disableLimitReport, "disablelimitreport", false, "omit the limit report")
	f.BoolVar(&flags.disablePP, "disablepp", false, "omit the limit report (deprecated alias)")
	f.BoolVar(&flags.disableTOC, "disabletoc", false, "omit the table of contents")
	f.BoolVar(&flags.disableEditSection, "disableeditsection", false, "omit section edit links")
	f.StringVar(&flags.user, "user", "127.0.0.1", "caller name or IP")
	f.Int64Var(&flags.userID, "user-id", 0, "caller account ID; 0 is anonymous")
	f.StringVar(&flags.rights, "rights", "read", "comma separated caller rights")
	f.StringVar(&flags.seedFile, "seed", "", "YAML seed file loaded before parsing")

	return cmd
}

func (f *parseFlags) request(cmd *cobra.Command) (wikiparse.Request, error) {
	req := wikiparse.Request{
		Caller: wikiparse.Caller{
			ID:     f.userID,
			Name:   f.user,
			Rights: bootstrap.SplitList(f.rights),
		},
		Title:              f.title,
		Page:               f.page,
		PageID:             f.pageID,
		OldID:              f.oldID,
		RevID:              f.revID,
		Redirects:          f.redirects,
		Section:            f.section,
		ContentModel:       f.contentModel,
		Props:              bootstrap.SplitList(f.props),
		PST:                f.pst,
		OnlyPST:            f.onlyPST,
		Preview:            f.preview,
		UseSkin:            f.useSkin,
		WrapOutputClass:    f.wrapClass,
		DisableLimitReport: f.disableLimitReport,
		DisablePP:          f.disablePP,
		DisableTOC:         f.disableTOC,
		DisableEditSection: f.disableEditSection,
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("text"):
		text := f.text
		req.Text = &text
	case f.file != "":
		text, err := readInput(f.file, cmd.InOrStdin())
		if err != nil {
			return req, err
		}
		req.Text = &text
	}
	if flags.Changed("sectiontitle") {
		sectionTitle := f.sectionTitle
		req.SectionTitle = &sectionTitle
	}
	if flags.Changed("summary") {
		summary := f.summary
		req.Summary = &summary
	}
	return req, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		raw []byte
		err error
	)
	if strings.TrimSpace(path) == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(raw), nil
}
