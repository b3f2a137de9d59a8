package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-wikiparse/internal/logging"
	"github.com/goliatone/go-wikiparse/pkg/interfaces"
)

type quietProvider struct{}

func (quietProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(BuildInfo{Version: "test", Commit: "abc", Date: "today"}, &globalFlags{loggerProvider: quietProvider{}})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommandText(t *testing.T) {
	out, err := execute(t, "", "parse", "--text", "Hello {{PAGENAME}}", "--title", "Test", "--prop", "text", "--disablelimitreport")
	require.NoError(t, err)

	var payload struct {
		Parse struct {
			Title string `json:"title"`
			Text  string `json:"text"`
		} `json:"parse"`
		CacheMode string `json:"cachemode"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "Test", payload.Parse.Title)
	assert.Equal(t, "<div class=\"mw-parser-output\"><p>Hello Test\n</p></div>", payload.Parse.Text)
	assert.Equal(t, "anon-public-user-private", payload.CacheMode)
}

func TestParseCommandStdin(t *testing.T) {
	out, err := execute(t, "Hi {{PAGENAME}}", "parse", "--file", "-", "--title", "Stdin", "--prop", "text", "--disablelimitreport")
	require.NoError(t, err)
	assert.Contains(t, out, "Hi Stdin")
}

func TestParseCommandSeededPage(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
pages:
  - title: Home
    revisions:
      - text: "Welcome home"
`), 0o600))

	out, err := execute(t, "", "parse", "--seed", seed, "--page", "Home", "--prop", "text|revid", "--disablelimitreport")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome home")
	assert.Contains(t, out, `"revid": 1`)
}

func TestParseCommandErrorBody(t *testing.T) {
	out, err := execute(t, "", "parse", "--page", "Missing")
	require.ErrorIs(t, err, ErrParseFailed)

	var payload errorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "missingtitle", payload.Error.Code)
}

func TestSeedCommandRequiresPersistentStorage(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("pages: []\n"), 0o600))

	_, err := execute(t, "", "seed", seed)
	assert.ErrorIs(t, err, ErrSeedNeedsDSN)
}

func TestSkinsCommand(t *testing.T) {
	out, err := execute(t, "", "skins")
	require.NoError(t, err)
	assert.Equal(t, "apioutput\nminerva\nmonobook\nvector\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "wikiparse test (commit abc, built today)\n", out)
}

func TestParseCommandFlags(t *testing.T) {
	cmd := newParseCommand(&globalFlags{})
	for _, name := range []string{"text", "file", "page", "pageid", "oldid", "section", "prop", "useskin", "seed"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
