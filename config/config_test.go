package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/markscan/markup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, markup.AllKinds, cfg.Kinds)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
format = "json"
extensions = ["md", ".rst"]
kinds = ["inline", "autolink"]

[cache]
enabled = true
max_cost = 4096

[log]
verbosity = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{".md", ".rst"}, cfg.Extensions)
	assert.Equal(t, []markup.Kind{markup.Inline, markup.Autolink}, cfg.Kinds)
	assert.Equal(t, 4096, cfg.Cache.MaxCost)
	assert.Equal(t, 2, cfg.Log.Verbosity)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `format = "json"`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxCost, cfg.Cache.MaxCost)
	assert.Equal(t, Default().Extensions, cfg.Extensions)
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"unknown key":    `colour = "red"`,
		"unknown kind":   `kinds = ["footnote"]`,
		"unknown format": `format = "xml"`,
		"no kinds":       `kinds = []`,
		"negative cost":  "[cache]\nmax_cost = -1",
		"not toml":       `format = `,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), content))
			assert.Error(t, err)
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `format = "json"`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, ok := Find(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, FileName), path)

	cfg, err := LoadOrDefault(nested)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
}

func TestMatches(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Matches("docs/README.md"))
	assert.True(t, cfg.Matches("NOTES.MD"))
	assert.False(t, cfg.Matches("main.go"))
}

func TestNewDetector(t *testing.T) {
	cfg := Default()
	cfg.Kinds = []markup.Kind{markup.Autolink}

	d, err := cfg.NewDetector(prometheus.NewRegistry())
	require.NoError(t, err)

	links := d.Find("[a](b) <https://x.org>")
	require.Len(t, links, 1)
	assert.Equal(t, markup.Autolink, links[0].Kind)
}
