package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfiorini/relhand/internal/config"
)

const sampleManifest = `{
  "name": "acme-portal",
  "version": "1.0.0",
  "scripts": {
    "build": "ng build"
  },
  "dependencies": {
    "@acme/ui-kit": "1.0.0",
    "lodash.merge": "4.6.2"
  },
  "devDependencies": {
    "@acme/ui-kit": "1.0.0",
    "typescript":    "5.1.3"
  },
  "peerDependencies": {
    "@acme/ui-kit": "1.0.0"
  }
}
`

func TestRewriteAngularManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "package.json", sampleManifest)
	report, lines := captureReporter()

	changed, err := RewriteAngularManifest(dir, "package.json", "2.0.0", []config.Dependency{
		{Name: "@acme/ui-kit", Version: "2.0.0"},
		{Name: "lodash.merge", Version: "4.7.0"},
	}, report)
	require.NoError(t, err)
	assert.True(t, changed)

	out := readFixture(t, path)
	assert.Contains(t, out, `"version": "2.0.0"`)
	assert.Contains(t, out, `"lodash.merge": "4.7.0"`)
	assert.NotContains(t, out, `"@acme/ui-kit": "1.0.0"`)
	// Untouched entries keep their original bytes, odd spacing included.
	assert.Contains(t, out, `"typescript":    "5.1.3"`)
	assert.Contains(t, out, `"build": "ng build"`)
	// The scoped dependency is pinned once per section it appears in.
	assert.Contains(t, *lines, "Dependency @acme/ui-kit updated to 2.0.0 in "+path+" (dependencies)")
	assert.Contains(t, *lines, "Dependency @acme/ui-kit updated to 2.0.0 in "+path+" (devDependencies)")
	assert.Contains(t, *lines, "Dependency @acme/ui-kit updated to 2.0.0 in "+path+" (peerDependencies)")
}

func TestRewriteAngularManifest_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "package.json", sampleManifest)
	report, _ := captureReporter()
	deps := []config.Dependency{{Name: "@acme/ui-kit", Version: "2.0.0"}}

	changed, err := RewriteAngularManifest(dir, "package.json", "2.0.0", deps, report)
	require.NoError(t, err)
	require.True(t, changed)
	after := readFixture(t, path)

	changed, err = RewriteAngularManifest(dir, "package.json", "2.0.0", deps, report)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, after, readFixture(t, path))
}

func TestRewriteAngularManifest_NoMatches(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "package.json", `{"name": "bare"}`)
	report, lines := captureReporter()

	changed, err := RewriteAngularManifest(dir, "package.json", "2.0.0", []config.Dependency{
		{Name: "left-pad", Version: "1.3.0"},
	}, report)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, `{"name": "bare"}`, readFixture(t, path))
	assert.Contains(t, *lines, "No version field in "+path)
}

func TestRewriteAngularManifest_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "package.json", `{"version": }`)
	report, _ := captureReporter()

	_, err := RewriteAngularManifest(dir, "package.json", "2.0.0", nil, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON")
	assert.Equal(t, `{"version": }`, readFixture(t, path))
}

func TestRewriteAngularManifest_FileMissing(t *testing.T) {
	report, _ := captureReporter()
	_, err := RewriteAngularManifest(t.TempDir(), "package.json", "2.0.0", nil, report)
	require.Error(t, err)
}
