package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProps = `# build metadata
build.label = nightly
version = 1.0.0
versions.doc = https://wiki/versions
version = 9.9.9
`

func TestRewriteAntProperty(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "build.properties", sampleProps)
	report, lines := captureReporter()

	changed, err := RewriteAntProperty(dir, "build.properties", "version", "2.0.0", report)
	require.NoError(t, err)
	assert.True(t, changed)

	out := readFixture(t, path)
	// Only the first assignment changes; comments and lookalike keys stay.
	assert.Contains(t, out, "version = 2.0.0\n")
	assert.Contains(t, out, "version = 9.9.9\n")
	assert.Contains(t, out, "# build metadata\n")
	assert.Contains(t, out, "versions.doc = https://wiki/versions\n")
	assert.Contains(t, *lines, "Property version updated to 2.0.0 in "+path)
}

func TestRewriteAntProperty_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "build.properties", sampleProps)
	report, _ := captureReporter()

	changed, err := RewriteAntProperty(dir, "build.properties", "version", "2.0.0", report)
	require.NoError(t, err)
	require.True(t, changed)
	after := readFixture(t, path)

	changed, err = RewriteAntProperty(dir, "build.properties", "version", "2.0.0", report)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, after, readFixture(t, path))
}

func TestRewriteAntProperty_NormalizesSpacing(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "build.properties", "  version=1.0.0\n")
	report, _ := captureReporter()

	changed, err := RewriteAntProperty(dir, "build.properties", "version", "2.0.0", report)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "version = 2.0.0\n", readFixture(t, path))
}

func TestRewriteAntProperty_CustomKey(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "app.properties", "app.version = 1.0.0\napplication = demo\n")
	report, _ := captureReporter()

	changed, err := RewriteAntProperty(dir, "app.properties", "app.version", "2.0.0", report)
	require.NoError(t, err)
	assert.True(t, changed)

	out := readFixture(t, path)
	assert.Contains(t, out, "app.version = 2.0.0\n")
	assert.Contains(t, out, "application = demo\n")
}

func TestRewriteAntProperty_KeyMissing(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "build.properties", "release = false\n")
	report, lines := captureReporter()

	changed, err := RewriteAntProperty(dir, "build.properties", "version", "2.0.0", report)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "release = false\n", readFixture(t, path))
	assert.Contains(t, *lines, "Property version not found in "+path)
}

func TestRewriteAntProperty_FileMissing(t *testing.T) {
	report, _ := captureReporter()
	_, err := RewriteAntProperty(t.TempDir(), "build.properties", "version", "2.0.0", report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build.properties not found")
}

func TestRewriteAntProperty_FindsNestedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "conf/build.properties", "version = 1.0.0\n")
	report, _ := captureReporter()

	changed, err := RewriteAntProperty(dir, "build.properties", "version", "2.0.0", report)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "version = 2.0.0\n", readFixture(t, path))
}
