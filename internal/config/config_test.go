package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadString(t *testing.T, doc string) (*Loaded, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relhand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return Load(v)
}

func TestLoadDefaults(t *testing.T) {
	loaded, err := loadString(t, `
base_dir: /work
projects:
  - name: svc
    type: Maven
`)
	require.NoError(t, err)

	cfg := loaded.Raw
	assert.Equal(t, "origin", cfg.RemoteName)
	assert.Equal(t, "03d", cfg.TagSuffixFormat)
	assert.Equal(t, "-", cfg.TagSuffixPrefix)
	assert.Equal(t, MatchContains, cfg.DependencyMatch)
	assert.Equal(t, "release-handler.log", cfg.LogFile)

	require.Len(t, cfg.Projects, 1)
	p := cfg.Projects[0]
	assert.Equal(t, filepath.Join("/work", "svc"), p.Path)
	assert.Equal(t, ResetMixed, p.ResetType)
	assert.Equal(t, "version", p.VersionKey)
}

func TestLoadAngularMissingVersionFile(t *testing.T) {
	// version_file is never guessed; the omission surfaces as the
	// project's own validation failure.
	loaded, err := loadString(t, `
projects:
  - name: web
    project_path: /work/web
    type: Angular
`)
	require.NoError(t, err)

	p := loaded.Raw.Projects[0]
	assert.Empty(t, p.VersionFile)
	err = loaded.Raw.ValidateProject(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version_file")
}

func TestLoadResolvedView(t *testing.T) {
	loaded, err := loadString(t, `
base_dir: /work
projects:
  - name: svc
    version: 2.0.0
    tag: rel-{name}-{version}
`)
	require.NoError(t, err)

	assert.Equal(t, "rel-{name}-{version}", loaded.Raw.Projects[0].Tag)
	assert.Equal(t, "rel-svc-2.0.0", loaded.Resolved.Projects[0].Tag)
}

func TestLoadOperationalKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relhand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
projects:
  - name: svc
    project_path: /work/svc
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("log_file", "custom.log")
	v.SetDefault("command_timeout", 5*time.Minute)
	require.NoError(t, v.ReadInConfig())

	loaded, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "custom.log", loaded.Raw.LogFile)
	assert.Equal(t, 5*time.Minute, loaded.Raw.CommandTimeout)
}

func TestLoadDuplicateName(t *testing.T) {
	_, err := loadString(t, `
projects:
  - name: svc
    project_path: /work/svc
  - name: svc
    project_path: /work/svc2
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate project name")
}

func TestLoadKeepsInvalidProjectEntries(t *testing.T) {
	// Per-project problems surface when a workflow reaches the project,
	// not at load, so the rest of the fleet still runs.
	loaded, err := loadString(t, `
projects:
  - name: svc
    project_path: /work/svc
    type: Gradle
  - name: web
    project_path: /work/web
    type: Angular
`)
	require.NoError(t, err)
	require.Len(t, loaded.Raw.Projects, 2)
}

func TestValidateProject(t *testing.T) {
	cfg := &Config{MavenNamespace: "http://maven.apache.org/POM/4.0.0"}

	cases := []struct {
		name    string
		project Project
		wantErr string
	}{
		{"maven ok", Project{Name: "svc", Path: "/w/svc", Type: TypeMaven, ResetType: ResetMixed}, ""},
		{"angular ok", Project{Name: "web", Path: "/w/web", Type: TypeAngular, VersionFile: "package.json", ResetType: ResetHard}, ""},
		{"missing name", Project{Path: "/w/svc", Type: TypeMaven, ResetType: ResetMixed}, "name is required"},
		{"missing path", Project{Name: "svc", Type: TypeMaven, ResetType: ResetMixed}, "project_path"},
		{"missing type", Project{Name: "svc", Path: "/w/svc", ResetType: ResetMixed}, "type is required"},
		{"unknown type", Project{Name: "svc", Path: "/w/svc", Type: "Gradle", ResetType: ResetMixed}, "unknown type"},
		{"ant without version file", Project{Name: "svc", Path: "/w/svc", Type: TypeAnt, ResetType: ResetMixed}, "version_file"},
		{"angular without version file", Project{Name: "web", Path: "/w/web", Type: TypeAngular, ResetType: ResetMixed}, "version_file"},
		{"bad reset type", Project{Name: "svc", Path: "/w/svc", Type: TypeMaven, ResetType: "destroy"}, "reset_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := cfg.ValidateProject(&tc.project)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateProjectMavenNeedsNamespace(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateProject(&Project{Name: "svc", Path: "/w/svc", Type: TypeMaven, ResetType: ResetMixed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maven_namespace")
}

func TestLoadNoProjects(t *testing.T) {
	_, err := loadString(t, `
base_dir: /work
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no projects")
}

func TestLoadNoConfigFile(t *testing.T) {
	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration file")
}
