// Package config loads the release configuration file and resolves the
// {field} placeholders projects may use to reference other fields.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProjectType selects which descriptor rewriter and build tool apply.
type ProjectType string

const (
	TypeMaven   ProjectType = "Maven"
	TypeAnt     ProjectType = "Ant"
	TypeAngular ProjectType = "Angular"
)

// ResetMode maps onto the git reset flags of the same name.
type ResetMode string

const (
	ResetSoft  ResetMode = "soft"
	ResetMixed ResetMode = "mixed"
	ResetHard  ResetMode = "hard"
)

// MatchMode controls how configured dependency names are matched against
// artifact ids found in Maven descriptors.
type MatchMode string

const (
	// MatchContains matches when the descriptor's artifactId is contained
	// in the configured dependency name, so "core-utils-parent" covers the
	// "core-utils" artifact.
	MatchContains MatchMode = "contains"
	// MatchExact requires the configured name and the artifactId to be equal.
	MatchExact MatchMode = "exact"
)

// Property is a Maven <properties> entry to pin.
type Property struct {
	Name  string `yaml:"property_name"`
	Value string `yaml:"property_value"`
}

// Dependency is a dependency version to pin in a project descriptor.
type Dependency struct {
	Name    string `yaml:"dependency_name"`
	Version string `yaml:"dependency_version"`
}

// Project describes one repository under release management.
type Project struct {
	Name      string      `yaml:"name"`
	Path      string      `yaml:"project_path"`
	RemoteURL string      `yaml:"project_remote_git_url"`
	Branch    string      `yaml:"git_branch"`
	Type      ProjectType `yaml:"type"`

	// Version is the release version written into descriptors and commit
	// messages. VersionFile names the descriptor for Ant and Angular
	// projects; VersionKey is the property key rewritten in Ant files.
	Version     string `yaml:"version"`
	VersionFile string `yaml:"version_file"`
	VersionKey  string `yaml:"version_key"`

	Tag       string    `yaml:"tag"`
	ResetType ResetMode `yaml:"reset_type"`
	Skip      bool      `yaml:"skip"`

	ParentVersion string       `yaml:"parent_version"`
	Properties    []Property   `yaml:"properties"`
	Dependencies  []Dependency `yaml:"dependencies"`
}

// Config is the top-level release configuration document.
type Config struct {
	BaseDir        string `yaml:"base_dir"`
	MavenNamespace string `yaml:"maven_namespace"`
	RemoteName     string `yaml:"remote_git_repo"`

	TagSuffix       bool   `yaml:"tag_progr_suffix"`
	TagSuffixFormat string `yaml:"tag_progr_suffix_format"`
	TagSuffixPrefix string `yaml:"tag_progr_suffix_format_prefix"`

	MavenHome           string   `yaml:"maven_home"`
	MavenSettings       string   `yaml:"maven_settings"`
	MavenCompileOptions []string `yaml:"maven_compile_options"`
	AntHome             string   `yaml:"ant_home"`
	AntTarget           string   `yaml:"ant_target"`
	AntCompileOptions   []string `yaml:"ant_compile_options"`
	NodeHome            string   `yaml:"nodejs_home"`
	NodeCompileOptions  []string `yaml:"nodejs_compile_options"`

	DependencyMatch MatchMode `yaml:"dependency_match"`

	// LogFile and CommandTimeout are operational knobs owned by viper so
	// they honor RELHAND_* environment overrides and flag defaults.
	LogFile        string        `yaml:"-"`
	CommandTimeout time.Duration `yaml:"-"`

	Projects []*Project `yaml:"projects"`
}

// Loaded carries both views of the configuration: Raw as written on disk,
// and Resolved with {field} placeholders substituted.
type Loaded struct {
	Raw      *Config
	Resolved *Config
}

// Load reads the file viper located, decodes it twice (verbatim and
// placeholder-resolved), applies defaults, and validates both views.
func Load(v *viper.Viper) (*Loaded, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return nil, errors.New("no configuration file found: create relhand.yaml or pass --config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	raw, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	resolvedBytes, err := yaml.Marshal(Resolve(tree))
	if err != nil {
		return nil, fmt.Errorf("resolve placeholders: %w", err)
	}
	resolved, err := decode(resolvedBytes)
	if err != nil {
		return nil, fmt.Errorf("resolve placeholders: %w", err)
	}

	for _, c := range []*Config{raw, resolved} {
		c.applyViper(v)
		c.applyDefaults()
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return &Loaded{Raw: raw, Resolved: resolved}, nil
}

func decode(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyViper(v *viper.Viper) {
	c.LogFile = v.GetString("log_file")
	c.CommandTimeout = v.GetDuration("command_timeout")
	if s := v.GetString("remote_git_repo"); s != "" {
		c.RemoteName = s
	}
	if s := v.GetString("dependency_match"); s != "" {
		c.DependencyMatch = MatchMode(s)
	}
}

func (c *Config) applyDefaults() {
	if c.RemoteName == "" {
		c.RemoteName = "origin"
	}
	if c.TagSuffixFormat == "" {
		c.TagSuffixFormat = "03d"
	}
	if c.TagSuffixPrefix == "" {
		c.TagSuffixPrefix = "-"
	}
	if c.DependencyMatch == "" {
		c.DependencyMatch = MatchContains
	}
	if c.LogFile == "" {
		c.LogFile = "release-handler.log"
	}
	for _, p := range c.Projects {
		if p.Path == "" && c.BaseDir != "" && p.Name != "" {
			p.Path = filepath.Join(c.BaseDir, p.Name)
		}
		if p.ResetType == "" {
			p.ResetType = ResetMixed
		}
		if p.VersionKey == "" {
			p.VersionKey = "version"
		}
	}
}

// validate covers config-wide integrity. Per-project requirements are
// checked by ValidateProject when a workflow reaches the project, so one
// bad entry cannot block the rest of the fleet.
func (c *Config) validate() error {
	if len(c.Projects) == 0 {
		return errors.New("configuration has no projects")
	}
	if c.DependencyMatch != MatchContains && c.DependencyMatch != MatchExact {
		return fmt.Errorf("dependency_match must be %q or %q, got %q", MatchContains, MatchExact, c.DependencyMatch)
	}
	seen := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if p.Name == "" {
			continue
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate project name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// ValidateProject checks the fields every workflow relies on. Violations
// count as that project's failure.
func (c *Config) ValidateProject(p *Project) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Path == "" {
		return errors.New("project_path is empty and base_dir is not set")
	}
	switch p.Type {
	case TypeMaven:
		if c.MavenNamespace == "" {
			return errors.New("maven_namespace must be set for Maven projects")
		}
	case TypeAnt, TypeAngular:
		if p.VersionFile == "" {
			return fmt.Errorf("version_file is required for %s projects", p.Type)
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown type %q", p.Type)
	}
	switch p.ResetType {
	case ResetSoft, ResetMixed, ResetHard:
	default:
		return fmt.Errorf("reset_type must be soft, mixed, or hard, got %q", p.ResetType)
	}
	return nil
}
