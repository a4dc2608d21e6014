package rewrite

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mfiorini/relhand/internal/config"
)

// manifestSections are the npm dependency maps a pinned version applies to.
var manifestSections = []string{
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"optionalDependencies",
}

// RewriteAngularManifest updates the top-level version and any pinned
// dependencies of an npm manifest, splicing values in place so formatting
// and key order survive. A manifest that does not parse as JSON is left
// untouched and reported as an error.
func RewriteAngularManifest(root, fileName, version string, deps []config.Dependency, report Reporter) (bool, error) {
	path, err := findFile(root, fileName)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !gjson.ValidBytes(data) {
		return false, fmt.Errorf("malformed JSON in %s", path)
	}

	out := data
	if version != "" {
		cur := gjson.GetBytes(out, "version")
		switch {
		case !cur.Exists():
			report("No version field in %s", path)
		case cur.String() != version:
			if out, err = sjson.SetBytes(out, "version", version); err != nil {
				return false, fmt.Errorf("set version in %s: %w", path, err)
			}
			report("Project version updated to %s in %s", version, path)
		}
	}

	for _, dep := range deps {
		for _, section := range manifestSections {
			jsonPath := section + "." + escapeJSONPath(dep.Name)
			cur := gjson.GetBytes(out, jsonPath)
			if !cur.Exists() || cur.String() == dep.Version {
				continue
			}
			if out, err = sjson.SetBytes(out, jsonPath, dep.Version); err != nil {
				return false, fmt.Errorf("set %s in %s: %w", dep.Name, path, err)
			}
			report("Dependency %s updated to %s in %s (%s)", dep.Name, dep.Version, path, section)
		}
	}

	if bytes.Equal(out, data) {
		return false, nil
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// escapeJSONPath escapes gjson path metacharacters so npm package names
// like @acme/ui-kit or lodash.merge address a literal key instead of a
// modifier or wildcard.
func escapeJSONPath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '@', '#':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
