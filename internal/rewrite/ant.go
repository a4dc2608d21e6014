package rewrite

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// RewriteAntProperty finds fileName under root and replaces its first
// `key = value` assignment, leaving every other byte of the file intact.
func RewriteAntProperty(root, fileName, key, value string, report Reporter) (bool, error) {
	path, err := findFile(root, fileName)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=.*$`)
	loc := re.FindIndex(data)
	if loc == nil {
		report("Property %s not found in %s", key, path)
		return false, nil
	}

	line := []byte(key + " = " + value)
	if bytes.Equal(data[loc[0]:loc[1]], line) {
		return false, nil
	}

	out := make([]byte, 0, len(data)-(loc[1]-loc[0])+len(line))
	out = append(out, data[:loc[0]]...)
	out = append(out, line...)
	out = append(out, data[loc[1]:]...)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	report("Property %s updated to %s in %s", key, value, path)
	return true, nil
}

// findFile walks root and returns the first file with the given base name.
func findFile(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%s not found under %s", name, root)
	}
	return found, nil
}
