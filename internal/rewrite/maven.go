// Package rewrite edits project descriptors in place: Maven POMs, Ant
// property files, and npm manifests. Edits touch only the targeted values
// so the surrounding bytes survive a commit diff.
package rewrite

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/mfiorini/relhand/internal/config"
)

// Reporter receives one line per rewrite decision. The reconcile loop fans
// these out to the operator and the log file.
type Reporter func(format string, args ...any)

// MavenOptions configures a POM rewrite. Empty fields leave the
// corresponding elements alone.
type MavenOptions struct {
	Namespace     string
	Version       string
	ParentVersion string
	Properties    []config.Property
	Dependencies  []config.Dependency
	ExactMatch    bool
}

// RewriteMavenTree rewrites every pom.xml under root and reports whether
// any file changed.
func RewriteMavenTree(root string, opts MavenOptions, report Reporter) (bool, error) {
	changed := false
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
		if d.Name() != "pom.xml" {
			return nil
		}
		fileChanged, err := RewriteMavenFile(path, opts, report)
		if err != nil {
			return err
		}
		changed = changed || fileChanged
		return nil
	})
	return changed, err
}

// RewriteMavenFile applies opts to a single POM. The file is rewritten only
// when an element actually changed, so repeated runs converge without
// touching the file again.
func RewriteMavenFile(path string, opts MavenOptions, report Reporter) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	root := doc.Root()
	if root == nil {
		return false, fmt.Errorf("parse %s: no root element", path)
	}

	pom := &pomFile{ns: opts.Namespace, uris: resolveNamespaces(root)}
	if !pom.inNS(root) {
		report("Namespace %s not declared on the root element of %s, leaving file alone", opts.Namespace, path)
		return false, nil
	}

	changed := false
	set := func(el *etree.Element, val string) bool {
		if el.Text() == val {
			return false
		}
		el.SetText(val)
		changed = true
		return true
	}

	if opts.Version != "" {
		if el := pom.childNamed(root, "version"); el != nil && set(el, opts.Version) {
			report("Project version updated to %s in %s", opts.Version, path)
		}
	}

	if opts.ParentVersion != "" {
		if parent := pom.childNamed(root, "parent"); parent != nil {
			if el := pom.childNamed(parent, "version"); el != nil && set(el, opts.ParentVersion) {
				report("Parent version updated to %s in %s", opts.ParentVersion, path)
			}
		}
	}

	if len(opts.Properties) > 0 {
		props := pom.findFirst(root, "properties")
		if props == nil {
			report("No properties section in %s", path)
		} else {
			for _, cp := range opts.Properties {
				el := pom.childNamed(props, cp.Name)
				if el == nil {
					report("Property %s not found in %s", cp.Name, path)
					continue
				}
				if set(el, cp.Value) {
					report("Property %s updated to %s in %s", cp.Name, cp.Value, path)
				}
			}
		}
	}

	for _, dep := range pom.findAll(root, "dependency") {
		art := pom.childNamed(dep, "artifactId")
		ver := pom.childNamed(dep, "version")
		if art == nil || ver == nil {
			continue
		}
		id := strings.TrimSpace(art.Text())
		if id == "" {
			continue
		}
		for _, cd := range opts.Dependencies {
			if !matchArtifact(id, cd.Name, opts.ExactMatch) {
				continue
			}
			if set(ver, cd.Version) {
				report("Dependency %s updated to %s in %s", cd.Name, cd.Version, path)
			}
		}
	}

	if !changed {
		return false, nil
	}
	if err := doc.WriteToFile(path); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// matchArtifact reports whether a descriptor artifactId is covered by the
// configured dependency name. In contains mode the configured name
// "core-utils-parent" covers the "core-utils" artifact.
func matchArtifact(artifactID, configured string, exact bool) bool {
	if exact {
		return artifactID == configured
	}
	return strings.Contains(configured, artifactID)
}

// pomFile pairs a parsed POM with the resolved namespace of each element.
type pomFile struct {
	ns   string
	uris map[*etree.Element]string
}

func (p *pomFile) inNS(el *etree.Element) bool {
	return p.uris[el] == p.ns
}

func (p *pomFile) childNamed(parent *etree.Element, tag string) *etree.Element {
	for _, el := range parent.ChildElements() {
		if el.Tag == tag && p.inNS(el) {
			return el
		}
	}
	return nil
}

// findFirst returns the first matching descendant in document order.
func (p *pomFile) findFirst(parent *etree.Element, tag string) *etree.Element {
	for _, el := range parent.ChildElements() {
		if el.Tag == tag && p.inNS(el) {
			return el
		}
		if found := p.findFirst(el, tag); found != nil {
			return found
		}
	}
	return nil
}

func (p *pomFile) findAll(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, el := range parent.ChildElements() {
		if el.Tag == tag && p.inNS(el) {
			out = append(out, el)
		}
		out = append(out, p.findAll(el, tag)...)
	}
	return out
}

// resolveNamespaces maps every element to its namespace URI, honoring
// xmlns declarations in scope. Elements with an undeclared prefix map to
// the empty string.
func resolveNamespaces(root *etree.Element) map[*etree.Element]string {
	uris := make(map[*etree.Element]string)
	var walk func(el *etree.Element, scope map[string]string)
	walk = func(el *etree.Element, scope map[string]string) {
		declares := false
		for _, a := range el.Attr {
			if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
				declares = true
				break
			}
		}
		if declares {
			next := make(map[string]string, len(scope)+1)
			for k, v := range scope {
				next[k] = v
			}
			for _, a := range el.Attr {
				switch {
				case a.Space == "" && a.Key == "xmlns":
					next[""] = a.Value
				case a.Space == "xmlns":
					next[a.Key] = a.Value
				}
			}
			scope = next
		}
		uris[el] = scope[el.Space]
		for _, child := range el.ChildElements() {
			walk(child, scope)
		}
	}
	walk(root, map[string]string{})
	return uris
}
