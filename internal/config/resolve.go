package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolve walks a parsed YAML tree and substitutes {field} placeholders in
// every string value. Fields are looked up first in the nearest enclosing
// mapping, then in the root mapping, and may drill into lists and mappings
// with [index] accessors, e.g. {projects[0][name]}. A string whose
// placeholders cannot all be resolved is returned verbatim; {{ and }} are
// literal braces. Resolution is a single pass over the original tree, so a
// substituted value is never re-expanded.
func Resolve(root map[string]any) map[string]any {
	resolved, _ := resolveNode(root, root, root).(map[string]any)
	return resolved
}

func resolveNode(node any, nearest, root map[string]any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = resolveNode(v, n, root)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = resolveNode(v, nearest, root)
		}
		return out
	case string:
		return expand(n, nearest, root)
	default:
		return node
	}
}

// expand substitutes every {expr} token in s. Any failure, including
// unbalanced braces, leaves the whole string untouched.
func expand(s string, nearest, root map[string]any) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		switch s[i] {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return s
			}
			val, ok := lookup(s[i+1:i+1+end], nearest, root)
			if !ok {
				return s
			}
			b.WriteString(val)
			i += end + 2
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return s
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func lookup(expr string, nearest, root map[string]any) (string, bool) {
	base, rest := expr, ""
	if j := strings.IndexByte(expr, '['); j >= 0 {
		base, rest = expr[:j], expr[j:]
	}
	if base == "" || strings.ContainsAny(base, ".]{") {
		return "", false
	}

	cur, ok := nearest[base]
	if !ok {
		if cur, ok = root[base]; !ok {
			return "", false
		}
	}

	for rest != "" {
		if rest[0] != '[' {
			return "", false
		}
		end := strings.IndexByte(rest, ']')
		if end < 2 {
			return "", false
		}
		key := rest[1:end]
		rest = rest[end+1:]

		switch node := cur.(type) {
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return "", false
			}
			cur = node[idx]
		case map[string]any:
			if cur, ok = node[key]; !ok {
				return "", false
			}
		default:
			return "", false
		}
	}
	return render(cur)
}

// render turns a resolved scalar into its placeholder text. Mappings and
// lists are not substitutable.
func render(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool, int, int64, uint, uint64, float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}
