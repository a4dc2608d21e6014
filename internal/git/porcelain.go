package git

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseStatusPorcelain classifies `git status --porcelain` lines into
// modified, added, and deleted paths. Untracked, renamed, and unmerged
// entries are ignored.
func ParseStatusPorcelain(out string) Changes {
	var ch Changes
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := strings.TrimSpace(line[:2])
		path := strings.TrimSpace(line[3:])
		switch code {
		case "M", "MM":
			ch.Modified = append(ch.Modified, path)
		case "A", "AM":
			ch.Added = append(ch.Added, path)
		case "D", "DM":
			ch.Deleted = append(ch.Deleted, path)
		}
	}
	return ch
}

// NextTagSuffix computes the progressive suffix for base from the local
// tags sorted highest version first: one past the highest existing
// base<prefix>NNN tag, rendered with the configured format verb, so "03d"
// zero-pads to three digits. With no matching tag the sequence starts at 1.
func NextTagSuffix(tags []string, base, format, prefix string) string {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(base+prefix) + `(\d+)$`)
	last := 0
	for _, t := range tags {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			last = n
		}
		break
	}
	if format == "" {
		format = "d"
	}
	return prefix + fmt.Sprintf("%"+format, last+1)
}
