// Package questions turns a free-text question block into discrete questions.
package questions

import (
	"regexp"
	"strings"
)

// inlineSplit matches a question mark acting as an in-line separator, i.e.
// "?" directly followed by "," or ";" and optional whitespace. It lets one
// line carry several comma/semicolon-joined questions.
var inlineSplit = regexp.MustCompile(`\?[,;]\s*`)

// Parse splits a free-text block into an ordered list of non-empty question
// strings. Lines are split on newlines first; a line containing "?,"- or
// "?;"-joined fragments is split further, with a trailing "?" restored on
// every fragment that lost (or never had) one. Duplicates are kept.
func Parse(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !inlineSplit.MatchString(line) {
			out = append(out, line)
			continue
		}
		for _, frag := range inlineSplit.Split(line, -1) {
			frag = strings.TrimSpace(frag)
			if frag == "" {
				continue
			}
			if !strings.HasSuffix(frag, "?") {
				frag += "?"
			}
			out = append(out, frag)
		}
	}
	return out
}
