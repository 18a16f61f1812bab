package enrich

import (
	"regexp"
	"strings"
)

// compoundRe matches spaced or fused spellings of common compound exercise
// names ("pull ups", "pullup", "push-up") so they canonicalize to the
// hyphenated form.
var compoundRe = regexp.MustCompile(`\b(pull|push|sit|chin|step)[\s-]*(ups?)\b`)

var spaceRe = regexp.MustCompile(`\s+`)

// Canonicalize lower-cases, collapses whitespace, and hyphenates compound
// exercise names. It needs no historical data and applies to every name.
func Canonicalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = spaceRe.ReplaceAllString(s, " ")
	s = compoundRe.ReplaceAllString(s, "$1-$2")
	return s
}

// levenshtein is the edit distance between two strings. Used to match a new
// spelling against previously logged names with a conservative threshold.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
