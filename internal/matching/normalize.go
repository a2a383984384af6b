package matching

import "strings"

// NormalizeToken lowercases and trims an interest tag. Comparison between
// profile interests and event tags happens on normalized tokens only, so
// "Spanish ", "spanish" and "SPANISH" are the same tag. Unknown tokens are
// ordinary tokens; there is no stemming or synonym expansion.
func NormalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSet normalizes every token, drops empties, and collapses
// duplicates. Order of first occurrence is preserved.
func NormalizeSet(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		n := NormalizeToken(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Overlap returns the size of the intersection of two normalized token sets.
func Overlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}
