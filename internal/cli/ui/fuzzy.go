package ui

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the maximum edit distance to consider for fuzzy matching
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions is the maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

type suggestion struct {
	value    string
	distance int
}

// SuggestPlugins proposes plugin URIs for a mistyped or partial URI. A
// candidate matches when the whole URI is a few edits away, when its last
// path segment is close to target's, or when that segment contains it.
// Short names tolerate fewer edits.
func SuggestPlugins(target string, uris []string) []string {
	t := strings.ToLower(target)
	tail := strings.ToLower(lastSegment(target))
	limit := len([]rune(tail)) / 2
	if limit > DefaultMaxDistance {
		limit = DefaultMaxDistance
	}

	matches := make([]suggestion, 0)
	for _, uri := range uris {
		best := -1
		if d := LevenshteinDistance(t, strings.ToLower(uri)); d <= DefaultMaxDistance {
			best = d
		}
		if tail != "" {
			segment := strings.ToLower(lastSegment(uri))
			if d := LevenshteinDistance(tail, segment); d <= limit && (best < 0 || d < best) {
				best = d
			}
			if strings.Contains(segment, tail) && (best < 0 || best > 1) {
				best = 1
			}
		}
		if best >= 0 {
			matches = append(matches, suggestion{value: uri, distance: best})
		}
	}
	return top(matches, DefaultMaxSuggestions)
}

func top(matches []suggestion, n int) []string {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	result := make([]string, 0, n)
	for i := 0; i < len(matches) && i < n; i++ {
		result = append(result, matches[i].value)
	}
	return result
}

// lastSegment returns the part of a URI after its last '/', '#' or ':'
func lastSegment(uri string) string {
	trimmed := strings.TrimRight(uri, "/#")
	if i := strings.LastIndexAny(trimmed, "/#:"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// LevenshteinDistance calculates the Levenshtein distance between two
// strings, counting runes rather than bytes.
//
// Example:
//
//	LevenshteinDistance("kitten", "sitting") // Returns: 3
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// two rows are enough
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
