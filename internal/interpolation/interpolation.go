package interpolation

import (
	"regexp"
	"sort"
)

// patterns detect format arguments in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),         // ${value}
	regexp.MustCompile(`\{[a-zA-Z0-9_]+\}`),                    // {0}, {Damage}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpq]`), // %d, %s, %2d, ...
}

// varMatch stores a detected variable position.
type varMatch struct {
	start, end int
	value      string
}

// Extract returns the format arguments found in text, sorted, with
// duplicates kept. Overlapping matches keep the earliest, longest one.
// A %% escape is not an argument.
func Extract(text string) []string {
	var matches []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			matches = append(matches, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end-matches[i].start > matches[j].end-matches[j].start
	})

	var vars []string
	lastEnd := -1
	for _, m := range matches {
		if m.start < lastEnd || isEscapedPercent(text, m.start) {
			continue
		}
		vars = append(vars, m.value)
		lastEnd = m.end
	}

	sort.Strings(vars)
	return vars
}

// Drifted reports whether two strings carry different format arguments,
// e.g. a translation that lost the {0} of its source.
func Drifted(source, translation string) bool {
	a, b := Extract(source), Extract(translation)
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// isEscapedPercent reports whether the '%' at i is preceded by an odd run of '%'.
func isEscapedPercent(text string, i int) bool {
	if text[i] != '%' {
		return false
	}
	n := 0
	for j := i - 1; j >= 0 && text[j] == '%'; j-- {
		n++
	}
	return n%2 == 1
}
