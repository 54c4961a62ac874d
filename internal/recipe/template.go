package recipe

import (
	"github.com/wasilibs/go-re2"
)

var placeholderPattern = re2.MustCompile(`\{\{\s*([a-zA-Z0-9_.-]+)\s*\}\}`)

// Render replaces {{key}} placeholders with vars[key]. Unknown keys render empty.
// There are no conditionals or expressions.
func Render(raw string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(raw, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return ""
		}
		return vars[groups[1]]
	})
}

// Placeholders returns the distinct keys referenced by raw in order of appearance.
func Placeholders(raw string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, groups := range placeholderPattern.FindAllStringSubmatch(raw, -1) {
		if !seen[groups[1]] {
			seen[groups[1]] = true
			keys = append(keys, groups[1])
		}
	}
	return keys
}
