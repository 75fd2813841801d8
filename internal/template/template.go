// Package template implements the {{name}} placeholder syntax used by
// prompt texts and exit templates. It is deliberately a narrow string
// substitution utility, not a template language.
package template

import (
	"regexp"
	"strings"
)

var placeholderRE = regexp.MustCompile(`\{\{([a-zA-Z0-9_.-]+)\}\}`)

// Placeholders returns the set of placeholder names referenced by s, in
// order of first appearance. Repeated references appear once.
func Placeholders(s string) []string {
	matches := placeholderRE.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes every occurrence of {{name}} in s with vars[name].
// Placeholders with no entry in vars are left verbatim.
func Render(s string, vars map[string]string) string {
	if len(vars) == 0 {
		return s
	}
	for name, value := range vars {
		s = strings.ReplaceAll(s, "{{"+name+"}}", value)
	}
	return s
}
