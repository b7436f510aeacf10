package snapshot

import (
	"os"
	"regexp"
)

// placeholderPattern matches ${NAME} placeholders in command strings and
// pipe file names.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveEnv builds the placeholder->value table for a step's env map
// (spec §4.12's env mapper): each placeholder name maps to the named
// process environment variable's value, or is omitted when that variable
// is unset.
func ResolveEnv(envMap map[string]string) map[string]string {
	resolved := make(map[string]string, len(envMap))
	for placeholder, sourceVar := range envMap {
		if v, ok := os.LookupEnv(sourceVar); ok {
			resolved[placeholder] = v
		}
	}
	return resolved
}

// Substitute replaces every ${NAME} in s with resolved[NAME], leaving
// unmatched placeholders untouched.
func Substitute(s string, resolved map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := resolved[name]; ok {
			return v
		}
		return match
	})
}
