// Package shellsplit tokenizes task and step command strings the way a
// shell would, without actually invoking a shell.
package shellsplit

import "github.com/mattn/go-shellwords"

// Split breaks s into argv tokens, honoring quoting the same way
// go-shellwords' parser does for every other shell-splitting call site in
// the pack this was grounded on.
func Split(s string) ([]string, error) {
	parser := shellwords.NewParser()
	return parser.Parse(s)
}
