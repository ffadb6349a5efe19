package prompt

import (
	"regexp"
	"strings"
)

var reConventional = regexp.MustCompile(`^[a-z]+(\([^()\s]+\))?!?: \S.*$`)

// IsConventional reports whether the first line of msg is a Conventional
// Commits header such as "feat(api)!: drop v1 routes".
func IsConventional(msg string) bool {
	header, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return reConventional.MatchString(strings.TrimSpace(header))
}
