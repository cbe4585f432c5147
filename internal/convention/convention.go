// Package convention checks pull request titles against the Conventional
// Commits format: type[(scope)]: description.
package convention

import "strings"

var allowedTypes = []string{
	"feat",
	"fix",
	"perf",
	"refactor",
	"docs",
	"style",
	"test",
	"revert",
	"release",
	"chore",
}

// IsConventionalTitle reports whether title follows the Conventional Commits
// format. The text before the first ':', stripped of any "(scope)" suffix
// and trimmed, must be one of the allowed types; a title without ':' is
// never valid.
func IsConventionalTitle(title string) bool {
	if !strings.Contains(title, ":") {
		return false
	}

	prefix := strings.SplitN(title, ":", 2)[0]
	typ := strings.TrimSpace(strings.SplitN(prefix, "(", 2)[0])

	for _, allowed := range allowedTypes {
		if typ == allowed {
			return true
		}
	}
	return false
}
