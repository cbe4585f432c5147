package review

import (
	"fmt"
	"regexp"
	"strings"
)

// The review comment is the only place the suggested title is persisted; the
// apply-suggestion path recovers it later by re-parsing the comment body.
// Compose and Parse below must stay in lockstep.

var suggestedTitlePattern = regexp.MustCompile("\\*\\*Suggested PR Title:\\*\\*\n\n```\n(.*)\n```")

// ComposeReviewComment renders the fixed review-result template: fenced
// suggested title, change summary, review text.
func ComposeReviewComment(title, summary, reviewText string) string {
	return fmt.Sprintf("**Suggested PR Title:**\n\n```\n%s\n```\n\n**Change Summary:**\n%s\n\n**Code Review:**\n%s",
		title, summary, reviewText)
}

// ParseSuggestedTitle extracts the suggested title from a previously posted
// review comment. Returns false when the body does not match the template.
func ParseSuggestedTitle(body string) (string, bool) {
	m := suggestedTitlePattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// MatchesReviewComment reports whether a comment body carries a recoverable
// suggestion.
func MatchesReviewComment(body string) bool {
	return suggestedTitlePattern.MatchString(body)
}
