package review_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stewardhq/steward/internal/review"
)

var _ = Describe("Review comment template", func() {
	It("round-trips the suggested title through compose and parse", func() {
		body := review.ComposeReviewComment(
			"feat(auth): add token refresh",
			"Adds automatic token refresh to the auth client.",
			"- auth/client.go:42: consider a jitter on the refresh timer",
		)

		title, ok := review.ParseSuggestedTitle(body)

		Expect(ok).To(BeTrue())
		Expect(title).To(Equal("feat(auth): add token refresh"))
	})

	It("renders all three sections", func() {
		body := review.ComposeReviewComment("fix: typo", "Fixes a typo.", "No change requests necessary.")

		Expect(body).To(ContainSubstring("**Suggested PR Title:**"))
		Expect(body).To(ContainSubstring("**Change Summary:**\nFixes a typo."))
		Expect(body).To(ContainSubstring("**Code Review:**\nNo change requests necessary."))
	})

	Describe("ParseSuggestedTitle", func() {
		It("rejects bodies without the template", func() {
			_, ok := review.ParseSuggestedTitle("just a regular comment")

			Expect(ok).To(BeFalse())
		})

		It("rejects an empty body", func() {
			_, ok := review.ParseSuggestedTitle("")

			Expect(ok).To(BeFalse())
		})
	})

	Describe("MatchesReviewComment", func() {
		It("recognizes a composed review comment", func() {
			body := review.ComposeReviewComment("fix: typo", "s", "r")

			Expect(review.MatchesReviewComment(body)).To(BeTrue())
		})

		It("ignores unrelated comments", func() {
			Expect(review.MatchesReviewComment("bump")).To(BeFalse())
		})
	})
})
