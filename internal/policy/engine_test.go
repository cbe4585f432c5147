package policy_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stewardhq/steward/core/config"
	"github.com/stewardhq/steward/internal/githubclient"
	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/policy"
)

func testPolicyConfig() config.PolicyConfig {
	return config.PolicyConfig{
		CloseInactivePRAfterDays: 14,
		MarkStaleIssueAfterDays:  30,
		CloseStaleIssueAfterDays: 7,
		StaleLabel:               "stale",
		ExemptLabels:             []string{"enhancement", "bug"},
	}
}

var _ = Describe("EvaluateInactivePR", func() {
	var (
		now      time.Time
		reviewAt time.Time
		pr       model.PullRequest
	)

	BeforeEach(func() {
		now = time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
		reviewAt = now.AddDate(0, 0, -20)
		pr = model.PullRequest{
			Number:    42,
			State:     model.StateOpen,
			Author:    "alice",
			UpdatedAt: reviewAt.Add(-time.Hour),
		}
	})

	changesRequested := func(at time.Time) model.Review {
		return model.Review{Reviewer: "bob", State: model.ReviewChangesRequested, SubmittedAt: at}
	}

	It("closes a pull request silent since the changes-requested review", func() {
		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, nil, now, 14)

		Expect(decision.Close).To(BeTrue())
		Expect(decision.ElapsedDays).To(Equal(20))
	})

	It("does not close at exactly the threshold", func() {
		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(now.AddDate(0, 0, -14))}, nil, now, 14)

		Expect(decision.Close).To(BeFalse())
		Expect(decision.ElapsedDays).To(Equal(14))
	})

	It("skips closed pull requests", func() {
		pr.State = model.StateClosed

		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, nil, now, 14)

		Expect(decision.Close).To(BeFalse())
	})

	It("skips drafts", func() {
		pr.Draft = true

		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, nil, now, 14)

		Expect(decision.Close).To(BeFalse())
	})

	It("does nothing without a changes-requested review", func() {
		reviews := []model.Review{
			{Reviewer: "bob", State: model.ReviewApproved, SubmittedAt: reviewAt},
			{Reviewer: "carol", State: model.ReviewCommented, SubmittedAt: reviewAt},
		}

		decision := policy.EvaluateInactivePR(pr, reviews, nil, now, 14)

		Expect(decision.Close).To(BeFalse())
	})

	It("uses only the latest changes-requested review", func() {
		reviews := []model.Review{
			changesRequested(now.AddDate(0, 0, -30)),
			changesRequested(now.AddDate(0, 0, -5)),
		}

		decision := policy.EvaluateInactivePR(pr, reviews, nil, now, 14)

		Expect(decision.Close).To(BeFalse())
		Expect(decision.ElapsedDays).To(Equal(5))
	})

	It("ignores reviews with no submission time", func() {
		reviews := []model.Review{
			changesRequested(reviewAt),
			{Reviewer: "bob", State: model.ReviewChangesRequested},
		}

		decision := policy.EvaluateInactivePR(pr, reviews, nil, now, 14)

		Expect(decision.Close).To(BeTrue())
		Expect(decision.ElapsedDays).To(Equal(20))
	})

	It("is blocked by a pull request update after the review", func() {
		pr.UpdatedAt = reviewAt.Add(time.Hour)

		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, nil, now, 14)

		Expect(decision.Close).To(BeFalse())
	})

	It("is blocked by an author comment after the review", func() {
		comments := []model.Comment{
			{Author: "alice", Body: "working on it", CreatedAt: reviewAt.Add(time.Hour)},
		}

		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, comments, now, 14)

		Expect(decision.Close).To(BeFalse())
	})

	It("is not blocked by comments from other users", func() {
		comments := []model.Comment{
			{Author: "carol", Body: "any update?", CreatedAt: reviewAt.Add(time.Hour)},
		}

		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, comments, now, 14)

		Expect(decision.Close).To(BeTrue())
	})

	It("is not blocked by author comments before the review", func() {
		comments := []model.Comment{
			{Author: "alice", Body: "please take a look", CreatedAt: reviewAt.Add(-time.Hour)},
		}

		decision := policy.EvaluateInactivePR(pr, []model.Review{changesRequested(reviewAt)}, comments, now, 14)

		Expect(decision.Close).To(BeTrue())
	})
})

var _ = Describe("Stale issue rules", func() {
	var (
		now time.Time
		cfg config.PolicyConfig
	)

	BeforeEach(func() {
		now = time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
		cfg = testPolicyConfig()
	})

	Describe("ShouldMarkStale", func() {
		It("marks an issue inactive past the threshold", func() {
			issue := model.Issue{Number: 1, State: model.StateOpen, UpdatedAt: now.AddDate(0, 0, -31)}

			Expect(policy.ShouldMarkStale(issue, now, cfg)).To(BeTrue())
		})

		It("marks at exactly the threshold", func() {
			issue := model.Issue{Number: 1, State: model.StateOpen, UpdatedAt: now.AddDate(0, 0, -30)}

			Expect(policy.ShouldMarkStale(issue, now, cfg)).To(BeTrue())
		})

		It("skips recently active issues", func() {
			issue := model.Issue{Number: 1, State: model.StateOpen, UpdatedAt: now.AddDate(0, 0, -10)}

			Expect(policy.ShouldMarkStale(issue, now, cfg)).To(BeFalse())
		})

		It("skips pull requests", func() {
			issue := model.Issue{Number: 1, PullRequest: true, UpdatedAt: now.AddDate(0, 0, -60)}

			Expect(policy.ShouldMarkStale(issue, now, cfg)).To(BeFalse())
		})

		It("skips issues with an exempt label", func() {
			issue := model.Issue{Number: 1, Labels: []string{"bug"}, UpdatedAt: now.AddDate(0, 0, -60)}

			Expect(policy.ShouldMarkStale(issue, now, cfg)).To(BeFalse())
		})

		It("skips issues already marked stale", func() {
			issue := model.Issue{Number: 1, Labels: []string{"stale"}, UpdatedAt: now.AddDate(0, 0, -60)}

			Expect(policy.ShouldMarkStale(issue, now, cfg)).To(BeFalse())
		})
	})

	Describe("ShouldPostStaleNotice", func() {
		It("posts on an issue with no comments", func() {
			Expect(policy.ShouldPostStaleNotice(nil)).To(BeTrue())
		})

		It("skips when the notice is already the most recent comment", func() {
			comments := []model.Comment{
				{Body: "some discussion"},
				{Body: policy.StaleNotice},
			}

			Expect(policy.ShouldPostStaleNotice(comments)).To(BeFalse())
		})

		It("posts again when discussion followed an earlier notice", func() {
			comments := []model.Comment{
				{Body: policy.StaleNotice},
				{Body: "still relevant?"},
			}

			Expect(policy.ShouldPostStaleNotice(comments)).To(BeTrue())
		})
	})

	Describe("ShouldCloseStale", func() {
		It("closes past the threshold", func() {
			issue := model.Issue{Number: 1, Labels: []string{"stale"}, UpdatedAt: now.AddDate(0, 0, -8)}

			Expect(policy.ShouldCloseStale(issue, now, cfg.CloseStaleIssueAfterDays)).To(BeTrue())
		})

		It("keeps issues within the threshold", func() {
			issue := model.Issue{Number: 1, Labels: []string{"stale"}, UpdatedAt: now.AddDate(0, 0, -3)}

			Expect(policy.ShouldCloseStale(issue, now, cfg.CloseStaleIssueAfterDays)).To(BeFalse())
		})

		It("never closes pull requests", func() {
			issue := model.Issue{Number: 1, PullRequest: true, UpdatedAt: now.AddDate(0, 0, -60)}

			Expect(policy.ShouldCloseStale(issue, now, cfg.CloseStaleIssueAfterDays)).To(BeFalse())
		})
	})

	DescribeTable("IsBump",
		func(body string, want bool) {
			Expect(policy.IsBump(body)).To(Equal(want))
		},
		Entry("plain bump", "bump", true),
		Entry("uppercase", "BUMP", true),
		Entry("within a sentence", "Friendly bump, still seeing this on v2.3", true),
		Entry("unrelated comment", "I have the same problem", false),
		Entry("empty", "", false),
	)

	Describe("ShouldUnstale", func() {
		It("reactivates a stale open issue on a bump", func() {
			issue := model.Issue{Number: 1, State: model.StateOpen, Labels: []string{"stale"}}

			Expect(policy.ShouldUnstale(issue, "bump", "stale")).To(BeTrue())
		})

		It("ignores bumps on issues without the stale label", func() {
			issue := model.Issue{Number: 1, State: model.StateOpen}

			Expect(policy.ShouldUnstale(issue, "bump", "stale")).To(BeFalse())
		})

		It("ignores bumps on closed issues", func() {
			issue := model.Issue{Number: 1, State: model.StateClosed, Labels: []string{"stale"}}

			Expect(policy.ShouldUnstale(issue, "bump", "stale")).To(BeFalse())
		})

		It("ignores non-bump comments", func() {
			issue := model.Issue{Number: 1, State: model.StateOpen, Labels: []string{"stale"}}

			Expect(policy.ShouldUnstale(issue, "me too", "stale")).To(BeFalse())
		})
	})
})

var _ = Describe("Engine sweeps", func() {
	var (
		ctx    context.Context
		gh     *githubclient.Mock
		engine *policy.Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		gh = &githubclient.Mock{}
		engine = policy.NewEngine(gh, testPolicyConfig())
	})

	Describe("SweepInactivePullRequests", func() {
		It("closes a qualifying pull request and posts the notice", func() {
			reviewAt := time.Now().AddDate(0, 0, -20)
			gh.ListPullRequestsFn = func(ctx context.Context) ([]model.PullRequest, error) {
				return []model.PullRequest{{
					Number:    7,
					State:     model.StateOpen,
					Author:    "alice",
					UpdatedAt: reviewAt.Add(-time.Hour),
				}}, nil
			}
			gh.ListReviewsFn = func(ctx context.Context, prNumber int) ([]model.Review, error) {
				return []model.Review{{Reviewer: "bob", State: model.ReviewChangesRequested, SubmittedAt: reviewAt}}, nil
			}

			Expect(engine.SweepInactivePullRequests(ctx)).To(Succeed())

			Expect(gh.ClosedPRs).To(Equal([]int{7}))
			Expect(gh.CreatedComments).To(HaveLen(1))
			Expect(gh.CreatedComments[0].IssueNumber).To(Equal(7))
			Expect(gh.CreatedComments[0].Body).To(Equal(policy.InactivePRCloseNotice(20)))
		})

		It("leaves recently updated pull requests open", func() {
			reviewAt := time.Now().AddDate(0, 0, -20)
			gh.ListPullRequestsFn = func(ctx context.Context) ([]model.PullRequest, error) {
				return []model.PullRequest{{
					Number:    7,
					State:     model.StateOpen,
					Author:    "alice",
					UpdatedAt: reviewAt.Add(time.Hour),
				}}, nil
			}
			gh.ListReviewsFn = func(ctx context.Context, prNumber int) ([]model.Review, error) {
				return []model.Review{{Reviewer: "bob", State: model.ReviewChangesRequested, SubmittedAt: reviewAt}}, nil
			}

			Expect(engine.SweepInactivePullRequests(ctx)).To(Succeed())

			Expect(gh.ClosedPRs).To(BeEmpty())
			Expect(gh.CreatedComments).To(BeEmpty())
		})

		It("aborts the sweep when listing fails", func() {
			gh.ListPullRequestsFn = func(ctx context.Context) ([]model.PullRequest, error) {
				return nil, errors.New("rate limited")
			}

			err := engine.SweepInactivePullRequests(ctx)

			Expect(err).To(MatchError(ContainSubstring("rate limited")))
		})
	})

	Describe("SweepStaleIssues", func() {
		It("labels an inactive issue and posts the stale notice", func() {
			gh.ListOpenIssuesFn = func(ctx context.Context, labels ...string) ([]model.Issue, error) {
				return []model.Issue{{
					Number:    3,
					State:     model.StateOpen,
					UpdatedAt: time.Now().AddDate(0, 0, -40),
				}}, nil
			}

			Expect(engine.SweepStaleIssues(ctx)).To(Succeed())

			Expect(gh.AddedLabels).To(HaveLen(1))
			Expect(gh.AddedLabels[0].IssueNumber).To(Equal(3))
			Expect(gh.AddedLabels[0].Labels).To(Equal([]string{"stale"}))
			Expect(gh.CreatedComments).To(HaveLen(1))
			Expect(gh.CreatedComments[0].Body).To(Equal(policy.StaleNotice))
		})

		It("does not repeat the notice when it is already the latest comment", func() {
			gh.ListOpenIssuesFn = func(ctx context.Context, labels ...string) ([]model.Issue, error) {
				return []model.Issue{{
					Number:    3,
					State:     model.StateOpen,
					UpdatedAt: time.Now().AddDate(0, 0, -40),
				}}, nil
			}
			gh.ListCommentsFn = func(ctx context.Context, issueNumber int) ([]model.Comment, error) {
				return []model.Comment{{Body: policy.StaleNotice}}, nil
			}

			Expect(engine.SweepStaleIssues(ctx)).To(Succeed())

			Expect(gh.AddedLabels).To(HaveLen(1))
			Expect(gh.CreatedComments).To(BeEmpty())
		})

		It("skips issues with an exempt label", func() {
			gh.ListOpenIssuesFn = func(ctx context.Context, labels ...string) ([]model.Issue, error) {
				return []model.Issue{{
					Number:    3,
					State:     model.StateOpen,
					Labels:    []string{"enhancement"},
					UpdatedAt: time.Now().AddDate(0, 0, -40),
				}}, nil
			}

			Expect(engine.SweepStaleIssues(ctx)).To(Succeed())

			Expect(gh.AddedLabels).To(BeEmpty())
			Expect(gh.CreatedComments).To(BeEmpty())
		})
	})

	Describe("SweepStaleIssueClosures", func() {
		It("lists only stale-labeled issues and closes the expired ones", func() {
			var requestedLabels []string
			gh.ListOpenIssuesFn = func(ctx context.Context, labels ...string) ([]model.Issue, error) {
				requestedLabels = labels
				return []model.Issue{
					{Number: 5, State: model.StateOpen, Labels: []string{"stale"}, UpdatedAt: time.Now().AddDate(0, 0, -10)},
					{Number: 6, State: model.StateOpen, Labels: []string{"stale"}, UpdatedAt: time.Now().AddDate(0, 0, -2)},
				}, nil
			}

			Expect(engine.SweepStaleIssueClosures(ctx)).To(Succeed())

			Expect(requestedLabels).To(Equal([]string{"stale"}))
			Expect(gh.ClosedIssues).To(Equal([]githubclient.MockClosure{
				{IssueNumber: 5, Reason: model.StateReasonCompleted},
			}))
			Expect(gh.CreatedComments).To(HaveLen(1))
			Expect(gh.CreatedComments[0].IssueNumber).To(Equal(5))
			Expect(gh.CreatedComments[0].Body).To(Equal(policy.StaleCloseNotice))
		})
	})

	Describe("HandleIssueComment", func() {
		It("removes the stale label on a bump", func() {
			issue := model.Issue{Number: 9, State: model.StateOpen, Labels: []string{"stale"}}

			Expect(engine.HandleIssueComment(ctx, issue, "bump")).To(Succeed())

			Expect(gh.RemovedLabels).To(Equal([]githubclient.MockLabels{
				{IssueNumber: 9, Labels: []string{"stale"}},
			}))
		})

		It("ignores ordinary comments", func() {
			issue := model.Issue{Number: 9, State: model.StateOpen, Labels: []string{"stale"}}

			Expect(engine.HandleIssueComment(ctx, issue, "same here")).To(Succeed())

			Expect(gh.RemovedLabels).To(BeEmpty())
		})
	})
})
