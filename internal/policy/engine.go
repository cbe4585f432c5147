// Package policy implements the housekeeping rules: marking and closing
// stale issues, closing inactive pull requests, and reactivating bumped
// issues. Decisions are pure functions over snapshots; the sweep drivers
// apply them through the repository client.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stewardhq/steward/core/config"
	"github.com/stewardhq/steward/internal/githubclient"
	"github.com/stewardhq/steward/internal/model"
)

type Engine struct {
	gh  githubclient.Client
	cfg config.PolicyConfig
	now func() time.Time
}

func NewEngine(gh githubclient.Client, cfg config.PolicyConfig) *Engine {
	return &Engine{gh: gh, cfg: cfg, now: time.Now}
}

// InactivePRDecision is the outcome of evaluating one pull request against
// the inactive-PR-closure rule.
type InactivePRDecision struct {
	Close       bool
	ElapsedDays int
}

// EvaluateInactivePR decides whether a pull request should be closed for
// inactivity after a changes-requested review. Only the latest
// CHANGES_REQUESTED review is considered; earlier unaddressed requests are
// superseded by it. Any PR update or author comment strictly after that
// review blocks closure regardless of elapsed time.
func EvaluateInactivePR(pr model.PullRequest, reviews []model.Review, comments []model.Comment, now time.Time, closeAfterDays int) InactivePRDecision {
	if pr.State != model.StateOpen || pr.Draft {
		return InactivePRDecision{}
	}

	var last *model.Review
	for i := len(reviews) - 1; i >= 0; i-- {
		if reviews[i].State == model.ReviewChangesRequested && !reviews[i].SubmittedAt.IsZero() {
			last = &reviews[i]
			break
		}
	}
	if last == nil {
		return InactivePRDecision{}
	}

	if pr.UpdatedAt.After(last.SubmittedAt) {
		return InactivePRDecision{}
	}
	for _, comment := range comments {
		if comment.Author == pr.Author && comment.CreatedAt.After(last.SubmittedAt) {
			return InactivePRDecision{}
		}
	}

	elapsed := DaysBetween(now, last.SubmittedAt)
	return InactivePRDecision{
		Close:       elapsed > closeAfterDays,
		ElapsedDays: elapsed,
	}
}

// ShouldMarkStale decides whether an open issue gets the stale label.
// Pull requests, already-stale issues and issues carrying an exempt
// (triaged) label are never marked.
func ShouldMarkStale(issue model.Issue, now time.Time, cfg config.PolicyConfig) bool {
	if issue.PullRequest {
		return false
	}
	if issue.HasAnyLabel(cfg.ExemptLabels) {
		return false
	}
	if issue.HasLabel(cfg.StaleLabel) {
		return false
	}
	return DaysBetween(now, issue.UpdatedAt) >= cfg.MarkStaleIssueAfterDays
}

// ShouldPostStaleNotice reports whether the stale notice still needs to be
// posted. It is skipped when an identical notice is already the most recent
// comment, so a repeated sweep over an unchanged issue stays idempotent.
func ShouldPostStaleNotice(comments []model.Comment) bool {
	if len(comments) == 0 {
		return true
	}
	return comments[len(comments)-1].Body != StaleNotice
}

// ShouldCloseStale decides whether an open, stale-labeled issue gets closed.
func ShouldCloseStale(issue model.Issue, now time.Time, closeAfterDays int) bool {
	if issue.PullRequest {
		return false
	}
	return DaysBetween(now, issue.UpdatedAt) >= closeAfterDays
}

// IsBump reports whether a comment body signals continued interest.
func IsBump(commentBody string) bool {
	return strings.Contains(strings.ToLower(commentBody), "bump")
}

// ShouldUnstale decides whether a fresh comment reactivates a stale issue.
// No elapsed-time check: the comment itself is the reactivation signal.
func ShouldUnstale(issue model.Issue, commentBody, staleLabel string) bool {
	return IsBump(commentBody) && issue.State == model.StateOpen && issue.HasLabel(staleLabel)
}

// SweepInactivePullRequests closes open, non-draft pull requests whose
// latest changes-requested review has gone unanswered past the threshold.
func (e *Engine) SweepInactivePullRequests(ctx context.Context) error {
	prs, err := e.gh.ListPullRequests(ctx)
	if err != nil {
		return fmt.Errorf("sweep inactive prs: %w", err)
	}
	slog.InfoContext(ctx, "checking inactive pull requests", "count", len(prs))

	now := e.now()
	for _, pr := range prs {
		if pr.State != model.StateOpen || pr.Draft {
			continue
		}

		reviews, err := e.gh.ListReviews(ctx, pr.Number)
		if err != nil {
			return fmt.Errorf("sweep inactive prs: %w", err)
		}
		comments, err := e.gh.ListComments(ctx, pr.Number)
		if err != nil {
			return fmt.Errorf("sweep inactive prs: %w", err)
		}

		decision := EvaluateInactivePR(pr, reviews, comments, now, e.cfg.CloseInactivePRAfterDays)
		if !decision.Close {
			continue
		}

		slog.InfoContext(ctx, "closing inactive pull request",
			"pr_number", pr.Number,
			"elapsed_days", decision.ElapsedDays)
		if err := e.gh.ClosePullRequest(ctx, pr.Number); err != nil {
			return fmt.Errorf("sweep inactive prs: %w", err)
		}
		if err := e.gh.CreateComment(ctx, pr.Number, InactivePRCloseNotice(decision.ElapsedDays)); err != nil {
			return fmt.Errorf("sweep inactive prs: %w", err)
		}
	}
	return nil
}

// SweepStaleIssues marks open issues inactive past the threshold with the
// stale label and posts the stale notice (once).
func (e *Engine) SweepStaleIssues(ctx context.Context) error {
	issues, err := e.gh.ListOpenIssues(ctx)
	if err != nil {
		return fmt.Errorf("sweep stale issues: %w", err)
	}
	slog.InfoContext(ctx, "checking issues for staleness", "count", len(issues))

	now := e.now()
	for _, issue := range issues {
		if !ShouldMarkStale(issue, now, e.cfg) {
			continue
		}

		if err := e.gh.AddLabels(ctx, issue.Number, []string{e.cfg.StaleLabel}); err != nil {
			return fmt.Errorf("sweep stale issues: %w", err)
		}

		comments, err := e.gh.ListComments(ctx, issue.Number)
		if err != nil {
			return fmt.Errorf("sweep stale issues: %w", err)
		}
		if ShouldPostStaleNotice(comments) {
			if err := e.gh.CreateComment(ctx, issue.Number, StaleNotice); err != nil {
				return fmt.Errorf("sweep stale issues: %w", err)
			}
		}

		slog.InfoContext(ctx, "marked issue as stale", "issue_number", issue.Number)
	}
	return nil
}

// SweepStaleIssueClosures closes stale-labeled issues that stayed inactive
// past the closure threshold.
func (e *Engine) SweepStaleIssueClosures(ctx context.Context) error {
	issues, err := e.gh.ListOpenIssues(ctx, e.cfg.StaleLabel)
	if err != nil {
		return fmt.Errorf("sweep stale closures: %w", err)
	}
	slog.InfoContext(ctx, "checking stale issues for closing", "count", len(issues))

	now := e.now()
	for _, issue := range issues {
		if !ShouldCloseStale(issue, now, e.cfg.CloseStaleIssueAfterDays) {
			continue
		}

		if err := e.gh.CloseIssue(ctx, issue.Number, model.StateReasonCompleted); err != nil {
			return fmt.Errorf("sweep stale closures: %w", err)
		}
		if err := e.gh.CreateComment(ctx, issue.Number, StaleCloseNotice); err != nil {
			return fmt.Errorf("sweep stale closures: %w", err)
		}

		slog.InfoContext(ctx, "closed stale issue", "issue_number", issue.Number)
	}
	return nil
}

// HandleIssueComment applies the bump-reopen rule to a fresh comment on a
// plain issue.
func (e *Engine) HandleIssueComment(ctx context.Context, issue model.Issue, commentBody string) error {
	if !ShouldUnstale(issue, commentBody, e.cfg.StaleLabel) {
		return nil
	}
	slog.InfoContext(ctx, "bump received, removing stale label", "issue_number", issue.Number)
	if err := e.gh.RemoveLabel(ctx, issue.Number, e.cfg.StaleLabel); err != nil {
		return fmt.Errorf("remove stale label: %w", err)
	}
	return nil
}
