// Package command parses and routes bot commands from pull request comments.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward/internal/githubclient"
	"github.com/stewardhq/steward/internal/review"
)

// PRAnalyzer runs the review-generation flow for a pull request.
type PRAnalyzer interface {
	AnalyzePullRequest(ctx context.Context, prNumber int) error
}

type Dispatcher struct {
	gh       githubclient.Client
	analyzer PRAnalyzer
	prefix   string
}

func NewDispatcher(gh githubclient.Client, analyzer PRAnalyzer, prefix string) *Dispatcher {
	return &Dispatcher{gh: gh, analyzer: analyzer, prefix: prefix}
}

// HandlePRComment processes one inbound PR comment. The pass is terminal:
// comments without the trigger prefix or from bots are ignored, untrusted
// authors are logged and dropped, and the remaining token routes to either
// the apply-suggestion action or the review flow. All failures end here;
// nothing propagates to the webhook acknowledgment.
func (d *Dispatcher) HandlePRComment(ctx context.Context, prNumber int, commentID int64, commentBody string) {
	trimmed := strings.TrimSpace(commentBody)
	if !strings.HasPrefix(trimmed, d.prefix) {
		return
	}

	comment, err := d.gh.GetComment(ctx, commentID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch triggering comment", "comment_id", commentID, "error", err)
		return
	}
	if comment.AuthorBot {
		return
	}

	if !githubclient.IsTrustedUser(ctx, d.gh, comment.Author) {
		slog.InfoContext(ctx, "user is not authorized to trigger bot commands", "user", comment.Author)
		return
	}

	args := strings.Fields(trimmed)[1:]
	subcommand := ""
	if len(args) > 0 {
		subcommand = args[0]
	}

	switch subcommand {
	case "apply":
		if err := d.applySuggestion(ctx, prNumber); err != nil {
			slog.ErrorContext(ctx, "failed to apply review suggestion", "pr_number", prNumber, "error", err)
			if err := d.gh.CreateComment(ctx, prNumber, applyFailureNotice); err != nil {
				slog.ErrorContext(ctx, "failed to post apply-failure notice", "pr_number", prNumber, "error", err)
			}
		}
	default:
		if err := d.analyzer.AnalyzePullRequest(ctx, prNumber); err != nil {
			slog.ErrorContext(ctx, "review flow failed", "pr_number", prNumber, "error", err)
		}
	}
}

const applyFailureNotice = "Failed to apply AI review suggestion. Please try again or contact support."

// applySuggestion recovers the most recent suggested title from the bot's
// review comment and applies it as the PR title.
func (d *Dispatcher) applySuggestion(ctx context.Context, prNumber int) error {
	comments, err := d.gh.ListComments(ctx, prNumber)
	if err != nil {
		return fmt.Errorf("apply suggestion: %w", err)
	}

	botComment := ""
	for i := len(comments) - 1; i >= 0; i-- {
		if comments[i].AuthorBot && review.MatchesReviewComment(comments[i].Body) {
			botComment = comments[i].Body
			break
		}
	}
	if botComment == "" {
		notice := fmt.Sprintf("No AI review suggestion found. Please run `%s` first.", d.prefix)
		if err := d.gh.CreateComment(ctx, prNumber, notice); err != nil {
			return fmt.Errorf("apply suggestion: %w", err)
		}
		return nil
	}

	title, ok := review.ParseSuggestedTitle(botComment)
	if !ok {
		return fmt.Errorf("apply suggestion: could not extract suggested title from review comment")
	}

	if err := d.gh.UpdatePullRequestTitle(ctx, prNumber, title); err != nil {
		return fmt.Errorf("apply suggestion: %w", err)
	}

	confirmation := fmt.Sprintf("Successfully applied the suggested PR title: %q", title)
	if err := d.gh.CreateComment(ctx, prNumber, confirmation); err != nil {
		return fmt.Errorf("apply suggestion: %w", err)
	}
	return nil
}
