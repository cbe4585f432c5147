// Package service processes webhook events after the HTTP layer has
// acknowledged them. Each handler runs in a detached task; failures are
// logged and terminate the task, never the process.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward/core/config"
	"github.com/stewardhq/steward/internal/command"
	"github.com/stewardhq/steward/internal/convention"
	"github.com/stewardhq/steward/internal/githubclient"
	"github.com/stewardhq/steward/internal/model"
	"github.com/stewardhq/steward/internal/policy"
)

type EventService struct {
	gh         githubclient.Client
	engine     *policy.Engine
	dispatcher *command.Dispatcher
	analyzer   command.PRAnalyzer
	cfg        config.PolicyConfig
}

func NewEventService(gh githubclient.Client, engine *policy.Engine, dispatcher *command.Dispatcher, analyzer command.PRAnalyzer, cfg config.PolicyConfig) *EventService {
	return &EventService{
		gh:         gh,
		engine:     engine,
		dispatcher: dispatcher,
		analyzer:   analyzer,
		cfg:        cfg,
	}
}

// HandlePullRequestOpened kicks off the review flow, welcomes external
// contributors and nudges non-conventional PR titles.
func (s *EventService) HandlePullRequestOpened(ctx context.Context, pr model.PullRequest, sender string, senderBot bool) {
	if senderBot {
		return
	}

	trusted := githubclient.IsTrustedUser(ctx, s.gh, sender)

	// The review flow is slow (two completions); run it alongside the
	// greeting comments.
	go func() {
		if err := s.analyzer.AnalyzePullRequest(ctx, pr.Number); err != nil {
			slog.ErrorContext(ctx, "error analyzing pr", "pr_number", pr.Number, "error", err)
		}
	}()

	if !trusted {
		if err := s.gh.CreateComment(ctx, pr.Number, contributionThankYouNotice); err != nil {
			slog.ErrorContext(ctx, "failed to post contribution notice", "pr_number", pr.Number, "error", err)
		}
	}

	if !convention.IsConventionalTitle(pr.Title) {
		if err := s.gh.CreateComment(ctx, pr.Number, conventionalTitleGuidance(sender)); err != nil {
			slog.ErrorContext(ctx, "failed to post title guidance", "pr_number", pr.Number, "error", err)
		}
	}
}

// HandleIssueOpened closes issues from untrusted authors that carry none of
// the configured validity markers. Issues created via ignored GitHub Apps
// (issue sync integrations) are left alone.
func (s *EventService) HandleIssueOpened(ctx context.Context, issue model.Issue) {
	if issue.AuthorBot {
		return
	}

	for _, slug := range s.cfg.IgnoredAppSlugs {
		if issue.ViaAppSlug == slug {
			slog.InfoContext(ctx, "ignoring issue created via app",
				"issue_number", issue.Number, "app_slug", slug)
			return
		}
	}

	if githubclient.IsTrustedUser(ctx, s.gh, issue.Author) {
		return
	}

	for _, marker := range s.cfg.ValidIssueMarkers {
		if strings.Contains(issue.Body, marker) {
			return
		}
	}

	slog.InfoContext(ctx, "closing invalid issue", "issue_number", issue.Number)
	if err := s.gh.CloseIssue(ctx, issue.Number, model.StateReasonNotPlanned); err != nil {
		slog.ErrorContext(ctx, "failed to close invalid issue", "issue_number", issue.Number, "error", err)
		return
	}
	if err := s.gh.CreateComment(ctx, issue.Number, invalidIssueNotice); err != nil {
		slog.ErrorContext(ctx, "failed to post invalid-issue notice", "issue_number", issue.Number, "error", err)
	}
}

// HandleIssueCommentCreated routes a fresh comment: PR comments go to the
// command dispatcher, plain issue comments to the bump-reopen rule.
func (s *EventService) HandleIssueCommentCreated(ctx context.Context, issue model.Issue, comment model.Comment) {
	if comment.AuthorBot {
		return
	}

	if issue.PullRequest {
		s.dispatcher.HandlePRComment(ctx, issue.Number, comment.ID, comment.Body)
		return
	}

	if err := s.engine.HandleIssueComment(ctx, issue, comment.Body); err != nil {
		slog.ErrorContext(ctx, "failed to handle issue comment", "issue_number", issue.Number, "error", err)
	}
}

// HandlePullRequestClosed thanks external contributors whose pull request
// was merged. Unmerged closes are ignored.
func (s *EventService) HandlePullRequestClosed(ctx context.Context, pr model.PullRequest) {
	if !pr.Merged || pr.AuthorBot {
		return
	}

	if githubclient.IsTrustedUser(ctx, s.gh, pr.Author) {
		return
	}

	if err := s.gh.CreateComment(ctx, pr.Number, mergedThankYouNotice); err != nil {
		slog.ErrorContext(ctx, "failed to post merged thank-you", "pr_number", pr.Number, "error", err)
	}
}
