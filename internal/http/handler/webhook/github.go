// Package webhook receives GitHub webhook deliveries. The handler validates
// the signature, acknowledges immediately and hands the parsed event to a
// detached processing task, so slow downstream calls never delay the
// response GitHub is waiting on.
package webhook

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v68/github"

	"github.com/stewardhq/steward/common/id"
	"github.com/stewardhq/steward/common/logger"
	"github.com/stewardhq/steward/internal/mapper"
	"github.com/stewardhq/steward/internal/service"
)

type GitHubWebhookHandler struct {
	secret []byte
	events *service.EventService
}

func NewGitHubWebhookHandler(secret string, events *service.EventService) *GitHubWebhookHandler {
	return &GitHubWebhookHandler{
		secret: []byte(secret),
		events: events,
	}
}

func (h *GitHubWebhookHandler) HandleEvent(c *gin.Context) {
	payload, err := github.ValidatePayload(c.Request, h.secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	eventType := github.WebHookType(c.Request)
	deliveryID := github.DeliveryID(c.Request)

	event, err := github.ParseWebhook(eventType, payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	// Detached context: the request context is canceled as soon as the
	// response is written, and processing outlives the response.
	ctx := logger.WithLogFields(context.Background(), logger.LogFields{
		EventType:  logger.Ptr(eventType),
		DeliveryID: logger.Ptr(deliveryID),
		RunID:      logger.Ptr(id.New()),
	})
	go h.process(ctx, event)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GitHubWebhookHandler) process(ctx context.Context, event any) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in webhook processing",
				"error", r,
				"stack", string(debug.Stack()))
		}
	}()

	sc := logger.StartSpan(ctx, "steward.webhook.process")
	defer sc.End()
	ctx = sc.Context()

	switch e := event.(type) {
	case *github.PullRequestEvent:
		switch e.GetAction() {
		case "opened":
			pr := mapper.PullRequest(e.GetPullRequest())
			ctx = logger.WithLogFields(ctx, logger.LogFields{PRNumber: logger.Ptr(pr.Number)})
			slog.InfoContext(ctx, "received pull request opened", "sender", e.GetSender().GetLogin())
			h.events.HandlePullRequestOpened(ctx, pr, e.GetSender().GetLogin(), e.GetSender().GetType() == "Bot")
		case "closed":
			pr := mapper.PullRequest(e.GetPullRequest())
			ctx = logger.WithLogFields(ctx, logger.LogFields{PRNumber: logger.Ptr(pr.Number)})
			slog.InfoContext(ctx, "received pull request closed", "merged", pr.Merged)
			h.events.HandlePullRequestClosed(ctx, pr)
		}

	case *github.IssuesEvent:
		if e.GetAction() != "opened" {
			return
		}
		issue := mapper.Issue(e.GetIssue())
		ctx = logger.WithLogFields(ctx, logger.LogFields{IssueNumber: logger.Ptr(issue.Number)})
		slog.InfoContext(ctx, "received issue opened", "title", issue.Title)
		h.events.HandleIssueOpened(ctx, issue)

	case *github.IssueCommentEvent:
		if e.GetAction() != "created" {
			return
		}
		issue := mapper.Issue(e.GetIssue())
		comment := mapper.Comment(e.GetComment())
		ctx = logger.WithLogFields(ctx, logger.LogFields{IssueNumber: logger.Ptr(issue.Number)})
		slog.InfoContext(ctx, "received comment", "body", logger.Truncate(comment.Body, 200))
		h.events.HandleIssueCommentCreated(ctx, issue, comment)

	default:
		slog.DebugContext(ctx, "ignoring unsupported event")
	}
}
