package githubclient

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/stewardhq/steward/internal/mapper"
	"github.com/stewardhq/steward/internal/model"
)

const pageSize = 100

// Permission levels that make a collaborator trusted to trigger bot commands.
const (
	PermissionWrite    = "write"
	PermissionMaintain = "maintain"
	PermissionAdmin    = "admin"
)

// Client is the repository host consumed by the policy engine, the command
// dispatcher and the review flow. All operations act on the single repository
// the client was constructed for.
type Client interface {
	ListOpenIssues(ctx context.Context, labels ...string) ([]model.Issue, error)
	ListPullRequests(ctx context.Context) ([]model.PullRequest, error)
	ListReviews(ctx context.Context, prNumber int) ([]model.Review, error)
	ListComments(ctx context.Context, issueNumber int) ([]model.Comment, error)
	ListChangedFiles(ctx context.Context, prNumber int) ([]model.ChangedFile, error)
	GetUnifiedDiff(ctx context.Context, prNumber int) (string, error)
	GetComment(ctx context.Context, commentID int64) (model.Comment, error)
	CreateComment(ctx context.Context, issueNumber int, body string) error
	AddLabels(ctx context.Context, issueNumber int, labels []string) error
	RemoveLabel(ctx context.Context, issueNumber int, label string) error
	CloseIssue(ctx context.Context, issueNumber int, reason string) error
	ClosePullRequest(ctx context.Context, prNumber int) error
	UpdatePullRequestTitle(ctx context.Context, prNumber int, title string) error
	PermissionLevel(ctx context.Context, username string) (string, error)
}

type client struct {
	gh    *github.Client
	owner string
	repo  string
}

// New creates a Client bound to owner/repo, authenticated with a static
// token.
func New(ctx context.Context, token, owner, repo string) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &client{
		gh:    github.NewClient(tc),
		owner: owner,
		repo:  repo,
	}
}

func (c *client) ListOpenIssues(ctx context.Context, labels ...string) ([]model.Issue, error) {
	var all []model.Issue
	opts := &github.IssueListByRepoOptions{
		State:       model.StateOpen,
		Labels:      labels,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	// Sequential paging; a short page terminates the loop.
	for page := 1; ; page++ {
		opts.Page = page
		issues, _, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues page %d: %w", page, err)
		}
		for _, issue := range issues {
			all = append(all, mapper.Issue(issue))
		}
		if len(issues) < pageSize {
			break
		}
	}
	return all, nil
}

func (c *client) ListPullRequests(ctx context.Context) ([]model.PullRequest, error) {
	var all []model.PullRequest
	opts := &github.PullRequestListOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	for page := 1; ; page++ {
		opts.Page = page
		prs, _, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list pull requests page %d: %w", page, err)
		}
		for _, pr := range prs {
			all = append(all, mapper.PullRequest(pr))
		}
		if len(prs) < pageSize {
			break
		}
	}
	return all, nil
}

func (c *client) ListReviews(ctx context.Context, prNumber int) ([]model.Review, error) {
	var all []model.Review
	opts := &github.ListOptions{PerPage: pageSize}
	for page := 1; ; page++ {
		opts.Page = page
		reviews, _, err := c.gh.PullRequests.ListReviews(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list reviews for pr %d: %w", prNumber, err)
		}
		for _, review := range reviews {
			all = append(all, mapper.Review(review))
		}
		if len(reviews) < pageSize {
			break
		}
	}
	return all, nil
}

func (c *client) ListComments(ctx context.Context, issueNumber int) ([]model.Comment, error) {
	var all []model.Comment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: pageSize},
	}
	for page := 1; ; page++ {
		opts.Page = page
		comments, _, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, issueNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list comments for issue %d: %w", issueNumber, err)
		}
		for _, comment := range comments {
			all = append(all, mapper.Comment(comment))
		}
		if len(comments) < pageSize {
			break
		}
	}
	model.SortCommentsByCreation(all)
	return all, nil
}

func (c *client) ListChangedFiles(ctx context.Context, prNumber int) ([]model.ChangedFile, error) {
	var all []model.ChangedFile
	opts := &github.ListOptions{PerPage: pageSize}
	for page := 1; ; page++ {
		opts.Page = page
		files, _, err := c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list changed files for pr %d: %w", prNumber, err)
		}
		for _, file := range files {
			all = append(all, mapper.ChangedFile(file))
		}
		if len(files) < pageSize {
			break
		}
	}
	return all, nil
}

func (c *client) GetUnifiedDiff(ctx context.Context, prNumber int) (string, error) {
	diff, _, err := c.gh.PullRequests.GetRaw(ctx, c.owner, c.repo, prNumber, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", fmt.Errorf("get diff for pr %d: %w", prNumber, err)
	}
	return diff, nil
}

func (c *client) GetComment(ctx context.Context, commentID int64) (model.Comment, error) {
	comment, _, err := c.gh.Issues.GetComment(ctx, c.owner, c.repo, commentID)
	if err != nil {
		return model.Comment{}, fmt.Errorf("get comment %d: %w", commentID, err)
	}
	return mapper.Comment(comment), nil
}

func (c *client) CreateComment(ctx context.Context, issueNumber int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, issueNumber, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("create comment on issue %d: %w", issueNumber, err)
	}
	return nil
}

func (c *client) AddLabels(ctx context.Context, issueNumber int, labels []string) error {
	_, _, err := c.gh.Issues.AddLabelsToIssue(ctx, c.owner, c.repo, issueNumber, labels)
	if err != nil {
		return fmt.Errorf("add labels to issue %d: %w", issueNumber, err)
	}
	return nil
}

func (c *client) RemoveLabel(ctx context.Context, issueNumber int, label string) error {
	_, err := c.gh.Issues.RemoveLabelForIssue(ctx, c.owner, c.repo, issueNumber, label)
	if err != nil {
		return fmt.Errorf("remove label %q from issue %d: %w", label, issueNumber, err)
	}
	return nil
}

func (c *client) CloseIssue(ctx context.Context, issueNumber int, reason string) error {
	_, _, err := c.gh.Issues.Edit(ctx, c.owner, c.repo, issueNumber, &github.IssueRequest{
		State:       github.Ptr(model.StateClosed),
		StateReason: github.Ptr(reason),
	})
	if err != nil {
		return fmt.Errorf("close issue %d: %w", issueNumber, err)
	}
	return nil
}

func (c *client) ClosePullRequest(ctx context.Context, prNumber int) error {
	_, _, err := c.gh.PullRequests.Edit(ctx, c.owner, c.repo, prNumber, &github.PullRequest{
		State: github.Ptr(model.StateClosed),
	})
	if err != nil {
		return fmt.Errorf("close pull request %d: %w", prNumber, err)
	}
	return nil
}

func (c *client) UpdatePullRequestTitle(ctx context.Context, prNumber int, title string) error {
	_, _, err := c.gh.PullRequests.Edit(ctx, c.owner, c.repo, prNumber, &github.PullRequest{
		Title: github.Ptr(title),
	})
	if err != nil {
		return fmt.Errorf("update title of pull request %d: %w", prNumber, err)
	}
	return nil
}

func (c *client) PermissionLevel(ctx context.Context, username string) (string, error) {
	perm, _, err := c.gh.Repositories.GetPermissionLevel(ctx, c.owner, c.repo, username)
	if err != nil {
		return "", fmt.Errorf("get permission level for %s: %w", username, err)
	}
	return perm.GetPermission(), nil
}
