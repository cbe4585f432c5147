package githubclient

import (
	"context"

	"github.com/stewardhq/steward/internal/model"
)

// Mock implements Client with function fields so tests can override only the
// calls they care about. Unset fields return zero values and no error.
type Mock struct {
	ListOpenIssuesFn         func(ctx context.Context, labels ...string) ([]model.Issue, error)
	ListPullRequestsFn       func(ctx context.Context) ([]model.PullRequest, error)
	ListReviewsFn            func(ctx context.Context, prNumber int) ([]model.Review, error)
	ListCommentsFn           func(ctx context.Context, issueNumber int) ([]model.Comment, error)
	ListChangedFilesFn       func(ctx context.Context, prNumber int) ([]model.ChangedFile, error)
	GetUnifiedDiffFn         func(ctx context.Context, prNumber int) (string, error)
	GetCommentFn             func(ctx context.Context, commentID int64) (model.Comment, error)
	CreateCommentFn          func(ctx context.Context, issueNumber int, body string) error
	AddLabelsFn              func(ctx context.Context, issueNumber int, labels []string) error
	RemoveLabelFn            func(ctx context.Context, issueNumber int, label string) error
	CloseIssueFn             func(ctx context.Context, issueNumber int, reason string) error
	ClosePullRequestFn       func(ctx context.Context, prNumber int) error
	UpdatePullRequestTitleFn func(ctx context.Context, prNumber int, title string) error
	PermissionLevelFn        func(ctx context.Context, username string) (string, error)

	// Recorded mutations, in call order.
	CreatedComments []MockComment
	AddedLabels     []MockLabels
	RemovedLabels   []MockLabels
	ClosedIssues    []MockClosure
	ClosedPRs       []int
	UpdatedTitles   []MockTitle
}

type MockComment struct {
	IssueNumber int
	Body        string
}

type MockLabels struct {
	IssueNumber int
	Labels      []string
}

type MockClosure struct {
	IssueNumber int
	Reason      string
}

type MockTitle struct {
	PRNumber int
	Title    string
}

var _ Client = (*Mock)(nil)

func (m *Mock) ListOpenIssues(ctx context.Context, labels ...string) ([]model.Issue, error) {
	if m.ListOpenIssuesFn != nil {
		return m.ListOpenIssuesFn(ctx, labels...)
	}
	return nil, nil
}

func (m *Mock) ListPullRequests(ctx context.Context) ([]model.PullRequest, error) {
	if m.ListPullRequestsFn != nil {
		return m.ListPullRequestsFn(ctx)
	}
	return nil, nil
}

func (m *Mock) ListReviews(ctx context.Context, prNumber int) ([]model.Review, error) {
	if m.ListReviewsFn != nil {
		return m.ListReviewsFn(ctx, prNumber)
	}
	return nil, nil
}

func (m *Mock) ListComments(ctx context.Context, issueNumber int) ([]model.Comment, error) {
	if m.ListCommentsFn != nil {
		return m.ListCommentsFn(ctx, issueNumber)
	}
	return nil, nil
}

func (m *Mock) ListChangedFiles(ctx context.Context, prNumber int) ([]model.ChangedFile, error) {
	if m.ListChangedFilesFn != nil {
		return m.ListChangedFilesFn(ctx, prNumber)
	}
	return nil, nil
}

func (m *Mock) GetUnifiedDiff(ctx context.Context, prNumber int) (string, error) {
	if m.GetUnifiedDiffFn != nil {
		return m.GetUnifiedDiffFn(ctx, prNumber)
	}
	return "", nil
}

func (m *Mock) GetComment(ctx context.Context, commentID int64) (model.Comment, error) {
	if m.GetCommentFn != nil {
		return m.GetCommentFn(ctx, commentID)
	}
	return model.Comment{}, nil
}

func (m *Mock) CreateComment(ctx context.Context, issueNumber int, body string) error {
	if m.CreateCommentFn != nil {
		return m.CreateCommentFn(ctx, issueNumber, body)
	}
	m.CreatedComments = append(m.CreatedComments, MockComment{IssueNumber: issueNumber, Body: body})
	return nil
}

func (m *Mock) AddLabels(ctx context.Context, issueNumber int, labels []string) error {
	if m.AddLabelsFn != nil {
		return m.AddLabelsFn(ctx, issueNumber, labels)
	}
	m.AddedLabels = append(m.AddedLabels, MockLabels{IssueNumber: issueNumber, Labels: labels})
	return nil
}

func (m *Mock) RemoveLabel(ctx context.Context, issueNumber int, label string) error {
	if m.RemoveLabelFn != nil {
		return m.RemoveLabelFn(ctx, issueNumber, label)
	}
	m.RemovedLabels = append(m.RemovedLabels, MockLabels{IssueNumber: issueNumber, Labels: []string{label}})
	return nil
}

func (m *Mock) CloseIssue(ctx context.Context, issueNumber int, reason string) error {
	if m.CloseIssueFn != nil {
		return m.CloseIssueFn(ctx, issueNumber, reason)
	}
	m.ClosedIssues = append(m.ClosedIssues, MockClosure{IssueNumber: issueNumber, Reason: reason})
	return nil
}

func (m *Mock) ClosePullRequest(ctx context.Context, prNumber int) error {
	if m.ClosePullRequestFn != nil {
		return m.ClosePullRequestFn(ctx, prNumber)
	}
	m.ClosedPRs = append(m.ClosedPRs, prNumber)
	return nil
}

func (m *Mock) UpdatePullRequestTitle(ctx context.Context, prNumber int, title string) error {
	if m.UpdatePullRequestTitleFn != nil {
		return m.UpdatePullRequestTitleFn(ctx, prNumber, title)
	}
	m.UpdatedTitles = append(m.UpdatedTitles, MockTitle{PRNumber: prNumber, Title: title})
	return nil
}

func (m *Mock) PermissionLevel(ctx context.Context, username string) (string, error) {
	if m.PermissionLevelFn != nil {
		return m.PermissionLevelFn(ctx, username)
	}
	return "none", nil
}
