// Package mapper converts go-github API and webhook entities into the
// snapshot model. Webhook payloads embed the same entity types the REST API
// returns, so a single set of mappers covers both paths.
package mapper

import (
	"github.com/google/go-github/v68/github"

	"github.com/stewardhq/steward/internal/model"
)

func Issue(issue *github.Issue) model.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	return model.Issue{
		Number:      issue.GetNumber(),
		Title:       issue.GetTitle(),
		Body:        issue.GetBody(),
		State:       issue.GetState(),
		Author:      issue.GetUser().GetLogin(),
		AuthorBot:   issue.GetUser().GetType() == "Bot",
		ViaAppSlug:  issue.GetPerformedViaGithubApp().GetSlug(),
		Labels:      model.DedupeLabels(labels),
		UpdatedAt:   issue.GetUpdatedAt().Time,
		PullRequest: issue.IsPullRequest(),
	}
}

func PullRequest(pr *github.PullRequest) model.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	return model.PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		Body:      pr.GetBody(),
		State:     pr.GetState(),
		Author:    pr.GetUser().GetLogin(),
		AuthorBot: pr.GetUser().GetType() == "Bot",
		Draft:     pr.GetDraft(),
		Merged:    pr.GetMerged(),
		Labels:    model.DedupeLabels(labels),
		UpdatedAt: pr.GetUpdatedAt().Time,
	}
}

func Review(review *github.PullRequestReview) model.Review {
	return model.Review{
		Reviewer:    review.GetUser().GetLogin(),
		State:       review.GetState(),
		SubmittedAt: review.GetSubmittedAt().Time,
	}
}

func Comment(comment *github.IssueComment) model.Comment {
	return model.Comment{
		ID:         comment.GetID(),
		Author:     comment.GetUser().GetLogin(),
		AuthorBot:  comment.GetUser().GetType() == "Bot",
		ViaAppSlug: comment.GetPerformedViaGithubApp().GetSlug(),
		Body:       comment.GetBody(),
		CreatedAt:  comment.GetCreatedAt().Time,
	}
}

func ChangedFile(file *github.CommitFile) model.ChangedFile {
	return model.ChangedFile{
		Filename:  file.GetFilename(),
		Status:    file.GetStatus(),
		Additions: file.GetAdditions(),
		Deletions: file.GetDeletions(),
	}
}
