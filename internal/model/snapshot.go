package model

import (
	"sort"
	"time"
)

// Snapshots are fetched fresh from GitHub per sweep or webhook event and
// never cached; the host's history is the only persistent state.

const (
	StateOpen   = "open"
	StateClosed = "closed"
)

const (
	StateReasonCompleted  = "completed"
	StateReasonNotPlanned = "not_planned"
)

// Review states as reported by the host.
const (
	ReviewApproved         = "APPROVED"
	ReviewChangesRequested = "CHANGES_REQUESTED"
	ReviewCommented        = "COMMENTED"
)

type Issue struct {
	Number    int
	Title     string
	Body      string
	State     string
	Author    string
	AuthorBot bool
	// ViaAppSlug is the slug of the GitHub App the issue was performed via,
	// empty for issues opened directly.
	ViaAppSlug string
	Labels     []string
	UpdatedAt  time.Time
	// PullRequest reports whether this listing entry is actually a pull
	// request; the host conflates the two in issue listings.
	PullRequest bool
}

func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

func (i Issue) HasAnyLabel(names []string) bool {
	for _, n := range names {
		if i.HasLabel(n) {
			return true
		}
	}
	return false
}

type PullRequest struct {
	Number    int
	Title     string
	Body      string
	State     string
	Author    string
	AuthorBot bool
	Draft     bool
	Merged    bool
	Labels    []string
	UpdatedAt time.Time
}

type Review struct {
	Reviewer    string
	State       string
	SubmittedAt time.Time
}

type Comment struct {
	ID        int64
	Author    string
	AuthorBot bool
	// ViaAppSlug is the slug of the GitHub App that posted the comment,
	// empty for comments posted directly by users.
	ViaAppSlug string
	Body       string
	CreatedAt  time.Time
}

type ChangedFile struct {
	Filename  string
	Status    string // added, modified, removed, renamed
	Additions int
	Deletions int
}

// DedupeLabels returns the label set with duplicates removed, preserving
// first-seen order.
func DedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// SortCommentsByCreation orders comments by creation time, oldest first.
// Mapping relies on this ordering for "most recent comment" checks.
func SortCommentsByCreation(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}
