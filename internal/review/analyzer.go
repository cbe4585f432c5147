// Package review assembles pull request diffs into completion prompts and
// posts the generated title suggestion, change summary and code review as a
// single comment.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stewardhq/steward/common/llm"
	"github.com/stewardhq/steward/core/config"
	"github.com/stewardhq/steward/internal/githubclient"
	"github.com/stewardhq/steward/internal/model"
)

type TitleAndSummary struct {
	Title   string `json:"title" jsonschema_description:"Conventional Commits format PR title in 60 characters or less"`
	Summary string `json:"summary" jsonschema_description:"Brief summary of the main changes and their impact"`
}

var titleAndSummarySchema = llm.GenerateSchema[TitleAndSummary]()

const titleSystemPrompt = "Generate a Conventional Commits format PR title and a concise summary of the given code changes. Focus on the main modifications and their impact."

const reviewSystemPrompt = "You are a helpful code reviewer. Provide a code review based on the given code changes, focusing only on issues that require a change request."

type Analyzer struct {
	gh        githubclient.Client
	titleLLM  llm.Client
	reviewLLM llm.Client
	cfg       config.ReviewConfig
}

// NewAnalyzer builds a review analyzer. titleLLM handles the structured
// title/summary completion (typically a cheaper model); reviewLLM the
// free-form code review.
func NewAnalyzer(gh githubclient.Client, titleLLM, reviewLLM llm.Client, cfg config.ReviewConfig) *Analyzer {
	return &Analyzer{gh: gh, titleLLM: titleLLM, reviewLLM: reviewLLM, cfg: cfg}
}

// AnalyzePullRequest runs the full review flow for one pull request:
// collect the relevant diff, generate title/summary and review, post the
// composed comment. Any failure aborts the flow without posting.
func (a *Analyzer) AnalyzePullRequest(ctx context.Context, prNumber int) error {
	files, err := a.gh.ListChangedFiles(ctx, prNumber)
	if err != nil {
		return fmt.Errorf("analyze pr %d: %w", prNumber, err)
	}

	relevant := make([]model.ChangedFile, 0, len(files))
	for _, f := range files {
		if a.isIgnored(f.Filename) {
			continue
		}
		relevant = append(relevant, f)
	}

	asm := NewDiffAssembler(a.cfg.MaxDiffLength)
	for _, f := range relevant {
		// The full diff is re-fetched per file; wasteful but keeps the
		// extraction logic per-file and the diff endpoint is cheap.
		diff, err := a.gh.GetUnifiedDiff(ctx, prNumber)
		if err != nil {
			return fmt.Errorf("analyze pr %d: %w", prNumber, err)
		}
		if !asm.Append(ExtractFileSection(diff, f.Filename)) {
			break
		}
	}
	diffs := asm.String()

	summaryLines := make([]string, 0, len(relevant))
	for _, f := range relevant {
		summaryLines = append(summaryLines, fmt.Sprintf("%s (%s): %d additions, %d deletions",
			f.Filename, f.Status, f.Additions, f.Deletions))
	}
	changeSummary := strings.Join(summaryLines, "\n")

	var ts TitleAndSummary
	_, err = a.titleLLM.Chat(ctx, llm.Request{
		SystemPrompt: titleSystemPrompt,
		UserPrompt: fmt.Sprintf("PR Summary:\n\n%s\n\nCode changes:\n%s\n\nProvide a Conventional Commits format PR title in 60 characters or less and a brief summary of the main changes and their impact.",
			changeSummary, diffs),
		SchemaName: "pr_title_and_summary",
		Schema:     titleAndSummarySchema,
	}, &ts)
	if err != nil {
		return fmt.Errorf("analyze pr %d: generate title and summary: %w", prNumber, err)
	}
	if ts.Title == "" || ts.Summary == "" {
		return fmt.Errorf("analyze pr %d: title/summary response missing required fields", prNumber)
	}

	slog.InfoContext(ctx, "generated pr suggestion",
		"pr_number", prNumber,
		"suggested_title", ts.Title,
		"diff_truncated", asm.Truncated())

	reviewText, err := a.reviewLLM.Complete(ctx, llm.Request{
		SystemPrompt: reviewSystemPrompt,
		UserPrompt: fmt.Sprintf("PR Summary:\n\n%s\n\nCode changes:\n%s\n\nProvide a code review focusing only on issues that require a change request. Use a markdown list for the review, citing file paths and line numbers. If there are no issues requiring a change request, respond with \"No change requests necessary.\"",
			changeSummary, diffs),
	})
	if err != nil {
		return fmt.Errorf("analyze pr %d: generate review: %w", prNumber, err)
	}

	body := ComposeReviewComment(ts.Title, ts.Summary, reviewText)
	if err := a.gh.CreateComment(ctx, prNumber, body); err != nil {
		return fmt.Errorf("analyze pr %d: %w", prNumber, err)
	}
	return nil
}

func (a *Analyzer) isIgnored(filename string) bool {
	for _, ignored := range a.cfg.IgnoredFiles {
		if filename == ignored {
			return true
		}
	}
	return false
}
