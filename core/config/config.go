package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	GitHub   GitHubConfig
	OpenAI   OpenAIConfig
	Policy   PolicyConfig
	Review   ReviewConfig
	Schedule ScheduleConfig
	OTel     OTelConfig
	Env      string
	Port     string
}

type GitHubConfig struct {
	Token         string
	Owner         string
	Repo          string
	WebhookSecret string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	// Model is used for the code review completion; MiniModel (when set) for
	// the cheaper title/summary completion.
	Model     string
	MiniModel string
}

type PolicyConfig struct {
	CloseInactivePRAfterDays int
	MarkStaleIssueAfterDays  int
	CloseStaleIssueAfterDays int
	StaleLabel               string
	// ExemptLabels mark an issue as triaged; the stale sweep skips them.
	ExemptLabels []string
	// ValidIssueMarkers: an issue opened by an untrusted user must contain at
	// least one of these in its body, or it is closed as invalid.
	ValidIssueMarkers []string
	// IgnoredAppSlugs: issues performed via these GitHub Apps are not triaged.
	IgnoredAppSlugs []string
	CommandPrefix   string
}

type ReviewConfig struct {
	// IgnoredFiles are excluded from the diff sent to the model (lockfiles,
	// manifests).
	IgnoredFiles  []string
	MaxDiffLength int
}

type ScheduleConfig struct {
	// Hour of day (0-23) at which the daily sweeps fire.
	Hour     int
	Timezone string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Load loads configuration from environment variables.
// In development it loads from .env first; all values are read once and
// treated as immutable for the process lifetime.
func Load() (Config, error) {
	if getEnv("STEWARD_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("STEWARD_ENV", "development"),
		Port: getEnv("PORT", "3000"),
		GitHub: GitHubConfig{
			Token:         getEnv("GITHUB_TOKEN", ""),
			Owner:         getEnv("GITHUB_OWNER", ""),
			Repo:          getEnv("GITHUB_REPO", ""),
			WebhookSecret: getEnv("GITHUB_WEBHOOK_SECRET", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", ""),
			Model:     getEnv("MODEL_NAME", "gpt-4o"),
			MiniModel: getEnv("MINI_MODEL_NAME", ""),
		},
		Policy: PolicyConfig{
			CloseInactivePRAfterDays: getEnvInt("CLOSE_INACTIVE_PR_AFTER_DAYS", 14),
			MarkStaleIssueAfterDays:  getEnvInt("MARK_STALE_ISSUE_AFTER_DAYS", 30),
			CloseStaleIssueAfterDays: getEnvInt("CLOSE_STALE_ISSUE_AFTER_DAYS", 7),
			StaleLabel:               getEnv("STALE_LABEL", "stale"),
			ExemptLabels:             getEnvList("STALE_EXEMPT_LABELS", []string{"enhancement", "bug"}),
			ValidIssueMarkers:        getEnvList("VALID_ISSUE_MARKERS", []string{"- [x] This issue is valid", "### Environment"}),
			IgnoredAppSlugs:          getEnvList("IGNORED_APP_SLUGS", []string{"linear"}),
			CommandPrefix:            getEnv("COMMAND_PREFIX", "/ai-review"),
		},
		Review: ReviewConfig{
			IgnoredFiles:  getEnvList("REVIEW_IGNORED_FILES", []string{"package.json", "pnpm-lock.yaml", "yarn.lock", "package-lock.json"}),
			MaxDiffLength: getEnvInt("REVIEW_MAX_DIFF_LENGTH", 100000),
		},
		Schedule: ScheduleConfig{
			Hour:     getEnvInt("SCHEDULE_HOUR", 0),
			Timezone: getEnv("SCHEDULE_TIMEZONE", "Asia/Shanghai"),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "steward"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	if cfg.GitHub.Token == "" {
		return Config{}, fmt.Errorf("GITHUB_TOKEN is required")
	}
	if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
		return Config{}, fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required")
	}
	if cfg.GitHub.WebhookSecret == "" {
		return Config{}, fmt.Errorf("GITHUB_WEBHOOK_SECRET is required")
	}
	if cfg.OpenAI.APIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// TitleModel returns the model used for the title/summary completion,
// preferring the mini model when configured.
func (c OpenAIConfig) TitleModel() string {
	if c.MiniModel != "" {
		return c.MiniModel
	}
	return c.Model
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
