package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend selects how the review prompt is executed.
const (
	BackendDirect = "direct"
	BackendAgent  = "agent"
)

// Review modes.
const (
	ModeAutomatic = "automatic"
	ModeDirected  = "directed"
)

// Config holds everything the pipeline needs for one run. Components never
// read the environment themselves; they receive values from here.
type Config struct {
	GitHubToken  string
	GitHubAPIURL string
	Repository   string
	PRNumber     int
	Backend      string
	ModelChain   []string

	GeminiAPIKey    string
	AnthropicAPIKey string
	OpenAIAPIKey    string

	AgentAPIKey  string
	AgentBaseURL string
	AgentSource  string
	BranchRef    string

	Mode      string
	Directive string

	MaxContextChars int
	MaxCommentChars int
	PollInterval    time.Duration
	MaxPollAttempts int
	PostDelay       time.Duration
	RedactSecrets   bool
}

// fileConfig is the TOML-settable subset. Credentials and trigger parameters
// never come from the file; durations are expressed in seconds.
type fileConfig struct {
	GitHubAPIURL        string   `toml:"githubApiUrl"`
	Repository          string   `toml:"repository"`
	Backend             string   `toml:"backend"`
	Models              []string `toml:"models"`
	AgentURL            string   `toml:"agentUrl"`
	AgentSource         string   `toml:"agentSource"`
	Branch              string   `toml:"branch"`
	MaxContextChars     int      `toml:"maxContextChars"`
	MaxCommentChars     int      `toml:"maxCommentChars"`
	PollIntervalSeconds int      `toml:"pollIntervalSeconds"`
	MaxPollAttempts     int      `toml:"maxPollAttempts"`
	PostDelaySeconds    int      `toml:"postDelaySeconds"`
}

// DefaultConfigFile is looked up in the working directory (the CI checkout).
const DefaultConfigFile = ".gavel.toml"

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		GitHubAPIURL:    "https://api.github.com",
		Backend:         BackendDirect,
		ModelChain:      []string{"gemini-2.0-flash", "gemini-1.5-pro"},
		AgentBaseURL:    "https://jules.googleapis.com/v1alpha",
		BranchRef:       "main",
		Mode:            ModeAutomatic,
		MaxContextChars: 400000,
		MaxCommentChars: 60000,
		PollInterval:    10 * time.Second,
		MaxPollAttempts: 60,
		PostDelay:       2 * time.Second,
		RedactSecrets:   true,
	}
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(path string, overrides map[string]string) (Config, error) {
	cfg := Default()

	if err := mergeFile(&cfg, path); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if fc.GitHubAPIURL != "" {
		cfg.GitHubAPIURL = strings.TrimRight(fc.GitHubAPIURL, "/")
	}
	if fc.Repository != "" {
		cfg.Repository = fc.Repository
	}
	if fc.Backend != "" {
		cfg.Backend = fc.Backend
	}
	if len(fc.Models) > 0 {
		cfg.ModelChain = fc.Models
	}
	if fc.AgentURL != "" {
		cfg.AgentBaseURL = strings.TrimRight(fc.AgentURL, "/")
	}
	if fc.AgentSource != "" {
		cfg.AgentSource = fc.AgentSource
	}
	if fc.Branch != "" {
		cfg.BranchRef = fc.Branch
	}
	if fc.MaxContextChars > 0 {
		cfg.MaxContextChars = fc.MaxContextChars
	}
	if fc.MaxCommentChars > 0 {
		cfg.MaxCommentChars = fc.MaxCommentChars
	}
	if fc.PollIntervalSeconds > 0 {
		cfg.PollInterval = time.Duration(fc.PollIntervalSeconds) * time.Second
	}
	if fc.MaxPollAttempts > 0 {
		cfg.MaxPollAttempts = fc.MaxPollAttempts
	}
	if fc.PostDelaySeconds > 0 {
		cfg.PostDelay = time.Duration(fc.PostDelaySeconds) * time.Second
	}
	return nil
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}
	if v := os.Getenv("GITHUB_API_URL"); v != "" {
		cfg.GitHubAPIURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("GITHUB_REPOSITORY"); v != "" {
		cfg.Repository = v
	}
	if v := os.Getenv("PR_NUMBER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PRNumber = n
		}
	}
	if v := os.Getenv("REVIEW_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("REVIEW_DIRECTIVE"); v != "" {
		cfg.Directive = v
	}
	if v := os.Getenv("GAVEL_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("GAVEL_MODELS"); v != "" {
		cfg.ModelChain = splitList(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	} else if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("GAVEL_AGENT_API_KEY"); v != "" {
		cfg.AgentAPIKey = v
	}
	if v := os.Getenv("GAVEL_AGENT_URL"); v != "" {
		cfg.AgentBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("GAVEL_AGENT_SOURCE"); v != "" {
		cfg.AgentSource = v
	}
	if v := os.Getenv("GAVEL_BRANCH"); v != "" {
		cfg.BranchRef = v
	}
	if v := os.Getenv("GAVEL_MAX_CONTEXT_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxContextChars = n
		}
	}
	if v := os.Getenv("GAVEL_POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("GAVEL_MAX_POLL_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPollAttempts = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["repository"]; ok && v != "" {
		cfg.Repository = v
	}
	if v, ok := overrides["pr"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PRNumber = n
		}
	}
	if v, ok := overrides["backend"]; ok && v != "" {
		cfg.Backend = v
	}
	if v, ok := overrides["models"]; ok && v != "" {
		cfg.ModelChain = splitList(v)
	}
	if v, ok := overrides["mode"]; ok && v != "" {
		cfg.Mode = v
	}
	if v, ok := overrides["directive"]; ok && v != "" {
		cfg.Directive = v
	}
	if v, ok := overrides["branch"]; ok && v != "" {
		cfg.BranchRef = v
	}
	if v, ok := overrides["noRedact"]; ok && v == "true" {
		cfg.RedactSecrets = false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that everything a run needs is present. It runs before any
// context gathering so a misconfigured run fails before the expensive work.
func (c Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN is not set")
	}
	if c.Repository == "" || !strings.Contains(c.Repository, "/") {
		return fmt.Errorf("repository must be in owner/name form, got %q", c.Repository)
	}
	if c.PRNumber <= 0 {
		return fmt.Errorf("pull request number is not set")
	}
	switch c.Mode {
	case ModeAutomatic:
		// A stray directive in automatic mode is ignored, not fatal.
	case ModeDirected:
		if strings.TrimSpace(c.Directive) == "" {
			return fmt.Errorf("directed mode requires a directive")
		}
	default:
		return fmt.Errorf("unknown review mode %q", c.Mode)
	}
	switch c.Backend {
	case BackendDirect:
		if len(c.ModelChain) == 0 {
			return fmt.Errorf("model chain is empty")
		}
		for _, id := range c.ModelChain {
			if err := c.validateModelKey(id); err != nil {
				return err
			}
		}
	case BackendAgent:
		if c.AgentAPIKey == "" {
			return fmt.Errorf("GAVEL_AGENT_API_KEY is not set")
		}
		if c.AgentSource == "" {
			return fmt.Errorf("agent source identifier is not set")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

func (c Config) validateModelKey(modelID string) error {
	switch {
	case strings.HasPrefix(modelID, "gemini"):
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("model %s requires GEMINI_API_KEY (or GOOGLE_API_KEY)", modelID)
		}
	case strings.HasPrefix(modelID, "claude"):
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("model %s requires ANTHROPIC_API_KEY", modelID)
		}
	case strings.HasPrefix(modelID, "gpt") || strings.HasPrefix(modelID, "o"):
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("model %s requires OPENAI_API_KEY", modelID)
		}
	default:
		return fmt.Errorf("cannot infer provider for model %q", modelID)
	}
	return nil
}

// Owner returns the owner half of the owner/name repository string.
func (c Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// Name returns the repository name half of owner/name.
func (c Config) Name() string {
	_, name, _ := strings.Cut(c.Repository, "/")
	return name
}
