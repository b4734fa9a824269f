package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gavel-dev/gavel/internal/agent"
	"github.com/gavel-dev/gavel/internal/config"
	"github.com/gavel-dev/gavel/internal/github"
	"github.com/gavel-dev/gavel/internal/providers"
	"github.com/gavel-dev/gavel/internal/publish"
	"github.com/gavel-dev/gavel/internal/redact"
	"github.com/gavel-dev/gavel/internal/review"
	"github.com/gavel-dev/gavel/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	flagConfig     string
	flagRepo       string
	flagPR         int
	flagBackend    string
	flagModels     string
	flagMode       string
	flagDirective  string
	flagBranch     string
	flagNoSnapshot bool
	flagNoRedact   bool
	flagDryRun     bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request and post the result",
	Long:  "Gathers the PR diff, conversation thread, and a repository snapshot, runs the review backend, and posts the review as PR comments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}
		applyRepoFallback(&cfg)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitConfigError
			return nil
		}
		runReview(cfg)
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&flagConfig, "config", "", "Config file path (default: .gavel.toml)")
	reviewCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository in owner/name form")
	reviewCmd.Flags().IntVar(&flagPR, "pr", 0, "Pull request number")
	reviewCmd.Flags().StringVar(&flagBackend, "backend", "", "Review backend (direct, agent)")
	reviewCmd.Flags().StringVar(&flagModels, "models", "", "Model fallback chain (comma-separated)")
	reviewCmd.Flags().StringVar(&flagMode, "mode", "", "Review mode (automatic, directed)")
	reviewCmd.Flags().StringVar(&flagDirective, "directive", "", "Reviewer directive for directed mode")
	reviewCmd.Flags().StringVar(&flagBranch, "branch", "", "Branch the agent backend starts from")
	reviewCmd.Flags().BoolVar(&flagNoSnapshot, "no-snapshot", false, "Skip the repository snapshot context")
	reviewCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	reviewCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the review to stdout instead of posting")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagRepo != "" {
		m["repository"] = flagRepo
	}
	if flagPR > 0 {
		m["pr"] = strconv.Itoa(flagPR)
	}
	if flagBackend != "" {
		m["backend"] = flagBackend
	}
	if flagModels != "" {
		m["models"] = flagModels
	}
	if flagMode != "" {
		m["mode"] = flagMode
	}
	if flagDirective != "" {
		m["directive"] = flagDirective
	}
	if flagBranch != "" {
		m["branch"] = flagBranch
	}
	if flagNoRedact {
		m["noRedact"] = "true"
	}
	return m
}

// detectRepo is swapped in tests.
var detectRepo = github.DetectRepo

// applyRepoFallback fills in the repository from the checkout's origin
// remote when neither config, env, nor flags named one. Runs before Validate
// so a detected repo passes the owner/name check like any other source.
func applyRepoFallback(cfg *config.Config) {
	if cfg.Repository != "" {
		return
	}
	owner, name, err := detectRepo()
	if err != nil {
		return
	}
	cfg.Repository = owner + "/" + name
	fmt.Fprintf(os.Stderr, "Using repository %s from git remote origin\n", cfg.Repository)
}

func runReview(cfg config.Config) {
	ctx := context.Background()

	gh, err := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitConfigError
		return
	}

	req, err := gatherContext(ctx, gh, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitConfigError
		return
	}

	opts := review.Options{
		MaxContextChars: cfg.MaxContextChars,
		Backend:         backend,
	}
	if flagDryRun {
		opts.Publisher = stdoutPublisher{}
	} else {
		opts.Publisher = publish.NewPublisher(gh, cfg.Owner(), cfg.Name(), cfg.PRNumber, cfg.MaxCommentChars, cfg.PostDelay, cfg.Mode)
	}

	result, err := review.Run(ctx, req, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if result != nil && result.CommentsPosted > 0 {
			fmt.Fprintf(os.Stderr, "%d review comment(s) were posted before the failure\n", result.CommentsPosted)
		}
		exitCode = ExitRuntimeError
		return
	}

	fmt.Fprintln(os.Stderr, resultLine(cfg, result, flagDryRun))
}

// resultLine summarizes a finished run. Dry runs print the review instead of
// posting, so the comment count would always read zero and is left out.
func resultLine(cfg config.Config, result *review.Result, dryRun bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reviewed %s#%d with %s", cfg.Repository, cfg.PRNumber, result.ModelUsed)
	if result.SnapshotTruncated {
		sb.WriteString(" (snapshot truncated)")
	}
	if dryRun {
		sb.WriteString(", dry run: review printed, nothing posted")
	} else {
		fmt.Fprintf(&sb, ", posted %d comment(s)", result.CommentsPosted)
	}
	return sb.String()
}

// gatherContext collects the three context inputs. The diff is mandatory;
// the conversation and snapshot degrade to placeholders when unavailable.
func gatherContext(ctx context.Context, gh *github.Client, cfg config.Config) (review.Request, error) {
	diff, err := gh.GetPRDiff(ctx, cfg.Owner(), cfg.Name(), cfg.PRNumber)
	if err != nil {
		return review.Request{}, err
	}

	conversation := github.NoConversation
	if comments, err := gh.ListIssueComments(ctx, cfg.Owner(), cfg.Name(), cfg.PRNumber); err == nil {
		conversation = github.FlattenConversation(comments)
	} else {
		fmt.Fprintf(os.Stderr, "Warning: could not fetch PR comments: %v\n", err)
	}

	var snap string
	if !flagNoSnapshot {
		snap, err = snapshot.Bundle(snapshot.Options{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: no repository snapshot: %v\n", err)
			snap = ""
		}
	}

	if cfg.RedactSecrets {
		diff = redact.Secrets(diff)
		conversation = redact.Secrets(conversation)
		snap = redact.Secrets(snap)
	} else {
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}

	return review.Request{
		Snapshot:     snap,
		Diff:         diff,
		Conversation: conversation,
		Mode:         review.Mode(cfg.Mode),
		Directive:    cfg.Directive,
	}, nil
}

func buildBackend(cfg config.Config) (review.Backend, error) {
	switch cfg.Backend {
	case config.BackendDirect:
		invoker := providers.NewInvoker(providers.Credentials{
			Gemini:    cfg.GeminiAPIKey,
			Anthropic: cfg.AnthropicAPIKey,
			OpenAI:    cfg.OpenAIAPIKey,
		})
		return &review.DirectBackend{Invoker: invoker, Chain: cfg.ModelChain}, nil
	case config.BackendAgent:
		client := agent.NewClient(cfg.AgentBaseURL, cfg.AgentAPIKey)
		return &agent.ReviewBackend{
			Client: client,
			Poller: agent.NewPoller(client, cfg.PollInterval, cfg.MaxPollAttempts),
			Source: cfg.AgentSource,
			Branch: cfg.BranchRef,
			Title:  fmt.Sprintf("PR review: %s#%d", cfg.Repository, cfg.PRNumber),
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// stdoutPublisher prints instead of posting. Used by --dry-run.
type stdoutPublisher struct{}

func (stdoutPublisher) Publish(ctx context.Context, review, modelUsed string) (int, error) {
	fmt.Println(review)
	return 0, nil
}
