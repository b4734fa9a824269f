package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/gavel-dev/gavel/internal/agent"
	"github.com/gavel-dev/gavel/internal/config"
	"github.com/gavel-dev/gavel/internal/review"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagConfig = ""
	flagRepo = ""
	flagPR = 0
	flagBackend = ""
	flagModels = ""
	flagMode = ""
	flagDirective = ""
	flagBranch = ""
	flagNoSnapshot = false
	flagNoRedact = false
	flagDryRun = false
}

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagRepo = "acme/widgets"
	flagPR = 7
	flagBackend = "agent"
	flagModels = "gemini-2.0-flash,claude-sonnet-4-20250514"
	flagMode = "directed"
	flagDirective = "focus on error handling"
	flagBranch = "feature/login"
	flagNoRedact = true

	m := buildOverrides()
	want := map[string]string{
		"repository": "acme/widgets",
		"pr":         "7",
		"backend":    "agent",
		"models":     "gemini-2.0-flash,claude-sonnet-4-20250514",
		"mode":       "directed",
		"directive":  "focus on error handling",
		"branch":     "feature/login",
		"noRedact":   "true",
	}
	if len(m) != len(want) {
		t.Fatalf("buildOverrides() = %v, want %v", m, want)
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("overrides[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestBuildBackend_Direct(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendDirect
	cfg.ModelChain = []string{"gemini-2.0-flash"}
	cfg.GeminiAPIKey = "k"

	b, err := buildBackend(cfg)
	if err != nil {
		t.Fatalf("buildBackend error: %v", err)
	}
	if _, ok := b.(*review.DirectBackend); !ok {
		t.Errorf("backend type = %T, want *review.DirectBackend", b)
	}
}

func TestBuildBackend_Agent(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendAgent
	cfg.Repository = "acme/widgets"
	cfg.PRNumber = 7
	cfg.AgentAPIKey = "k"
	cfg.AgentSource = "github/acme/widgets"

	b, err := buildBackend(cfg)
	if err != nil {
		t.Fatalf("buildBackend error: %v", err)
	}
	ab, ok := b.(*agent.ReviewBackend)
	if !ok {
		t.Fatalf("backend type = %T, want *agent.ReviewBackend", b)
	}
	if ab.Title != "PR review: acme/widgets#7" {
		t.Errorf("session title = %q", ab.Title)
	}
}

func TestApplyRepoFallback(t *testing.T) {
	orig := detectRepo
	defer func() { detectRepo = orig }()
	detectRepo = func() (string, string, error) {
		return "acme", "widgets", nil
	}

	cfg := config.Default()
	applyRepoFallback(&cfg)
	if cfg.Repository != "acme/widgets" {
		t.Errorf("Repository = %q, want detected acme/widgets", cfg.Repository)
	}
}

func TestApplyRepoFallback_ConfiguredRepoWins(t *testing.T) {
	orig := detectRepo
	defer func() { detectRepo = orig }()
	detectRepo = func() (string, string, error) {
		t.Error("detection must not run when the repository is configured")
		return "", "", nil
	}

	cfg := config.Default()
	cfg.Repository = "acme/gadgets"
	applyRepoFallback(&cfg)
	if cfg.Repository != "acme/gadgets" {
		t.Errorf("Repository = %q, configured value should stand", cfg.Repository)
	}
}

func TestApplyRepoFallback_DetectionFailure(t *testing.T) {
	orig := detectRepo
	defer func() { detectRepo = orig }()
	detectRepo = func() (string, string, error) {
		return "", "", errors.New("not a git repository")
	}

	cfg := config.Default()
	applyRepoFallback(&cfg)
	if cfg.Repository != "" {
		t.Errorf("Repository = %q, want empty so Validate reports it", cfg.Repository)
	}
}

func TestResultLine(t *testing.T) {
	cfg := config.Default()
	cfg.Repository = "acme/widgets"
	cfg.PRNumber = 7
	result := &review.Result{ModelUsed: "gemini-2.0-flash", CommentsPosted: 2, SnapshotTruncated: true}

	line := resultLine(cfg, result, false)
	if !strings.Contains(line, "posted 2 comment(s)") {
		t.Errorf("line = %q, want posted count", line)
	}
	if !strings.Contains(line, "(snapshot truncated)") {
		t.Errorf("line = %q, want truncation note", line)
	}
}

func TestResultLine_DryRun(t *testing.T) {
	cfg := config.Default()
	cfg.Repository = "acme/widgets"
	cfg.PRNumber = 7
	result := &review.Result{ModelUsed: "gemini-2.0-flash"}

	line := resultLine(cfg, result, true)
	if strings.Contains(line, "posted") {
		t.Errorf("line = %q, dry run must not report a posted count", line)
	}
	if !strings.Contains(line, "nothing posted") {
		t.Errorf("line = %q, want dry-run note", line)
	}
}

func TestBuildBackend_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "carrier-pigeon"
	if _, err := buildBackend(cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
