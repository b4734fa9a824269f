package review

import (
	"fmt"
	"strings"
	"testing"
)

func sampleBudgeted() Budgeted {
	return Budgeted{
		Snapshot:     "package main",
		Diff:         "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n@@ -1 +1,2 @@\n package main\n+import \"fmt\"\n",
		Conversation: "No prior conversation.",
	}
}

func TestAssembleSections(t *testing.T) {
	prompt := Assemble(sampleBudgeted(), ModeAutomatic, "")

	for _, section := range []string{
		"## Instructions",
		"## Repository Context",
		"--- BEGIN REPOSITORY ---",
		"## Diff",
		"--- BEGIN DIFF ---",
		"## Conversation History",
		"--- BEGIN CONVERSATION ---",
		"## Output Format",
	} {
		if !strings.Contains(prompt, section) {
			t.Errorf("prompt missing section %q", section)
		}
	}
	if !strings.Contains(prompt, "package main") {
		t.Error("prompt missing snapshot content")
	}
	if !strings.Contains(prompt, "No prior conversation.") {
		t.Error("prompt missing conversation content")
	}
}

func TestAssembleAutomaticInstructions(t *testing.T) {
	prompt := Assemble(sampleBudgeted(), ModeAutomatic, "")
	if !strings.Contains(prompt, "comprehensive review") {
		t.Error("automatic mode should request a comprehensive review")
	}
	if strings.Contains(prompt, "Directive:") {
		t.Error("automatic mode should not carry a directive")
	}
}

func TestAssembleDirectedInstructions(t *testing.T) {
	prompt := Assemble(sampleBudgeted(), ModeDirected, "check for SQL injection")
	if !strings.Contains(prompt, "Directive: check for SQL injection") {
		t.Error("directed mode should include the directive")
	}
	if !strings.Contains(prompt, "takes priority") {
		t.Error("directed instructions should state the directive takes priority")
	}
}

func TestAssembleChangedFiles(t *testing.T) {
	prompt := Assemble(sampleBudgeted(), ModeAutomatic, "")
	if !strings.Contains(prompt, "## Changed Files") {
		t.Error("prompt should list changed files")
	}
	if !strings.Contains(prompt, "- main.go") {
		t.Error("prompt should name main.go as changed")
	}
}

func TestAssembleChangedFilesCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < maxListedFiles+5; i++ {
		name := fmt.Sprintf("f%02d.go", i)
		fmt.Fprintf(&sb, "diff --git a/%s b/%s\n--- a/%s\n+++ b/%s\n@@ -1 +1 @@\n-x\n+y\n", name, name, name, name)
	}
	b := sampleBudgeted()
	b.Diff = sb.String()

	prompt := Assemble(b, ModeAutomatic, "")
	if !strings.Contains(prompt, "... and 5 more files") {
		t.Error("file list should be capped with a remainder line")
	}
}

func TestAssembleUnparsableDiff(t *testing.T) {
	b := sampleBudgeted()
	b.Diff = "this is not a unified diff"
	prompt := Assemble(b, ModeAutomatic, "")
	if strings.Contains(prompt, "## Changed Files") {
		t.Error("unparsable diff should skip the changed-files section")
	}
	if !strings.Contains(prompt, "this is not a unified diff") {
		t.Error("raw diff content must still be present")
	}
}

func TestAssembleDeterministic(t *testing.T) {
	a := Assemble(sampleBudgeted(), ModeAutomatic, "")
	b := Assemble(sampleBudgeted(), ModeAutomatic, "")
	if a != b {
		t.Error("Assemble must be deterministic")
	}
}

func TestAssembleOutputContract(t *testing.T) {
	prompt := Assemble(sampleBudgeted(), ModeAutomatic, "")
	for _, heading := range []string{"## Summary", "## Critical Issues", "## Suggestions", "## Action Items"} {
		if !strings.Contains(prompt, heading) {
			t.Errorf("output contract missing %q", heading)
		}
	}
}

func TestSystemPromptStable(t *testing.T) {
	if SystemPrompt() == "" {
		t.Error("system prompt should not be empty")
	}
	if SystemPrompt() != SystemPrompt() {
		t.Error("system prompt should be fixed")
	}
}
