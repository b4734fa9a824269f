package review

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

const systemPrompt = `You are an expert code reviewer for pull requests. You are given the repository context, the pull request diff, and the prior review conversation.

Rules:
1. Review the changes shown in the diff; use the repository context to judge their fit, not to review unchanged code.
2. Focus on bugs, security issues, performance problems, and correctness. Avoid bikeshedding on style unless it significantly hurts readability.
3. Be concise and actionable. Every issue you raise must come with a concrete suggestion.
4. Take the prior conversation into account; do not repeat feedback that was already given and addressed.`

// maxListedFiles caps the changed-files section of the prompt.
const maxListedFiles = 10

const outputContract = `Structure your review exactly as:

## Summary
One paragraph on what the change does and your overall assessment.

## Critical Issues
Blocking problems (bugs, security, data loss). Write "None." if there are none.

## Suggestions
Non-blocking improvements.

## Architecture Notes
Only if the change has structural implications; omit the section otherwise.

## Action Items
Short checklist of what the author should do next.`

// SystemPrompt returns the fixed reviewer persona sent with every request.
func SystemPrompt() string {
	return systemPrompt
}

// Assemble renders the instruction document from the budgeted context and the
// review mode. Pure: identical inputs produce identical output.
func Assemble(b Budgeted, mode Mode, directive string) string {
	var sb strings.Builder

	sb.WriteString("# Pull Request Review\n\n")
	sb.WriteString("## Instructions\n\n")
	switch mode {
	case ModeDirected:
		sb.WriteString("The reviewer was invoked with an explicit directive. The directive takes priority over the default comprehensive review; address it first and fully, then mention anything else only if critical.\n\n")
		fmt.Fprintf(&sb, "Directive: %s\n", directive)
	default:
		sb.WriteString("Perform a comprehensive review of this pull request, prioritized by impact: correctness and security first, then performance, then maintainability.\n")
	}

	if files := changedFiles(b.Diff); len(files) > 0 {
		sb.WriteString("\n## Changed Files\n\n")
		for i, f := range files {
			if i == maxListedFiles {
				fmt.Fprintf(&sb, "... and %d more files\n", len(files)-maxListedFiles)
				break
			}
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	sb.WriteString("\n## Repository Context\n\n")
	sb.WriteString("--- BEGIN REPOSITORY ---\n")
	sb.WriteString(b.Snapshot)
	sb.WriteString("\n--- END REPOSITORY ---\n")

	sb.WriteString("\n## Diff\n\n")
	sb.WriteString("--- BEGIN DIFF ---\n")
	sb.WriteString(b.Diff)
	sb.WriteString("\n--- END DIFF ---\n")

	sb.WriteString("\n## Conversation History\n\n")
	sb.WriteString("--- BEGIN CONVERSATION ---\n")
	sb.WriteString(b.Conversation)
	sb.WriteString("\n--- END CONVERSATION ---\n")

	sb.WriteString("\n## Output Format\n\n")
	sb.WriteString(outputContract)
	sb.WriteString("\n")

	return sb.String()
}

// changedFiles lists the paths touched by the diff, in diff order. A diff
// that fails to parse yields no listing; the raw diff section still carries
// the full content.
func changedFiles(diff string) []string {
	if strings.TrimSpace(diff) == "" {
		return nil
	}
	parsed, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil
	}
	var files []string
	for _, f := range parsed {
		switch {
		case f.IsDelete:
			files = append(files, f.OldName+" (deleted)")
		case f.IsRename:
			files = append(files, f.OldName+" -> "+f.NewName)
		case f.NewName != "":
			files = append(files, f.NewName)
		case f.OldName != "":
			files = append(files, f.OldName)
		}
	}
	return files
}
