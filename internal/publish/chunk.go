package publish

import "strings"

// Chunk splits review text into pieces no longer than maxChars, breaking only
// at line boundaries. Concatenating the returned chunks reproduces the input
// exactly. A single line longer than maxChars becomes its own oversized
// chunk rather than being split mid-line.
func Chunk(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return []string{text}
	}

	lines := strings.SplitAfter(text, "\n")
	var chunks []string
	var current strings.Builder

	for _, line := range lines {
		if current.Len() > 0 && current.Len()+len(line) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
