package mutate

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// maxPreviewLines bounds the size of dry-run previews.
const maxPreviewLines = 50

// diffPreview renders a unified diff between the old and new content.
func diffPreview(oldContent, newContent, filename string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: filename + " (original)",
		ToFile:   filename + " (modified)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return "no changes detected"
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > maxPreviewLines {
		lines = lines[:maxPreviewLines]
	}
	return strings.Join(lines, "\n")
}
