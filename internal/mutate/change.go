// Package mutate applies structured text edits to the Terraform source
// tree in object storage, with a mandatory backup before any write and a
// dry-run preview mode.
package mutate

import (
	"fmt"
	"strings"
)

// Action is the closed set of edit operations.
type Action string

const (
	ActionInsertAfter  Action = "insert_after"
	ActionInsertBefore Action = "insert_before"
	ActionReplace      Action = "replace"
	ActionAppend       Action = "append"
	ActionDelete       Action = "delete"
)

// Change is one atomic edit against one file. Anchor is required for
// insert/delete actions, OldContent for replace. If the anchor or old
// content is absent from the file the change is a no-op and is reported as
// such, never silently dropped.
type Change struct {
	File       string `json:"file"`
	Action     Action `json:"action"`
	Anchor     string `json:"anchor,omitempty"`
	Content    string `json:"content,omitempty"`
	OldContent string `json:"old_content,omitempty"`
}

// Validate checks the change's shape before anything is read or written.
// Delete in particular must name exactly the block to remove; there are no
// wildcard deletes.
func (c Change) Validate() error {
	if c.File == "" {
		return fmt.Errorf("change is missing a target file")
	}
	switch c.Action {
	case ActionAppend:
		return nil
	case ActionInsertAfter, ActionInsertBefore, ActionDelete:
		if c.Anchor == "" {
			return fmt.Errorf("%s change for %s requires an anchor", c.Action, c.File)
		}
		return nil
	case ActionReplace:
		if c.OldContent == "" {
			return fmt.Errorf("replace change for %s requires old_content", c.File)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q for %s", c.Action, c.File)
}

// Apply computes the new file content. It returns the content, a detail
// string for the change record, and whether the change took effect.
func (c Change) Apply(content string) (string, string, bool) {
	switch c.Action {
	case ActionAppend:
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + c.Content, fmt.Sprintf("appended %d characters to end of file", len(c.Content)), true

	case ActionInsertAfter:
		if !strings.Contains(content, c.Anchor) {
			return content, anchorNotFound(c.Anchor), false
		}
		return strings.Replace(content, c.Anchor, c.Anchor+"\n"+c.Content, 1),
			fmt.Sprintf("inserted content after %q", truncate(c.Anchor)), true

	case ActionInsertBefore:
		if !strings.Contains(content, c.Anchor) {
			return content, anchorNotFound(c.Anchor), false
		}
		return strings.Replace(content, c.Anchor, c.Content+"\n"+c.Anchor, 1),
			fmt.Sprintf("inserted content before %q", truncate(c.Anchor)), true

	case ActionReplace:
		if !strings.Contains(content, c.OldContent) {
			return content, "content to replace not found", false
		}
		return strings.ReplaceAll(content, c.OldContent, c.Content),
			fmt.Sprintf("replaced content (%d chars -> %d chars)", len(c.OldContent), len(c.Content)), true

	case ActionDelete:
		if !strings.Contains(content, c.Anchor) {
			return content, "content to delete not found", false
		}
		return strings.ReplaceAll(content, c.Anchor, ""), "deleted content block", true
	}
	return content, fmt.Sprintf("unknown action: %s", c.Action), false
}

// LinesAdded counts the lines the change contributes when applied.
func (c Change) LinesAdded() int {
	if c.Content == "" {
		return 0
	}
	return strings.Count(c.Content, "\n") + 1
}

// LinesRemoved counts the lines the change removes when applied.
func (c Change) LinesRemoved() int {
	removed := c.OldContent
	if c.Action == ActionDelete {
		removed = c.Anchor
	}
	if removed == "" {
		return 0
	}
	return strings.Count(removed, "\n") + 1
}

func anchorNotFound(anchor string) string {
	return fmt.Sprintf("anchor not found: %q", truncate(anchor))
}

func truncate(s string) string {
	if len(s) > 50 {
		return s[:50] + "..."
	}
	return s
}
