package mutate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeValidate(t *testing.T) {
	cases := []struct {
		name   string
		change Change
		ok     bool
	}{
		{"append needs no anchor", Change{File: "main.tf", Action: ActionAppend, Content: "x"}, true},
		{"insert_after needs anchor", Change{File: "main.tf", Action: ActionInsertAfter, Content: "x"}, false},
		{"insert_before needs anchor", Change{File: "main.tf", Action: ActionInsertBefore, Content: "x"}, false},
		{"replace needs old_content", Change{File: "main.tf", Action: ActionReplace, Content: "x"}, false},
		{"delete needs anchor", Change{File: "main.tf", Action: ActionDelete}, false},
		{"delete with anchor", Change{File: "main.tf", Action: ActionDelete, Anchor: "block"}, true},
		{"missing file", Change{Action: ActionAppend}, false},
		{"unknown action", Change{File: "main.tf", Action: "upsert"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.change.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestChangeApply_InsertAfterFirstOccurrenceOnly(t *testing.T) {
	content := "a\nmark\nb\nmark\n"
	c := Change{File: "f", Action: ActionInsertAfter, Anchor: "mark", Content: "new"}

	next, _, applied := c.Apply(content)
	require.True(t, applied)
	assert.Equal(t, "a\nmark\nnew\nb\nmark\n", next)
}

func TestChangeApply_ReplaceAllOccurrences(t *testing.T) {
	content := "ami = \"ami-111\"\nbackup_ami = \"ami-111\"\n"
	c := Change{File: "f", Action: ActionReplace, OldContent: "ami-111", Content: "ami-222"}

	next, _, applied := c.Apply(content)
	require.True(t, applied)
	assert.NotContains(t, next, "ami-111")
	assert.Equal(t, "ami = \"ami-222\"\nbackup_ami = \"ami-222\"\n", next)
}

func TestChangeApply_AnchorMissingLeavesContentIntact(t *testing.T) {
	content := "unchanged\n"
	for _, action := range []Action{ActionInsertAfter, ActionInsertBefore, ActionDelete} {
		c := Change{File: "f", Action: action, Anchor: "ghost", Content: "x"}
		next, detail, applied := c.Apply(content)
		assert.False(t, applied)
		assert.Equal(t, content, next)
		assert.NotEmpty(t, detail)
	}
}

func TestChangeApply_AppendAddsNewlineSeparator(t *testing.T) {
	c := Change{File: "f", Action: ActionAppend, Content: "tail"}

	next, _, applied := c.Apply("no trailing newline")
	require.True(t, applied)
	assert.Equal(t, "no trailing newline\ntail", next)

	next, _, _ = c.Apply("")
	assert.Equal(t, "tail", next)
}

func TestChangeApply_InsertThenRemoveRoundTrip(t *testing.T) {
	content := "a\nanchor\nb\n"

	ins := Change{File: "f", Action: ActionInsertAfter, Anchor: "anchor", Content: "added"}
	mid, _, ok := ins.Apply(content)
	require.True(t, ok)
	assert.Equal(t, "a\nanchor\nadded\nb\n", mid)

	rep := Change{File: "f", Action: ActionReplace, OldContent: "\nadded", Content: ""}
	out, _, ok := rep.Apply(mid)
	require.True(t, ok)
	assert.Equal(t, content, out)
}

func TestChangeLineCounts(t *testing.T) {
	c := Change{Action: ActionReplace, OldContent: "a\nb", Content: "x\ny\nz"}
	assert.Equal(t, 3, c.LinesAdded())
	assert.Equal(t, 2, c.LinesRemoved())

	d := Change{Action: ActionDelete, Anchor: "one line"}
	assert.Equal(t, 0, d.LinesAdded())
	assert.Equal(t, 1, d.LinesRemoved())
}
