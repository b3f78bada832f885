package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/mutate"
)

var (
	modifyFile        string
	modifyType        string
	modifyDescription string
	modifyApply       bool
)

var modifyCmd = &cobra.Command{
	Use:   "modify",
	Short: "Apply text changes to the stored source tree",
	Long: `Applies a batch of text changes to the Terraform source tree in S3.
Changes are read as a JSON array from --changes (or stdin with "-"), each
with file, action (insert_after, insert_before, replace, append, delete)
and the anchor or old content the action needs.

Runs are previews by default; pass --apply to write. A real run takes a
timestamped backup of the whole source tree before any file is touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := readChanges(modifyFile)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		result, err := a.mutator.Modify(cmd.Context(), mutate.Request{
			ModificationType: modifyType,
			Description:      modifyDescription,
			Changes:          changes,
			DryRun:           !modifyApply,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func readChanges(path string) ([]mutate.Change, error) {
	if path == "" {
		return nil, fmt.Errorf("--changes is required")
	}
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading changes: %w", err)
	}
	var changes []mutate.Change
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("parsing changes: %w", err)
	}
	return changes, nil
}

func init() {
	modifyCmd.Flags().StringVar(&modifyFile, "changes", "", "path to a JSON change list, or - for stdin")
	modifyCmd.Flags().StringVar(&modifyType, "type", "update", "modification type recorded with the result")
	modifyCmd.Flags().StringVar(&modifyDescription, "description", "", "free-form description of the change batch")
	modifyCmd.Flags().BoolVar(&modifyApply, "apply", false, "write the changes (default is a dry-run preview)")
}
