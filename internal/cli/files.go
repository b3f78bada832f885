package cli

import (
	"github.com/spf13/cobra"
)

var filesPrefix string

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Read the stored Terraform source files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		prefix := filesPrefix
		if prefix == "" {
			prefix = a.cfg.SourcePrefix
		}
		files, total, err := a.source.ReadSourceFiles(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"bucket":      a.cfg.SourceBucket,
			"prefix":      prefix,
			"total_files": len(files),
			"total_bytes": total,
			"files":       files,
		})
	},
}

func init() {
	filesCmd.Flags().StringVar(&filesPrefix, "prefix", "", "key prefix to read (defaults to the source prefix)")
}
