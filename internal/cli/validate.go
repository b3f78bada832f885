package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/ops"
)

var validateSource string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration syntax",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), ops.Request{
			Operation:      ops.OpValidate,
			SourceLocation: validateSource,
		})
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSource, "source", "", "source location override (s3://bucket/prefix/)")
}
