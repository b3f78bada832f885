package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/ops"
)

var (
	destroyVars        []string
	destroySource      string
	destroyAutoApprove bool
)

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Destroy all managed infrastructure",
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(destroyVars)
		if err != nil {
			return err
		}
		return dispatch(cmd.Context(), ops.Request{
			Operation:      ops.OpDestroy,
			SourceLocation: destroySource,
			AutoApprove:    destroyAutoApprove,
			Variables:      vars,
		})
	},
}

func init() {
	destroyCmd.Flags().StringArrayVar(&destroyVars, "var", nil, "terraform variable as key=value (repeatable)")
	destroyCmd.Flags().StringVar(&destroySource, "source", "", "source location override (s3://bucket/prefix/)")
	destroyCmd.Flags().BoolVar(&destroyAutoApprove, "auto-approve", false, "confirm the destructive operation")
}
