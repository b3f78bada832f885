package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/ops"
)

var (
	applyVars        []string
	applySource      string
	applyAutoApprove bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply the configuration to live infrastructure",
	Long: `Starts an asynchronous terraform apply. Apply modifies live
infrastructure and is refused unless --auto-approve is passed; this is
the single safety gate, enforced before any build starts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(applyVars)
		if err != nil {
			return err
		}
		return dispatch(cmd.Context(), ops.Request{
			Operation:      ops.OpApply,
			SourceLocation: applySource,
			AutoApprove:    applyAutoApprove,
			Variables:      vars,
		})
	},
}

func init() {
	applyCmd.Flags().StringArrayVar(&applyVars, "var", nil, "terraform variable as key=value (repeatable)")
	applyCmd.Flags().StringVar(&applySource, "source", "", "source location override (s3://bucket/prefix/)")
	applyCmd.Flags().BoolVar(&applyAutoApprove, "auto-approve", false, "confirm the destructive operation")
}
