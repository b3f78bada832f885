package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/ops"
)

var outputCmd = &cobra.Command{
	Use:   "output",
	Short: "Refresh and export terraform outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), ops.Request{Operation: ops.OpOutput})
	},
}
