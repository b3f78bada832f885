package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/ops"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "List resources tracked in the state file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), ops.Request{Operation: ops.OpState})
	},
}
