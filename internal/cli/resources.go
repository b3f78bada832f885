package cli

import (
	"github.com/spf13/cobra"
)

var resourcesType string

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List deployed AWS resources for the VPN project",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		report, err := a.inventory.Deployed(cmd.Context(), resourcesType)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

func init() {
	resourcesCmd.Flags().StringVar(&resourcesType, "type", "", "filter by resource type substring (vpc, subnet, instance, ...)")
}
