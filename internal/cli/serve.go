package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/logging"
	"github.com/terraops-io/terraops/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the orchestrator API for the conversational gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		router := server.New(server.Deps{
			Dispatcher: a.dispatcher,
			Tracker:    a.tracker,
			Mutator:    a.mutator,
			Health:     a.health,
			Files:      a.source,
			Inventory:  a.inventory,
		})
		logging.With("gateway").Info("listening", "addr", serveAddr)
		return router.Run(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}
