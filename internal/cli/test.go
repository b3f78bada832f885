package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/health"
)

var (
	testSuite   string
	testTargets []string
	testText    bool
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a health-check suite against the deployment",
	Long: `Runs one of the health-check suites (quick, connectivity, vpn,
services, full) against the live deployment. Target addresses are
resolved from the deployment outputs; --target overrides win. Endpoints
that cannot be resolved leave their probes skipped rather than failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		suite, err := health.ParseSuite(testSuite)
		if err != nil {
			return err
		}
		overrides, err := parseVars(testTargets)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		report, err := a.health.RunSuite(cmd.Context(), suite, health.Targets(overrides))
		if err != nil {
			return err
		}
		if testText {
			fmt.Println(report.Text)
			return nil
		}
		return printJSON(report)
	},
}

func init() {
	testCmd.Flags().StringVar(&testSuite, "suite", "", "suite to run: quick, connectivity, vpn, services, full (default quick)")
	testCmd.Flags().StringArrayVar(&testTargets, "target", nil, "target override as label=ip (repeatable)")
	testCmd.Flags().BoolVar(&testText, "text", false, "print the human-readable report instead of JSON")
}
