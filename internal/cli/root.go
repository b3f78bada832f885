package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/logging"
)

var (
	flagRegion       string
	flagProject      string
	flagSourceBucket string
	flagStateBucket  string
	flagLockTable    string
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "terraops",
	Short: "Operate the two-site VPN deployment",
	Long: `Terraops drives Terraform lifecycle operations for the two-site VPN
deployment through an isolated CodeBuild execution environment, tracks
their asynchronous status, edits the source tree with backups, and runs
post-deployment health checks against the live resources.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(flagLogLevel)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "AWS region (overrides AWS_REGION)")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "CodeBuild project name (overrides CODEBUILD_PROJECT)")
	rootCmd.PersistentFlags().StringVar(&flagSourceBucket, "source-bucket", "", "Terraform source bucket (overrides TERRAFORM_BUCKET)")
	rootCmd.PersistentFlags().StringVar(&flagStateBucket, "state-bucket", "", "state/outputs artifact bucket (overrides STATE_BUCKET)")
	rootCmd.PersistentFlags().StringVar(&flagLockTable, "lock-table", "", "DynamoDB state lock table (overrides LOCK_TABLE)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(outputCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(modifyCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(buildspecCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
