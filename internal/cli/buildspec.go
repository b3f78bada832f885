package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/runner"
)

var buildspecWorkDir string

var buildspecCmd = &cobra.Command{
	Use:   "buildspec",
	Short: "Print the CodeBuild buildspec used by the executor project",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := runner.RenderBuildspec(runner.BuildspecInput{WorkDir: buildspecWorkDir})
		if err != nil {
			return err
		}
		fmt.Print(spec)
		return nil
	},
}

func init() {
	buildspecCmd.Flags().StringVar(&buildspecWorkDir, "workdir", "", "working directory inside the build container")
}
