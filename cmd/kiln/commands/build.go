package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve the recipe and run the build lifecycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			opts.Matrix, _ = cmd.Flags().GetString("matrix")
			opts.Parallelism, _ = cmd.Flags().GetInt("jobs")

			results, err := c.app.Build(cmd.Context(), opts)
			for _, run := range results {
				label := run.ID
				if opts.Matrix != "" {
					label = fmt.Sprintf("%s [%s]", run.ID, opts.Matrix)
				}
				printRun(cmd.OutOrStdout(), label, run)
			}
			return err
		},
	}
	addRecipeFlags(cmd)
	cmd.Flags().String("matrix", "", "Build every value of the named option in parallel")
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of matrix builds running at once (0 means one per value)")
	return cmd
}
