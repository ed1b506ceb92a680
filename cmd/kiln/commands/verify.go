package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify name/version",
		Short: "Build the recipe's test package against a produced package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, _ := cmd.Flags().GetString("recipe")
			rawSettings, _ := cmd.Flags().GetStringArray("setting")
			allowSkip, _ := cmd.Flags().GetBool("allow-skip")

			settings, err := parseSettings(rawSettings)
			if err != nil {
				return err
			}

			result, err := c.app.Verify(cmd.Context(), app.VerifyOptions{
				RecipePath: recipe,
				Reference:  args[0],
				Settings:   settings,
			})
			if err != nil {
				return err
			}
			printVerify(cmd.OutOrStdout(), result)
			return verifyOutcome(result, allowSkip)
		},
	}
	cmd.Flags().StringP("recipe", "r", ".", "Recipe file or directory containing kiln.yaml")
	cmd.Flags().StringArrayP("setting", "s", nil, "Override a target setting (os, arch, build_type, compiler)")
	cmd.Flags().Bool("allow-skip", false, "Exit successfully when the example cannot run on this host")
	return cmd
}

func verifyOutcome(result *domain.VerifyResult, allowSkip bool) error {
	switch result.Status {
	case domain.VerifySuccess:
		return nil
	case domain.VerifySkipped:
		if allowSkip {
			return nil
		}
		return zerr.With(zerr.Wrap(domain.ErrVerificationSkipped, result.Reason), "package", result.Reference.String())
	default:
		cause := domain.ErrVerificationFailed
		if result.Err != nil {
			cause = errors.Join(domain.ErrVerificationFailed, result.Err)
		}
		return zerr.With(zerr.Wrap(cause, result.Reason), "package", result.Reference.String())
	}
}
