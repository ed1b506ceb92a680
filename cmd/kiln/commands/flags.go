package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// addRecipeFlags registers the flags shared by every command that resolves a recipe.
func addRecipeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("recipe", "r", ".", "Recipe file or directory containing kiln.yaml")
	cmd.Flags().StringArrayP("option", "o", nil, "Select an option value (name=value)")
	cmd.Flags().StringArrayP("setting", "s", nil, "Override a target setting (os, arch, build_type, compiler)")
}

// buildOptions reads the shared recipe flags.
func buildOptions(cmd *cobra.Command) (app.BuildOptions, error) {
	recipe, _ := cmd.Flags().GetString("recipe")
	rawOptions, _ := cmd.Flags().GetStringArray("option")
	rawSettings, _ := cmd.Flags().GetStringArray("setting")

	selections, err := parsePairs(rawOptions)
	if err != nil {
		return app.BuildOptions{}, err
	}
	settings, err := parseSettings(rawSettings)
	if err != nil {
		return app.BuildOptions{}, err
	}

	return app.BuildOptions{
		RecipePath: recipe,
		Selections: selections,
		Settings:   settings,
	}, nil
}

func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidValue, "expected name=value"), "argument", pair)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

func parseSettings(pairs []string) (domain.Settings, error) {
	var settings domain.Settings
	values, err := parsePairs(pairs)
	if err != nil {
		return settings, err
	}
	for key, value := range values {
		if err := settings.Set(key, value); err != nil {
			return settings, err
		}
	}
	return settings, nil
}
