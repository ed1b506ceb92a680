package ports

import "go.trai.ch/kiln/internal/core/domain"

// RecipeLoader defines the interface for loading package recipes.
//
//go:generate mockgen -source=recipe_loader.go -destination=mocks/mock_recipe_loader.go -package=mocks
type RecipeLoader interface {
	// Load reads the recipe at path. A directory is searched for a recipe file.
	Load(path string) (*domain.Recipe, error)
}
