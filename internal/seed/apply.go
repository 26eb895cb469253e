package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// Apply installs groups into store, skipping categories that already exist by
// name under the same parent. It returns how many categories were created, so
// running it twice creates nothing the second time.
func Apply(ctx context.Context, store service.CategoryStore, groups []Group) (int, error) {
	var created int

	for _, g := range groups {
		parent, err := store.GetTopLevelCategoryByName(ctx, g.Name)
		if err != nil {
			return created, fmt.Errorf("failed to look up %q: %w", g.Name, err)
		}
		if parent == nil {
			parent, err = store.CreateCategory(ctx, model.CategoryParams{
				Name:     g.Name,
				Type:     g.Type,
				Color:    g.Color,
				Icon:     g.Icon,
				IsSystem: true,
			})
			if err != nil {
				return created, fmt.Errorf("failed to create %q: %w", g.Name, err)
			}
			created++
		}

		parentID := parent.ID
		for _, sub := range g.Subcategories {
			existing, err := store.GetSubcategoryByName(ctx, parentID, sub.Name)
			if err != nil {
				return created, fmt.Errorf("failed to look up %q: %w", model.DisplayName(g.Name, sub.Name), err)
			}
			if existing != nil {
				continue
			}
			if _, err := store.CreateCategory(ctx, model.CategoryParams{
				ParentID: &parentID,
				Name:     sub.Name,
				Type:     g.Type,
				Color:    sub.Color,
				Icon:     sub.Icon,
				IsSystem: true,
			}); err != nil {
				return created, fmt.Errorf("failed to create %q: %w", model.DisplayName(g.Name, sub.Name), err)
			}
			created++
		}
	}

	slog.Info("Applied preset categories", "created", created)
	return created, nil
}
