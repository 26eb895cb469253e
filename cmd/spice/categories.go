package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List and add income and expense categories. Categories form a two-level tree.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories as a tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			if len(categories) == 0 {
				writeln(out, cli.SubtleStyle.Render("No categories found. Run 'spice setup' to install the defaults."))
				return nil
			}

			children := make(map[int][]model.Category)
			var roots []model.Category
			for _, c := range categories {
				if parentID, ok := c.ParentID(); ok {
					children[parentID] = append(children[parentID], c)
					continue
				}
				roots = append(roots, c)
			}

			for _, r := range roots {
				style := cli.ExpenseStyle
				if r.Type == model.CategoryTypeIncome {
					style = cli.IncomeStyle
				}
				writef(out, "%s %s\n", style.Render(r.Name), cli.SubtleStyle.Render(fmt.Sprintf("(%d)", r.ID)))
				for _, c := range children[r.ID] {
					writef(out, "  └ %s %s\n", c.Name, cli.SubtleStyle.Render(fmt.Sprintf("(%d)", c.ID)))
				}
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		parent       string
		categoryType string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Long: `Create a top-level category, or a subcategory with --parent.
A subcategory inherits its parent's type.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			params := model.CategoryParams{Name: args[0], Type: model.CategoryType(categoryType)}
			if parent != "" {
				p, err := resolveCategory(ctx, store, parent)
				if err != nil {
					return fmt.Errorf("failed to find parent: %w", err)
				}
				params.ParentID = &p.ID
				params.Type = p.Type
			}

			category, err := store.CreateCategory(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %d)",
				categoryLabel(ctx, store, category), category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent category name or id")
	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "category type (income, expense)")

	return cmd
}
