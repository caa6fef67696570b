package main

import (
	"fmt"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/spf13/cobra"
)

func categoriesCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage categories",
		Long: `List, add, rename and delete categories.

Categories form a two-level tree: top-level categories and subcategories
shown as "Parent::Name". Transactions and budget records usually point at
subcategories.`,
	}

	cmd.AddCommand(listCategoriesCmd(env))
	cmd.AddCommand(addCategoryCmd(env))
	cmd.AddCommand(addSubcategoryCmd(env))
	cmd.AddCommand(renameCategoryCmd(env))
	cmd.AddCommand(deleteCategoryCmd(env))

	return cmd
}

func listCategoriesCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the category tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			categories := s.reg.All(false)
			if len(categories) == 0 {
				printLine(cmd.OutOrStdout(), cli.InfoStyle.Render("No categories found. Use 'cashflow categories add' to create one."))
				return nil
			}
			return cli.RenderCategories(cmd.OutOrStdout(), categories)
		},
	}
}

func addCategoryCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a top-level category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := env.initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", cat.DisplayName(), cat.ID)))
			return nil
		},
	}
}

func addSubcategoryCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "add-sub <parent> <name>",
		Short:   "Add a subcategory under a top-level category",
		Example: `  cashflow categories add-sub Home Rent`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			parent, err := s.resolveCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if parent.IsSubcategory() {
				return fmt.Errorf("%q is a subcategory; subcategories cannot be nested", parent.DisplayName())
			}

			cat, err := s.store.CreateSubcategory(ctx, parent.ID, args[1])
			if err != nil {
				return fmt.Errorf("failed to create subcategory: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", cat.DisplayName(), cat.ID)))
			return nil
		},
	}
}

func renameCategoryCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <category> <new-name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			cat, err := s.resolveCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if err := s.store.RenameCategory(ctx, cat.ID, args[1]); err != nil {
				return fmt.Errorf("failed to rename category: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed %q to %q", cat.DisplayName(), args[1])))
			return nil
		},
	}
}

func deleteCategoryCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete an unused category",
		Long: `Delete a category. Top-level categories must have no subcategories and
subcategories must not be used by any transaction or budget record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			cat, err := s.resolveCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if err := s.store.DeleteCategory(ctx, cat.ID); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			printLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", cat.DisplayName())))
			return nil
		},
	}
}
