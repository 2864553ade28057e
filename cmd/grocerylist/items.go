package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/shopping"
	"github.com/dukerupert/grocerylist/internal/termview"
)

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, shopping.ErrNotFound) {
		return fmt.Errorf("no item with id %d", id)
	}
	return err
}

func newListCmd(opts *options) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the list grouped by category",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			listing, err := svc.Sections(cmd.Context())
			if err != nil {
				return err
			}
			return termview.New(showIDs).Render(cmd.OutOrStdout(), listing.Sections, listing.Summary)
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "prefix each item with its id")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	var notes, category string

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			if category != "" && !model.IsKnownCategory(category) {
				fmt.Fprintf(cmd.ErrOrStderr(), "unknown category %q, filing under %s\n", category, model.CategoryOther.Label())
			}

			it, err := svc.AddItem(cmd.Context(), shopping.NewItem{
				Title:    strings.Join(args, " "),
				Notes:    notes,
				Category: category,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s (%s)\n", it.ID, it.Title, it.Category.Label())
			return nil
		},
	}
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category tag or label; guessed from the title when empty")
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var title, notes, category string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's title, notes or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var edit shopping.ItemEdit
			if cmd.Flags().Changed("title") {
				edit.Title = &title
			}
			if cmd.Flags().Changed("notes") {
				edit.Notes = &notes
			}
			if cmd.Flags().Changed("category") {
				edit.Category = &category
			}

			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			it, err := svc.EditItem(cmd.Context(), id, edit)
			if err != nil {
				return notFound(err, id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated #%d %s (%s)\n", it.ID, it.Title, it.Category.Label())
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "new notes")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category tag or label")
	return cmd
}

func newToggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark an item completed or not completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			it, err := svc.ToggleCompleted(cmd.Context(), id)
			if err != nil {
				return notFound(err, id)
			}
			state := "not completed"
			if it.Completed {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s is %s\n", it.ID, it.Title, state)
			return nil
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := svc.DeleteItem(cmd.Context(), id); err != nil {
				return notFound(err, id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted #%d\n", id)
			return nil
		},
	}
}

func newClearCompletedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			removed, err := svc.DeleteCompleted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d completed item(s)\n", len(removed))
			return nil
		},
	}
}

func newEssentialsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "essentials",
		Short: "Add everyday staples that are not already on the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			added, err := svc.AddEssentials(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(added) == 0 {
				fmt.Fprintln(out, "all essentials are already on the list")
				return nil
			}
			for _, it := range added {
				fmt.Fprintf(out, "added #%d %s (%s)\n", it.ID, it.Title, it.Category.Label())
			}
			return nil
		},
	}
}

func newViewCmd(opts *options) *cobra.Command {
	var sortBy string
	var hide bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show or change the sort option and hide-completed flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := opts.openService()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if cmd.Flags().Changed("sort") {
				if _, err := svc.SetSort(ctx, model.ParseSortOption(sortBy)); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("hide-completed") {
				if _, err := svc.SetHideCompleted(ctx, hide); err != nil {
					return err
				}
			}
			v, err := svc.View(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sort: %s\nhide completed: %t\n", v.Sort.Label(), v.HideCompleted)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "name or date-added")
	cmd.Flags().BoolVar(&hide, "hide-completed", false, "hide completed items")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tLABEL\tCOLOR\t")
			for _, c := range model.CategoryCatalog() {
				mark := ""
				if c.ID == model.DefaultCategory {
					mark = "(default)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Label, c.Color, mark)
			}
			return tw.Flush()
		},
	}
}
