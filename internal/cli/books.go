package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/catalog"
	"github.com/5w1tchy/library-api/internal/store/books"
	"github.com/5w1tchy/library-api/internal/validate"
	"github.com/spf13/cobra"
)

func newBooksCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "books", Short: "Browse and maintain the catalog"}
	cmd.AddCommand(
		newBooksListCmd(st),
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one book with its relations",
			Args:  cobra.ExactArgs(1),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				b, err := app.Catalog.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), b)
			}),
		},
		newBookWriteCmd(st, false),
		newBookWriteCmd(st, true),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a book without active loans",
			Args:  cobra.ExactArgs(1),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				res, err := app.Catalog.Delete(cmd.Context(), args[0])
				return printResult(cmd, res, err)
			}),
		},
		newThemesCmd(st),
	)
	return cmd
}

func newBooksListCmd(st *state) *cobra.Command {
	var (
		f             books.Filter
		page, perPage int
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List, search or page through books",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			p, err := app.Catalog.Paginate(cmd.Context(), f, page, perPage)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printBooks(cmd, p.Items)
			fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d (%d books)\n", p.Page, p.TotalPages, p.Total)
			return nil
		}),
	}
	fl := cmd.Flags()
	fl.StringVar(&f.Term, "search", "", "match id, title or author")
	fl.StringVar(&f.Title, "title", "", "title contains")
	fl.StringVar(&f.Author, "author", "", "author name contains")
	fl.StringVar(&f.Theme, "theme", "", "theme contains")
	fl.BoolVar(&f.AvailableOnly, "available", false, "only books with copies on the shelf")
	fl.IntVar(&page, "page", 1, "page number")
	fl.IntVar(&perPage, "per-page", catalog.DefaultPerPage, "books per page")
	fl.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printBooks(cmd *cobra.Command, list []models.Book) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHORS\tAVAILABLE")
	for _, b := range list {
		names := make([]string, 0, len(b.Authors))
		for _, a := range b.Authors {
			names = append(names, a.FullName)
		}
		if len(names) == 0 && b.Author != "" {
			names = append(names, b.Author)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\n", b.ID, b.Title, strings.Join(names, ", "), b.AvailableCopies, b.TotalCopies)
	}
	tw.Flush()
}

// newBookWriteCmd builds "add" or, with update set, "update ID". Update starts from the stored book.
func newBookWriteCmd(st *state, update bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
	}
	if update {
		cmd.Use, cmd.Short, cmd.Args = "update ID", "Update a book", cobra.ExactArgs(1)
	}
	cmd.RunE = st.run(func(cmd *cobra.Command, app *App, args []string) error {
		var in catalog.BookInput
		if update {
			cur, err := app.Catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			in = inputFromBook(cur)
		}
		overlayBookFlags(cmd, &in)

		if update {
			res, err := app.Catalog.Update(cmd.Context(), in)
			return printResult(cmd, res, err)
		}
		res, id, err := app.Catalog.Create(cmd.Context(), in)
		if err == nil && res.OK {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return printResult(cmd, res, err)
	})

	fl := cmd.Flags()
	fl.String("id", "", "book id (generated when blank)")
	fl.String("title", "", "title")
	fl.String("subtitle", "", "subtitle")
	fl.String("description", "", "description")
	fl.Int("year", 0, "publication year")
	fl.String("isbn", "", "ISBN")
	fl.Int("copies", 1, "total copies")
	fl.Int("available", 0, "available copies (defaults to total)")
	fl.String("category", "", "legacy category")
	fl.String("authors", "", "authors separated by ';'")
	fl.String("themes", "", "comma-separated themes")
	fl.String("covers", "", "comma-separated cover file names")
	return cmd
}

func inputFromBook(b models.Book) catalog.BookInput {
	return catalog.BookInput{
		ID:              b.ID,
		Title:           b.Title,
		Subtitle:        b.Subtitle,
		Description:     b.Description,
		PublicationYear: b.PublicationYear,
		ISBN:            b.ISBN,
		TotalCopies:     &b.TotalCopies,
		AvailableCopies: &b.AvailableCopies,
		Author:          b.Author,
		Category:        b.Category,
		CoverImage:      b.CoverImage,
	}
}

func overlayBookFlags(cmd *cobra.Command, in *catalog.BookInput) {
	if v := optString(cmd, "id"); v != nil && in.ID == "" {
		in.ID = *v
	}
	if v := optString(cmd, "title"); v != nil {
		in.Title = *v
	}
	if v := optString(cmd, "subtitle"); v != nil {
		in.Subtitle = v
	}
	if v := optString(cmd, "description"); v != nil {
		in.Description = v
	}
	if v := optInt(cmd, "year"); v != nil {
		in.PublicationYear = v
	}
	if v := optString(cmd, "isbn"); v != nil {
		in.ISBN = v
	}
	if v := optInt(cmd, "copies"); v != nil {
		in.TotalCopies = v
	}
	if v := optInt(cmd, "available"); v != nil {
		in.AvailableCopies = v
	}
	if v := optString(cmd, "category"); v != nil {
		in.Category = *v
	}
	if v := optString(cmd, "authors"); v != nil {
		names := splitList(*v, ";")
		list := make([]books.AuthorInput, 0, len(names))
		for _, n := range names {
			list = append(list, books.AuthorInput{Name: n})
		}
		in.Authors = &list
		if len(names) > 0 {
			in.Author = names[0]
		}
	}
	if v := optString(cmd, "themes"); v != nil {
		themes := validate.ParseThemesCSV(*v)
		if themes == nil {
			themes = []string{}
		}
		in.Themes = &themes
	}
	if v := optString(cmd, "covers"); v != nil {
		files := splitList(*v, ",")
		in.Covers = &files
	}
}

func newThemesCmd(st *state) *cobra.Command {
	var (
		prefix string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List themes, or suggest by prefix",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			var (
				themes []string
				err    error
			)
			if prefix != "" {
				themes, err = app.Catalog.SuggestThemes(cmd.Context(), prefix, limit)
			} else {
				themes, err = app.Catalog.Themes(cmd.Context())
			}
			if err != nil {
				return err
			}
			for _, t := range themes {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "theme prefix")
	cmd.Flags().IntVar(&limit, "limit", 10, "max suggestions")
	return cmd
}
