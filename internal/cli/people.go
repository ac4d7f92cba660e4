package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/validate"
	"github.com/spf13/cobra"
)

func newCustomersCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "customers", Short: "Manage customers"}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List or search customers",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			cs, err := app.Customers.Search(cmd.Context(), search)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCITY\tEMAIL")
			for _, c := range cs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, deref(c.City), deref(c.Email))
			}
			return tw.Flush()
		}),
	}
	list.Flags().StringVar(&search, "search", "", "match id, name or email")

	write := func(update bool) *cobra.Command {
		c := &cobra.Command{Use: "add", Short: "Register a customer", Args: cobra.NoArgs}
		if update {
			c.Use, c.Short, c.Args = "update ID", "Update a customer", cobra.ExactArgs(1)
		}
		c.RunE = st.run(func(cmd *cobra.Command, app *App, args []string) error {
			var cust models.Customer
			if update {
				cur, err := app.Customers.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				cust = cur
			}
			if v := optString(cmd, "id"); v != nil && !update {
				cust.ID = *v
			}
			if v := optString(cmd, "name"); v != nil {
				cust.Name = *v
			}
			if v := optString(cmd, "address"); v != nil {
				cust.Address = v
			}
			if v := optInt(cmd, "zip"); v != nil {
				cust.Zip = v
			}
			if v := optString(cmd, "city"); v != nil {
				cust.City = v
			}
			if v := optString(cmd, "phone"); v != nil {
				cust.Phone = v
			}
			if v := optString(cmd, "email"); v != nil {
				cust.Email = v
			}
			if update {
				res, err := app.Customers.Update(cmd.Context(), cust)
				return printResult(cmd, res, err)
			}
			res, err := app.Customers.Create(cmd.Context(), cust)
			return printResult(cmd, res, err)
		})
		fl := c.Flags()
		fl.String("id", "", "customer id (generated when blank)")
		fl.String("name", "", "full name")
		fl.String("address", "", "street address")
		fl.Int("zip", 0, "zip code")
		fl.String("city", "", "city")
		fl.String("phone", "", "phone")
		fl.String("email", "", "email")
		return c
	}

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "get ID",
			Short: "Show a customer",
			Args:  cobra.ExactArgs(1),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				c, err := app.Customers.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), c)
			}),
		},
		write(false),
		write(true),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a customer without active loans",
			Args:  cobra.ExactArgs(1),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				res, err := app.Customers.Delete(cmd.Context(), args[0])
				return printResult(cmd, res, err)
			}),
		},
	)
	return cmd
}

func newAuthorsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "authors", Short: "Manage authors"}

	var search, book string
	list := &cobra.Command{
		Use:   "list",
		Short: "List, search, or show the authors of a book",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			var (
				as  []models.Author
				err error
			)
			if book != "" {
				as, err = app.Authors.ByBook(cmd.Context(), book)
			} else {
				as, err = app.Authors.Search(cmd.Context(), search)
			}
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBORN\tDIED")
			for _, a := range as {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.FullName, dateOrDash(a.BirthDate), dateOrDash(a.DeathDate))
			}
			return tw.Flush()
		}),
	}
	list.Flags().StringVar(&search, "search", "", "name contains")
	list.Flags().StringVar(&book, "book", "", "authors of this book id")

	write := func(update bool) *cobra.Command {
		c := &cobra.Command{Use: "add", Short: "Add an author", Args: cobra.NoArgs}
		if update {
			c.Use, c.Short, c.Args = "update ID", "Update an author", cobra.ExactArgs(1)
		}
		c.RunE = st.run(func(cmd *cobra.Command, app *App, args []string) error {
			var a models.Author
			if update {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if a, err = app.Authors.Get(cmd.Context(), id); err != nil {
					return err
				}
			}
			if v := optString(cmd, "name"); v != nil {
				a.FullName = *v
			}
			for flag, dst := range map[string]**time.Time{"born": &a.BirthDate, "died": &a.DeathDate} {
				if v := optString(cmd, flag); v != nil {
					d, err := validate.OptionalDate(*v)
					if err != nil {
						return fmt.Errorf("--%s: %w", flag, err)
					}
					*dst = d
				}
			}
			if v := optString(cmd, "bio"); v != nil {
				a.Biography = v
			}
			if v := optString(cmd, "wikipedia"); v != nil {
				a.WikipediaURL = v
			}
			if update {
				res, err := app.Authors.Update(cmd.Context(), a)
				return printResult(cmd, res, err)
			}
			res, id, err := app.Authors.Create(cmd.Context(), a)
			if err == nil && res.OK {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return printResult(cmd, res, err)
		})
		fl := c.Flags()
		fl.String("name", "", "full name")
		fl.String("born", "", "birth date YYYY-MM-DD")
		fl.String("died", "", "death date YYYY-MM-DD")
		fl.String("bio", "", "biography")
		fl.String("wikipedia", "", "wikipedia url")
		return c
	}

	cmd.AddCommand(
		list,
		write(false),
		write(true),
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete an author",
			Args:  cobra.ExactArgs(1),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				res, err := app.Authors.Delete(cmd.Context(), id)
				return printResult(cmd, res, err)
			}),
		},
	)
	return cmd
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return models.FormatDate(*t)
}
