package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/5w1tchy/library-api/internal/service/exhibitions"
	"github.com/spf13/cobra"
)

func newExhibitionsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "exhibitions", Short: "Curate exhibitions"}

	var active bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List exhibitions",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			fetch := app.Exhibitions.All
			if active {
				fetch = app.Exhibitions.Active
			}
			es, err := fetch(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tFROM\tTO\tRUNNING")
			for _, e := range es {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", e.ID, e.Title, dateOrDash(e.StartDate), dateOrDash(e.EndDate), app.Exhibitions.IsCurrentlyActive(e))
			}
			return tw.Flush()
		}),
	}
	list.Flags().BoolVar(&active, "active", false, "only exhibitions running today")

	write := func(update bool) *cobra.Command {
		c := &cobra.Command{Use: "add", Short: "Create an exhibition", Args: cobra.NoArgs}
		if update {
			c.Use, c.Short, c.Args = "update ID", "Update an exhibition", cobra.ExactArgs(1)
		}
		c.RunE = st.run(func(cmd *cobra.Command, app *App, args []string) error {
			var in exhibitions.Input
			if update {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				cur, err := app.Exhibitions.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				in = exhibitions.Input{ID: id, Title: cur.Title, Description: cur.Description,
					StartDate: dateOrBlank(cur.StartDate), EndDate: dateOrBlank(cur.EndDate)}
			}
			if v := optString(cmd, "title"); v != nil {
				in.Title = *v
			}
			if v := optString(cmd, "description"); v != nil {
				in.Description = v
			}
			if v := optString(cmd, "start"); v != nil {
				in.StartDate = *v
			}
			if v := optString(cmd, "end"); v != nil {
				in.EndDate = *v
			}
			if cmd.Flags().Changed("active") {
				v, _ := cmd.Flags().GetBool("active")
				in.IsActive = &v
			}
			if update {
				res, err := app.Exhibitions.Update(cmd.Context(), in)
				return printResult(cmd, res, err)
			}
			res, id, err := app.Exhibitions.Create(cmd.Context(), in)
			if err == nil && res.OK {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return printResult(cmd, res, err)
		})
		fl := c.Flags()
		fl.String("title", "", "title")
		fl.String("description", "", "description")
		fl.String("start", "", "start date YYYY-MM-DD")
		fl.String("end", "", "end date YYYY-MM-DD")
		fl.Bool("active", true, "switched on")
		return c
	}

	var order int
	add := &cobra.Command{
		Use:   "add-book EXHIBITION_ID BOOK_ID",
		Short: "Put a book on display",
		Args:  cobra.ExactArgs(2),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var pos *int
			if cmd.Flags().Changed("order") {
				pos = &order
			}
			res, err := app.Exhibitions.AddBook(cmd.Context(), id, args[1], pos)
			return printResult(cmd, res, err)
		}),
	}
	add.Flags().IntVar(&order, "order", 0, "display position (appends when omitted)")

	cmd.AddCommand(
		list,
		withID(st, "show ID", "Show an exhibition with its books", func(cmd *cobra.Command, app *App, id int64) error {
			d, err := app.Exhibitions.WithBooks(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		}),
		write(false),
		write(true),
		withID(st, "delete ID", "Delete an exhibition", func(cmd *cobra.Command, app *App, id int64) error {
			res, err := app.Exhibitions.Delete(cmd.Context(), id)
			return printResult(cmd, res, err)
		}),
		withID(st, "toggle ID", "Switch an exhibition on or off", func(cmd *cobra.Command, app *App, id int64) error {
			res, err := app.Exhibitions.ToggleStatus(cmd.Context(), id)
			return printResult(cmd, res, err)
		}),
		add,
		&cobra.Command{
			Use:   "remove-book EXHIBITION_ID BOOK_ID",
			Short: "Take a book off display",
			Args:  cobra.ExactArgs(2),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				res, err := app.Exhibitions.RemoveBook(cmd.Context(), id, args[1])
				return printResult(cmd, res, err)
			}),
		},
		&cobra.Command{
			Use:   "reorder EXHIBITION_ID BOOK_ID=ORDER...",
			Short: "Set display positions",
			Args:  cobra.MinimumNArgs(2),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				orders, err := parseOrders(args[1:])
				if err != nil {
					return err
				}
				res, err := app.Exhibitions.Reorder(cmd.Context(), id, orders)
				return printResult(cmd, res, err)
			}),
		},
	)
	return cmd
}

func withID(st *state, use, short string, fn func(*cobra.Command, *App, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return fn(cmd, app, id)
		}),
	}
}

// parseOrders reads BOOK_ID=ORDER pairs.
func parseOrders(pairs []string) ([]models.BookOrder, error) {
	out := make([]models.BookOrder, 0, len(pairs))
	for _, p := range pairs {
		book, pos, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(book) == "" {
			return nil, fmt.Errorf("expected BOOK_ID=ORDER, got %q", p)
		}
		n, err := strconv.Atoi(strings.TrimSpace(pos))
		if err != nil {
			return nil, fmt.Errorf("order for %s: %w", book, err)
		}
		out = append(out, models.BookOrder{BookID: strings.TrimSpace(book), DisplayOrder: n})
	}
	return out, nil
}

func dateOrBlank(t *time.Time) string {
	if t == nil {
		return ""
	}
	return models.FormatDate(*t)
}

func newCoversCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "covers", Short: "Manage cover images in object storage"}

	needCovers := func(app *App) error {
		if app.Covers == nil {
			return errors.New("cover storage is not configured (AWS_BUCKET)")
		}
		return nil
	}

	var contentType string
	upload := &cobra.Command{
		Use:   "upload BOOK_ID FILE",
		Short: "Upload a cover image",
		Args:  cobra.ExactArgs(2),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			if err := needCovers(app); err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			res, up, err := app.Covers.Upload(cmd.Context(), args[0], filepath.Base(args[1]), contentType, f)
			if err == nil && res.OK {
				fmt.Fprintln(cmd.OutOrStdout(), up.URL)
			}
			return printResult(cmd, res, err)
		}),
	}
	upload.Flags().StringVar(&contentType, "content-type", "image/jpeg", "object content type")

	presign := &cobra.Command{
		Use:   "presign BOOK_ID FILE_NAME",
		Short: "Create a direct-upload URL",
		Args:  cobra.ExactArgs(2),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			if err := needCovers(app); err != nil {
				return err
			}
			res, key, url, err := app.Covers.PresignUpload(cmd.Context(), args[0], args[1], contentType)
			if err == nil && res.OK {
				fmt.Fprintf(cmd.OutOrStdout(), "key: %s\nurl: %s\n", key, url)
			}
			return printResult(cmd, res, err)
		}),
	}
	presign.Flags().StringVar(&contentType, "content-type", "image/jpeg", "object content type")

	cmd.AddCommand(
		upload,
		presign,
		&cobra.Command{
			Use:   "replace BOOK_ID [FILE_NAME...]",
			Short: "Replace the cover list of a book",
			Args:  cobra.MinimumNArgs(1),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				if err := needCovers(app); err != nil {
					return err
				}
				res, _, err := app.Covers.Replace(cmd.Context(), args[0], args[1:])
				return printResult(cmd, res, err)
			}),
		},
		&cobra.Command{
			Use:   "register BOOK_ID KEY",
			Short: "Record an object uploaded through a presigned URL",
			Args:  cobra.ExactArgs(2),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				if err := needCovers(app); err != nil {
					return err
				}
				res, _, err := app.Covers.Register(cmd.Context(), args[0], args[1])
				return printResult(cmd, res, err)
			}),
		},
		&cobra.Command{
			Use:   "delete BOOK_ID COVER_ID",
			Short: "Delete a cover and its object",
			Args:  cobra.ExactArgs(2),
			RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
				if err := needCovers(app); err != nil {
					return err
				}
				id, err := parseID(args[1])
				if err != nil {
					return err
				}
				res, err := app.Covers.Delete(cmd.Context(), args[0], id)
				return printResult(cmd, res, err)
			}),
		},
	)
	return cmd
}
