package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/5w1tchy/library-api/internal/models"
	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newIssueCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "issue BOOK_ID CUSTOMER_ID",
		Short: "Lend a book to a customer",
		Args:  cobra.ExactArgs(2),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			res, err := app.Loans.Issue(cmd.Context(), args[0], args[1])
			return printResult(cmd, res, err)
		}),
	}
}

func newReturnCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "return ISSUE_ID",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := app.Loans.Return(cmd.Context(), id)
			return printResult(cmd, res, err)
		}),
	}
}

func newExtendCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "extend ISSUE_ID",
		Short: "Extend a loan once",
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, app *App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := app.Loans.Extend(cmd.Context(), id)
			return printResult(cmd, res, err)
		}),
	}
}

func newIssuesCmd(st *state) *cobra.Command {
	var (
		active   bool
		customer string
		search   string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List loans",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			ctx := cmd.Context()
			var (
				list []models.Issue
				err  error
			)
			switch {
			case search != "":
				list, err = app.Loans.SearchIssues(ctx, search)
			case customer != "" && active:
				list, err = app.Loans.CustomerActiveIssues(ctx, customer)
			case customer != "":
				list, err = app.Loans.CustomerIssues(ctx, customer)
			case active:
				list, err = app.Loans.ActiveIssues(ctx)
			default:
				list, err = app.Loans.AllIssues(ctx)
			}
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBOOK\tCUSTOMER\tISSUED\tSTATUS\tDAYS\tOVERDUE")
			for _, i := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%t\n",
					i.ID, i.BookTitle, i.CustomerName, models.FormatDate(i.DateIssued),
					i.Status, app.Loans.DaysBorrowed(i), app.Loans.IsOverdue(i))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&active, "active", false, "only loans still out")
	cmd.Flags().StringVar(&customer, "customer", "", "only loans of this customer id")
	cmd.Flags().StringVar(&search, "search", "", "match book title, customer name or id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newOverdueCmd(st *state) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "Print the overdue report",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			report, err := app.Loans.OverdueReport(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ISSUE\tBOOK\tCUSTOMER\tISSUED\tDAYS\tOVERDUE BY")
			for _, e := range report {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n",
					e.IssueID, e.BookTitle, e.CustomerName, e.DateIssued, e.DaysBorrowed, e.DaysOverdue)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
