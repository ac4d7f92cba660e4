package cli

import (
	"os/signal"
	"syscall"

	"github.com/5w1tchy/library-api/internal/maintenance"
	"github.com/5w1tchy/library-api/internal/store/schema"
	"github.com/spf13/cobra"
)

func newInitDBCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the library tables if missing",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			return schema.Apply(cmd.Context(), app.DB)
		}),
	}
}

func newStatsCmd(st *state) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print loan and catalog statistics",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			get := app.Stats.Summary
			if refresh {
				get = app.Stats.Refresh
			}
			s, err := get(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}

func newReportCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print statistics with active and overdue loans",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			r, err := app.Stats.FullReport(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		}),
	}
}

func newWorkerCmd(st *state) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduled overdue report until interrupted",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, app *App, _ []string) error {
			var warmer maintenance.Warmer
			if st.cfg.Worker.WarmStats {
				warmer = app.Stats
			}
			sched := maintenance.New(app.Loans, warmer, st.log)
			if once {
				_, err := sched.RunOnce(cmd.Context())
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := sched.Start(ctx, st.cfg.Worker.OverdueSchedule); err != nil {
				return err
			}
			<-ctx.Done()
			sched.Stop()
			return nil
		}),
	}
	cmd.Flags().BoolVar(&once, "once", false, "run one report and exit")
	return cmd
}
