// Package cli is the operator command line for the library core.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/5w1tchy/library-api/internal/apperr"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/validate"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrFailed marks a business outcome that was reported but not OK.
var ErrFailed = errors.New("operation failed")

type state struct {
	envFiles []string
	cfg      *config.Config
	log      *slog.Logger
	app      *App
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog and loan management",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.load(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if st.app != nil {
				st.app.Close()
			}
		},
	}
	root.PersistentFlags().StringSliceVar(&st.envFiles, "env-file", []string{".env"}, "dotenv files to load before the environment")

	root.AddCommand(
		newInitDBCmd(st),
		newIssueCmd(st),
		newReturnCmd(st),
		newExtendCmd(st),
		newIssuesCmd(st),
		newOverdueCmd(st),
		newStatsCmd(st),
		newReportCmd(st),
		newBooksCmd(st),
		newCustomersCmd(st),
		newAuthorsCmd(st),
		newExhibitionsCmd(st),
		newCoversCmd(st),
		newWorkerCmd(st),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func (st *state) load(stderr io.Writer) error {
	cfg, err := config.Load(st.envFiles...)
	if err != nil {
		return err
	}
	st.cfg = cfg
	st.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(st.log)
	return nil
}

// open validates the config and connects on first use.
func (st *state) open(ctx context.Context) (*App, error) {
	if st.app != nil {
		return st.app, nil
	}
	if err := validate.Env(st.cfg); err != nil {
		return nil, err
	}
	for _, w := range validate.HardeningWarnings(st.cfg) {
		st.log.Warn(w)
	}
	app, err := newApp(ctx, st.cfg, st.log)
	if err != nil {
		return nil, err
	}
	st.app = app
	return app, nil
}

// run wraps a command body that needs the connected App.
func (st *state) run(fn func(cmd *cobra.Command, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := st.open(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, app, args)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes the outcome message; a failed outcome becomes ErrFailed.
func printResult(cmd *cobra.Command, res apperr.Result, err error) error {
	if err != nil {
		return err
	}
	if !res.OK {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", res.Kind, res.Message)
		return ErrFailed
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
