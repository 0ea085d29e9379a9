package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

var (
	// runs command flags
	runsStore string
	runsLimit int
	runsJSON  bool
)

func init() {
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.PersistentFlags().StringVar(&runsStore, "store", "", "run journal DSN (defaults to store.dsn)")
	runsCmd.PersistentFlags().BoolVar(&runsJSON, "json", false, "Output results as JSON")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to return")
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the extraction run journal",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent extraction runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuns(cmd, func(ctx context.Context, a *app) error {
			runs, err := a.runs.List(ctx, runsLimit)
			if err != nil {
				return err
			}
			if runsJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(runs)
			}
			return printRuns(cmd.OutOrStdout(), runs)
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print one run, including its stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		return withRuns(cmd, func(ctx context.Context, a *app) error {
			run, err := a.runs.Get(ctx, id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		})
	},
}

func withRuns(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, appOptions{Offline: true, StoreDSN: runsStore}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireRuns(); err != nil {
		return err
	}
	return fn(ctx, a)
}

func printRuns(w io.Writer, runs []entity.ExtractionRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tMETHOD\tCONFIDENCE\tWARNINGS\tERROR")
	for _, r := range runs {
		method, conf, errCode := "-", "-", "-"
		if r.Method != nil {
			method = *r.Method
		}
		if r.Confidence != nil {
			conf = fmt.Sprintf("%.2f", *r.Confidence)
		}
		if r.ErrorCode != nil {
			errCode = *r.ErrorCode
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status, method, conf, r.WarningCount, errCode)
	}
	return tw.Flush()
}
