package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/polyhedge/internal/adapters/jsonfile"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	var results string

	cmd := &cobra.Command{
		Use:   "user <query> <user> [output]",
		Short: "Fetch a user's trades and analyze them in one step",
		Long: `Equivalent to "fetch" followed by "analyze --save": the trades are written
to [output] (default: report.trades_file) and the analysis to --results
(default: report.results_file).`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := polymarket.NormalizeUser(args[1])
			if err != nil {
				return err
			}
			output := opts.cfg.Report.TradesFile
			if len(args) == 3 {
				output = args[2]
			}
			if results == "" {
				results = opts.cfg.Report.ResultsFile
			}

			a, err := newApp(opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			res, err := a.svc.Fetch(ctx, args[0], user)
			if err != nil {
				return err
			}
			if err := jsonfile.SaveTrades(output, res.Trades); err != nil {
				return err
			}
			slog.Info("trades saved", "path", output, "count", len(res.Trades))

			report, err := a.svc.Analyze(ctx, res.Market, user, res.Trades)
			if err != nil {
				return err
			}
			if err := jsonfile.SaveAnalysis(results, report, a.loc); err != nil {
				return err
			}
			slog.Info("analysis saved", "path", results, "id", report.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&results, "results", "", "analysis output path (default: report.results_file)")
	return cmd
}
