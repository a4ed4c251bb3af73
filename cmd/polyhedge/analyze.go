package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/polyhedge/internal/adapters/jsonfile"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyhedge/internal/domain"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		save   bool
		output string
		user   string
		label  string
	)

	cmd := &cobra.Command{
		Use:   "analyze [input]",
		Short: "Analyze trades from a JSON file",
		Long: `Load trades from [input] (default: report.trades_file), rebuild the Up/Down
positions and print the full report. With --save the analysis is also
written as JSON to --output (default: report.results_file).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := opts.cfg.Report.TradesFile
			if len(args) == 1 {
				input = args[0]
			}
			if output == "" {
				output = opts.cfg.Report.ResultsFile
			}
			if user != "" {
				u, err := polymarket.NormalizeUser(user)
				if err != nil {
					return err
				}
				user = u
			}

			trades, err := jsonfile.LoadTrades(input)
			if err != nil {
				return err
			}
			slog.Info("trades loaded", "path", input, "count", len(trades))

			a, err := newApp(opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			market := domain.Market{Question: label}
			if len(trades) > 0 {
				market.ConditionID = trades[0].ConditionID
				if label == "" {
					market.Question = trades[0].Title
				}
			}

			report, err := a.svc.Analyze(cmd.Context(), market, user, trades)
			if err != nil {
				return err
			}

			if !save {
				return nil
			}
			if err := jsonfile.SaveAnalysis(output, report, a.loc); err != nil {
				return err
			}
			slog.Info("analysis saved", "path", output, "id", report.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "write the analysis as JSON")
	cmd.Flags().StringVar(&output, "output", "", "analysis output path (default: report.results_file)")
	cmd.Flags().StringVar(&user, "user", "", "wallet the trades belong to (stored with the analysis)")
	cmd.Flags().StringVar(&label, "market", "", "market label shown in the report")
	return cmd
}
