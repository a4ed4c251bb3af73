package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alejandrodnm/polyhedge/internal/adapters/jsonfile"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyhedge/internal/application/analysis"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <query> <user> [output]",
		Short: "Download a user's trades on a market into a JSON file",
		Long: `Search the market matching <query> and download every trade of <user>
(a 0x wallet address) on it. Trades are sorted by timestamp and written to
[output] (default: report.trades_file).

Examples:
  polyhedge fetch "bitcoin up or down november 14" 0xabc...123
  polyhedge fetch btc-updown-15m 0xabc...123 data/btc.json`,
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

			a, err := newApp(opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.svc.Fetch(cmd.Context(), args[0], user)
			if err != nil {
				return err
			}
			if err := jsonfile.SaveTrades(output, res.Trades); err != nil {
				return err
			}

			slog.Info("trades saved", "path", output, "count", len(res.Trades))
			printFetchSummary(cmd, res, output)
			return nil
		},
	}
}

func printFetchSummary(cmd *cobra.Command, res analysis.FetchResult, output string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Market:  %s\n", res.Market.Label(80))
	fmt.Fprintf(out, "Trades:  %d\n", len(res.Trades))
	fmt.Fprintf(out, "Saved:   %s\n", output)
	if res.Complete != nil && !*res.Complete {
		fmt.Fprintln(out, "Warning: additional trades may exist beyond the page limit")
	}
}
