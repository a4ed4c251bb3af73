package main

import (
	"fmt"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/alejandrodnm/polyhedge/internal/adapters/jsonfile"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyhedge/internal/application/analysis"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "batch <query> <user> [user...]",
		Short: "Analyze several users on the same market",
		Long: `Search the market once and analyze each user independently, several in
parallel (fetch.workers). Each user gets its own report; a failing user does
not stop the others. With --dir each analysis is saved as <dir>/<user>.json.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := make([]string, 0, len(args)-1)
			for _, raw := range args[1:] {
				u, err := polymarket.NormalizeUser(raw)
				if err != nil {
					return err
				}
				users = append(users, u)
			}

			a, err := newApp(opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.svc.AnalyzeUsers(cmd.Context(), args[0], users)
			if err != nil {
				return err
			}

			if dir != "" {
				for _, r := range results {
					if r.Err != nil {
						continue
					}
					path := filepath.Join(dir, r.User+".json")
					if err := jsonfile.SaveAnalysis(path, r.Report, a.loc); err != nil {
						return err
					}
				}
			}

			printBatchSummary(cmd, results)
			if failed := countFailed(results); failed == len(results) {
				return fmt.Errorf("all %d user analyses failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory for per-user analysis JSON")
	return cmd
}

func printBatchSummary(cmd *cobra.Command, results []analysis.UserResult) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("User", "Trades", "Up", "Down", "Realized PnL", "Profitable Intervals", "Error")
	for _, r := range results {
		if r.Err != nil {
			table.Append(r.User, "-", "-", "-", "-", "-", r.Err.Error())
			continue
		}
		res := r.Report.Result
		table.Append(
			r.User,
			fmt.Sprintf("%d", res.TradeCount),
			fmt.Sprintf("%.2f", res.Up.Position),
			fmt.Sprintf("%.2f", res.Down.Position),
			fmt.Sprintf("$%.2f", res.PnL.TotalRealized),
			fmt.Sprintf("%d", len(res.Profitable)),
			"",
		)
	}
	table.Render()
}

func countFailed(results []analysis.UserResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
