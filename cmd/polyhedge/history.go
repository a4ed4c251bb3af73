package main

import (
	"github.com/spf13/cobra"

	"github.com/alejandrodnm/polyhedge/internal/adapters/jsonfile"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		user  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user != "" {
				u, err := polymarket.NormalizeUser(user)
				if err != nil {
					return err
				}
				user = u
			}

			a, err := newApp(opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.svc.History(cmd.Context(), user, limit)
			if err != nil {
				return err
			}
			a.console.PrintHistory(records)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "only analyses of this wallet")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}

func newReplayCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "replay <id>",
		Short: "Re-run a stored analysis from its saved trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.svc.Replay(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				return nil
			}
			return jsonfile.SaveAnalysis(output, report, a.loc)
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "also write the analysis as JSON")
	return cmd
}
