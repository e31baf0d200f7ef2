package cmd

import (
	"github.com/spf13/cobra"

	"github.com/openstay/openstay-release/internal/history"
	"github.com/openstay/openstay-release/internal/output"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded bumps, builds and deploys",
	Args:  cobra.NoArgs,
	RunE:  historyRunE,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", history.DefaultLimit, "number of records to show")
	rootCmd.AddCommand(historyCmd)
}

func historyRunE(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	s, err := a.openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.Recent(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}

	if flagOutput == formatJSON {
		if records == nil {
			records = []history.ReleaseRecord{}
		}
		return output.WriteJSON(a.out, records)
	}
	output.WriteHistoryTable(a.out, records)
	return nil
}
