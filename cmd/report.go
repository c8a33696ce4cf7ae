package cmd

import (
	"fmt"

	"github.com/jsphweid/tieline/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarizes the stored lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := sess.Summary(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Total notes: %d\n", sum.NumNotes)
		fmt.Printf("Number of lines: %d\n----------------\n", sum.NumLines)
		for _, name := range util.GetKeys(sum.Lines) {
			fmt.Printf("%s: %d\n", name, sum.Lines[name])
		}
		return nil
	},
}
