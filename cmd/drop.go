package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dropCmd)
}

var dropCmd = &cobra.Command{
	Use:   "drop <line>...",
	Short: "Deletes lines and their notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			if err := sess.DropLine(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Printf("Dropped %s\n", name)
		}
		return nil
	},
}
