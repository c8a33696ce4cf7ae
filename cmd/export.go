package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	exportCmd.Flags().Float64("bpm", 0, "tempo written to the file (default from BPM)")
	exportCmd.Flags().Int("excerpt", 0, "stop after this many sounding notes")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <line> <file.mid>",
	Short: "Saves a line as a MIDI file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bpm := bpmFlag(cmd)
		excerpt, _ := cmd.Flags().GetInt("excerpt")
		if err := sess.SaveLineToMidi(cmd.Context(), args[0], args[1], bpm, excerpt); err != nil {
			return err
		}
		fmt.Printf("Saved %s to %s\n", args[0], args[1])
		return nil
	},
}

func bpmFlag(cmd *cobra.Command) float64 {
	bpm, _ := cmd.Flags().GetFloat64("bpm")
	if bpm <= 0 {
		return cfg.Bpm
	}
	return bpm
}
