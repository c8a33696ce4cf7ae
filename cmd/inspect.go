package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	inspectCmd.Flags().Float64("bpm", 0, "tempo for the timings (default from BPM)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <line>",
	Short: "Prints the written and playable notes of a line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		l, err := sess.Store().FindLine(ctx, args[0])
		if err != nil {
			return err
		}
		notes, err := sess.Store().Notes(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("line: %s (%s)\n", l.Name, l.ID)
		if l.Header.Composer != "" {
			fmt.Printf("composer: %s\n", l.Header.Composer)
		}
		fmt.Printf("created: %v\n", l.Header.Created)
		for i, n := range notes {
			fmt.Printf("%4d  %v\n", i, n)
		}

		bpm := bpmFlag(cmd)
		timed, err := sess.PlayableLine(ctx, args[0], bpm, 0)
		if err != nil {
			return err
		}
		fmt.Printf("\nplayable at %v bpm, %d ticks per beat:\n", bpm, sess.TicksPerBeat())
		for _, n := range timed {
			fmt.Printf("%-4s %8v ticks  %7.3fs - %7.3fs\n", n.Pitch, n.Duration.Reduce(), n.Start, n.End)
		}
		return nil
	},
}
