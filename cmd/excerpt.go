package cmd

import (
	"fmt"

	"github.com/jsphweid/tieline/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	excerptCmd.Flags().Uint64("offset", 0, "tick to start from")
	excerptCmd.Flags().Int("notes", 10, "number of notes to keep per track")
	rootCmd.AddCommand(excerptCmd)
}

var excerptCmd = &cobra.Command{
	Use:         "excerpt <in.mid> <out.mid>",
	Short:       "Cuts a short excerpt out of a MIDI file",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{"store": "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, _ := cmd.Flags().GetUint64("offset")
		notes, _ := cmd.Flags().GetInt("notes")

		mf, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		ex := midi.Excerpt(mf, offset, notes)
		if err := ex.WriteFile(args[1]); err != nil {
			return errors.Wrapf(err, "writing %s", args[1])
		}
		fmt.Printf("Wrote %d notes per track from tick %d to %s\n", notes, offset, args[1])
		return nil
	},
}
