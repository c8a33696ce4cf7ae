package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/jsphweid/tieline/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	playCmd.Flags().Float64("bpm", 0, "tempo (default from BPM)")
	playCmd.Flags().Int("excerpt", 0, "stop after this many sounding notes")
	playCmd.Flags().String("port", "", "midi out port name (default from MIDI_PORT, else the first port)")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <line>",
	Short: "Plays a line on a MIDI out port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = cfg.MidiPort
		}
		excerpt, _ := cmd.Flags().GetInt("excerpt")

		defer gomidi.CloseDriver()
		send, closePort, err := midi.OpenOut(port)
		if err != nil {
			return err
		}
		defer closePort()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		err = sess.PlayLine(ctx, args[0], send, bpmFlag(cmd), excerpt)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
