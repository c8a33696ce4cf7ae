package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/tieline/duration"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/pitch"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	decomposeCmd.Flags().String("pitch", "C4", "pitch to write the notes with, R for a rest")
	decomposeCmd.Flags().Uint8("denominator", 4, "time signature denominator, 8 selects the compound ladder")
	rootCmd.AddCommand(decomposeCmd)
}

var decomposeCmd = &cobra.Command{
	Use:         "decompose <beats>",
	Short:       "Writes a duration in beats as tied and dotted notes",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"store": "none"},
	RunE: func(cmd *cobra.Command, args []string) error {
		beats, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return errors.Wrapf(err, "beats %q", args[0])
		}
		name, _ := cmd.Flags().GetString("pitch")
		denominator, _ := cmd.Flags().GetUint8("denominator")

		res, err := decompose(model.DecomposeRequestBody{Pitch: name, BeatDuration: beats, Denominator: denominator})
		if err != nil {
			return err
		}
		fmt.Printf("components: %s\n", strings.Join(res.Components, " + "))
		for _, n := range res.Notes {
			fmt.Printf("%v\n", n)
		}
		return nil
	},
}

func decompose(req model.DecomposeRequestBody) (model.DecomposeResponse, error) {
	var res model.DecomposeResponse
	if req.Pitch == "" || !pitch.Valid(req.Pitch) {
		return res, errors.Wrapf(model.ErrInvalidNote, "pitch %q", req.Pitch)
	}

	components, err := duration.DecomposeFloat(req.BeatDuration, duration.AlphabetFor(req.Denominator))
	if err != nil {
		return res, err
	}
	notes, err := duration.Group(components, req.Pitch)
	if err != nil {
		return res, err
	}
	for _, c := range components {
		res.Components = append(res.Components, c.String())
	}
	res.Notes = notes
	return res, nil
}
