package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsphweid/tieline/util"
	"github.com/spf13/cobra"
)

func init() {
	importMidiCmd.Flags().Int("max", 0, "import at most this many files from a directory")
	rootCmd.AddCommand(importXMLCmd, importMidiCmd)
}

var importXMLCmd = &cobra.Command{
	Use:   "import-xml <file or dir> [piece]",
	Short: "Adds the parts of MusicXML scores as lines",
	Long: `Adds every part of a MusicXML score as a line. A single part score is
stored under the piece name, otherwise each line is named <piece>_<part id>.
The piece name defaults to the file name. Given a directory, every score
under it is imported.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := util.GatherPaths(args[0], util.XMLExtensions, 0)
		if err != nil {
			return err
		}
		for _, path := range paths {
			piece := baseName(path)
			if len(args) == 2 && len(paths) == 1 {
				piece = args[1]
			}
			lines, err := sess.AddLinesFromXML(cmd.Context(), path, piece)
			if err != nil {
				return err
			}
			for _, l := range lines {
				fmt.Printf("Line %s (%d notes) added\n", l.Name, l.NumNotes)
			}
		}
		return nil
	},
}

var importMidiCmd = &cobra.Command{
	Use:   "import-midi <file or dir> [name]",
	Short: "Notates MIDI performances and adds them as lines",
	Long: `Reads the first track with notes of a MIDI file, writes its durations as
tied and dotted notes and stores the result as a line. Given a directory,
every MIDI file under it is imported under its file name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxNum, _ := cmd.Flags().GetInt("max")
		paths, err := util.GatherPaths(args[0], util.MidiExtensions, maxNum)
		if err != nil {
			return err
		}
		for _, path := range paths {
			name := baseName(path)
			if len(args) == 2 && len(paths) == 1 {
				name = args[1]
			}
			l, err := sess.AddMidiFile(cmd.Context(), path, name)
			if err != nil {
				return err
			}
			fmt.Printf("Line %s (%d notes) added\n", l.Name, l.NumNotes)
		}
		return nil
	},
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
