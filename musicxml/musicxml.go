package musicxml

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Score is the subset of a partwise MusicXML document a line needs.
type Score struct {
	XMLName  xml.Name    `xml:"score-partwise"`
	Title    string      `xml:"movement-title"`
	Creators []Creator   `xml:"identification>creator"`
	PartList []ScorePart `xml:"part-list>score-part"`
	Parts    []Part      `xml:"part"`
}

type Creator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

type ScorePart struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"part-name"`
}

type Part struct {
	ID       string    `xml:"id,attr"`
	Measures []Measure `xml:"measure"`
}

type Measure struct {
	Number     string      `xml:"number,attr"`
	Attributes *Attributes `xml:"attributes"`
	Notes      []Note      `xml:"note"`
}

type Attributes struct {
	Divisions int  `xml:"divisions"`
	Time      Time `xml:"time"`
}

type Time struct {
	Beats    int `xml:"beats"`
	BeatType int `xml:"beat-type"`
}

type Note struct {
	Rest     *Rest      `xml:"rest"`
	Chord    *struct{}  `xml:"chord"`
	Grace    *struct{}  `xml:"grace"`
	Pitch    *Pitch     `xml:"pitch"`
	Duration int        `xml:"duration"`
	Type     string     `xml:"type"`
	Dots     []struct{} `xml:"dot"`
	Ties     []Tie      `xml:"tie"`
}

type Rest struct {
	Measure string `xml:"measure,attr"`
}

type Pitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter"`
	Octave int     `xml:"octave"`
}

type Tie struct {
	Type string `xml:"type,attr"`
}

func (n Note) TieStart() bool {
	for _, t := range n.Ties {
		if t.Type == "start" {
			return true
		}
	}
	return false
}

func Decode(r io.Reader) (*Score, error) {
	var s Score
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding musicxml")
	}
	return &s, nil
}

func ReadFile(path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read file %s", path)
	}
	defer f.Close()
	return Decode(f)
}

func (s *Score) Composer() string {
	for _, c := range s.Creators {
		if c.Type == "composer" {
			return c.Name
		}
	}
	return ""
}

func (s *Score) PartName(id string) string {
	for _, p := range s.PartList {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}
