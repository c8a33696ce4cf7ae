package model

import "time"

type Header struct {
	Composer string    `json:"composer,omitempty"`
	Created  time.Time `json:"created"`
}

// Line is a named monophonic voice. Notes are kept by the store.
type Line struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Header   Header `json:"header"`
	NumNotes int    `json:"num_notes"`
}

// StoredNote is a note as the line store hands it out, with the position
// the store needs to find its successor.
type StoredNote struct {
	ID     string       `json:"id"`
	LineID string       `json:"line_id"`
	Line   string       `json:"line"`
	Index  int          `json:"index"`
	Note   SymbolicNote `json:"note"`
}
