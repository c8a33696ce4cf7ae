package model

type AddLineRequestBody struct {
	Composer string         `json:"composer"`
	Notes    []SymbolicNote `json:"notes"`
}

type LineResponse struct {
	Line  Line           `json:"line"`
	Notes []SymbolicNote `json:"notes"`
}

type PlayableResult struct {
	Pitch     string  `json:"pitch"`
	Ticks     string  `json:"ticks"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type PlayableResponse struct {
	TicksPerBeat uint64           `json:"ticks_per_beat"`
	Bpm          float64          `json:"bpm"`
	Notes        []PlayableResult `json:"notes"`
}

type DecomposeRequestBody struct {
	Pitch        string  `json:"pitch"`
	BeatDuration float64 `json:"beat_duration"`
	Denominator  uint8   `json:"denominator"`
}

type DecomposeResponse struct {
	Components []string       `json:"components"`
	Notes      []SymbolicNote `json:"notes"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
