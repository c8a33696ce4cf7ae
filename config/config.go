package config

import (
	"math"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendDynamo = "dynamo"
)

// MaxTicksPerBeat is the largest resolution a MIDI file header can hold.
const MaxTicksPerBeat = math.MaxUint16

// FlushDelay is how long the file store waits for writes to settle.
const FlushDelay = 500 * time.Millisecond

type Config struct {
	StoreBackend   string
	StorePath      string
	DynamoEndpoint string
	DynamoRegion   string
	DynamoTable    string
	TicksPerBeat   uint64
	Bpm            float64
	MidiPort       string
	Port           int
	LogLevel       string
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// FromEnv reads the environment, falling back to defaults for anything
// unset. Malformed numbers are an error rather than a silent default.
func FromEnv() (Config, error) {
	c := Config{
		StoreBackend:   getenv("STORE_BACKEND", BackendFile),
		StorePath:      getenv("STORE_PATH", "./out/lines.gob"),
		DynamoEndpoint: getenv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		DynamoRegion:   getenv("DYNAMO_REGION", "localhost"),
		DynamoTable:    getenv("DYNAMO_TABLE", "tieline-lines"),
		MidiPort:       os.Getenv("MIDI_PORT"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}

	var err error
	if c.TicksPerBeat, err = strconv.ParseUint(getenv("TICKS_PER_BEAT", "480"), 10, 64); err != nil {
		return c, errors.Wrap(err, "TICKS_PER_BEAT")
	}
	if c.Bpm, err = strconv.ParseFloat(getenv("BPM", "120"), 64); err != nil {
		return c, errors.Wrap(err, "BPM")
	}
	if c.Port, err = strconv.Atoi(getenv("PORT", "8080")); err != nil {
		return c, errors.Wrap(err, "PORT")
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendFile, BackendDynamo:
	default:
		return errors.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.TicksPerBeat == 0 || c.TicksPerBeat > MaxTicksPerBeat {
		return errors.Errorf("ticks per beat must be in 1..%d, got %d", MaxTicksPerBeat, c.TicksPerBeat)
	}
	if c.Bpm <= 0 {
		return errors.New("bpm must be positive")
	}
	return nil
}
