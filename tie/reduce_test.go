package tie

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/jsphweid/tieline/duration"
	"github.com/jsphweid/tieline/model"
	"github.com/jsphweid/tieline/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ticksPerBeat = 480

func n(p string, length uint64, dot int, tied bool) model.SymbolicNote {
	return model.SymbolicNote{Pitch: p, Length: length, Dot: dot, TiedToNext: tied}
}

func TestReduceThreeNoteChain(t *testing.T) {
	chain := []model.SymbolicNote{n("D3", 4, 0, true), n("D3", 8, 0, true), n("D3", 16, 0, false)}
	got, used, err := Reduce(chain, Flags(chain), ticksPerBeat)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(3, used)
	assert.Equal("D3", got.Pitch)
	assert.True(got.Duration.Equal(rational.Int(840)), "got %v", got.Duration)
}

func TestReduceStopsAtFirstUntiedNote(t *testing.T) {
	chain := []model.SymbolicNote{n("C4", 4, 1, false), n("E4", 4, 0, false)}
	got, used, err := Reduce(chain, Flags(chain), ticksPerBeat)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
	assert.True(t, got.Duration.Equal(rational.Int(720)))
}

func TestReduceEmpty(t *testing.T) {
	_, _, err := Reduce(nil, Flags(nil), ticksPerBeat)
	assert.True(t, errors.Is(err, model.ErrEmptyTieChain))
}

func TestReducePitchMismatch(t *testing.T) {
	chain := []model.SymbolicNote{n("C4", 4, 0, true), n("D4", 4, 0, false)}
	_, _, err := Reduce(chain, Flags(chain), ticksPerBeat)
	assert.True(t, errors.Is(err, model.ErrTiePitchMismatch))
	assert.True(t, errors.Is(err, model.ErrInvalidNote))
}

func TestReduceRejectsTiedRest(t *testing.T) {
	chain := []model.SymbolicNote{n("R", 4, 0, false), n("R", 4, 0, false)}
	_, _, err := Reduce(chain, func(int) bool { return true }, ticksPerBeat)
	assert.True(t, errors.Is(err, model.ErrInvalidNote))
}

func TestReduceRejectsBadDots(t *testing.T) {
	chain := []model.SymbolicNote{n("C4", 4, 3, false)}
	_, _, err := Reduce(chain, Flags(chain), ticksPerBeat)
	assert.True(t, errors.Is(err, model.ErrInvalidNote))
}

func TestReduceDanglingTieEndsChain(t *testing.T) {
	chain := []model.SymbolicNote{n("C4", 2, 0, true)}
	got, used, err := Reduce(chain, Flags(chain), ticksPerBeat)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
	assert.True(t, got.Duration.Equal(rational.Int(960)))
}

func TestReduceAll(t *testing.T) {
	notes := []model.SymbolicNote{
		n("C4", 2, 0, true), n("C4", 8, 0, false),
		n("R", 4, 0, false),
		n("G4", 16, 2, false),
	}
	got, err := ReduceAll(notes, ticksPerBeat)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert := assert.New(t)
	assert.Equal("C4", got[0].Pitch)
	assert.True(got[0].Duration.Equal(rational.Int(1200)))
	assert.True(got[1].IsRest())
	assert.True(got[1].Duration.Equal(rational.Int(480)))
	assert.True(got[2].Duration.Equal(rational.Int(210)))
}

// Sums of every length/dot combination match big.Rat.
func TestReduceIsExact(t *testing.T) {
	var chain []model.SymbolicNote
	want := new(big.Rat)
	for _, l := range model.Lengths {
		for d := 0; d <= model.MaxDots; d++ {
			chain = append(chain, n("F#2", l, d, true))
			// 7 ticks per beat keeps every term fractional
			num := int64(7 * 4 * ((2 << d) - 1))
			den := int64(l) << d
			want.Add(want, big.NewRat(num, den))
		}
	}
	chain[len(chain)-1].TiedToNext = false

	got, used, err := Reduce(chain, Flags(chain), 7)
	require.NoError(t, err)
	assert.Equal(t, len(chain), used)

	r := got.Duration
	gotRat := new(big.Rat).SetFrac(new(big.Int).SetUint64(r.Num), new(big.Int).SetUint64(r.Den))
	assert.Equal(t, 0, want.Cmp(gotRat), "got %v want %v", gotRat, want)
}

// Reducing, decomposing and grouping again keeps the total exactly.
func TestReduceDecomposeIdempotent(t *testing.T) {
	chain := []model.SymbolicNote{n("A4", 2, 1, true), n("A4", 16, 0, true), n("A4", 32, 0, false)}
	p, _, err := Reduce(chain, Flags(chain), ticksPerBeat)
	require.NoError(t, err)

	components, err := duration.Decompose(p.Beats(ticksPerBeat), duration.Simple)
	require.NoError(t, err)
	regrouped, err := duration.Group(components, p.Pitch)
	require.NoError(t, err)

	again, used, err := Reduce(regrouped, Flags(regrouped), ticksPerBeat)
	require.NoError(t, err)
	assert.Equal(t, len(regrouped), used)
	assert.True(t, again.Duration.Equal(p.Duration))
}

type sliceLine struct {
	notes []model.SymbolicNote
	ties  map[int]bool
}

func (s *sliceLine) at(i int) (model.StoredNote, bool, error) {
	if i >= len(s.notes) {
		return model.StoredNote{}, false, nil
	}
	return model.StoredNote{Index: i, Note: s.notes[i]}, true, nil
}

func (s *sliceLine) FirstNote(ctx context.Context, line string) (model.StoredNote, bool, error) {
	return s.at(0)
}

func (s *sliceLine) NextNote(ctx context.Context, sn model.StoredNote) (model.StoredNote, bool, error) {
	return s.at(sn.Index + 1)
}

func (s *sliceLine) HasOutgoingTie(ctx context.Context, sn model.StoredNote) (bool, error) {
	return s.ties[sn.Index], nil
}

func TestWalkUsesStoreTies(t *testing.T) {
	// the store's tie edges win over the note flags
	line := &sliceLine{
		notes: []model.SymbolicNote{n("C4", 4, 0, false), n("C4", 4, 0, false), n("E4", 2, 0, false)},
		ties:  map[int]bool{0: true},
	}

	var got []model.PlayableNote
	err := Walk(context.Background(), line, "test", ticksPerBeat, func(p model.PlayableNote) bool {
		got = append(got, p)
		return true
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Duration.Equal(rational.Int(960)))
	assert.Equal(t, "E4", got[1].Pitch)
}

func TestWalkStopsWhenYieldDeclines(t *testing.T) {
	line := &sliceLine{notes: []model.SymbolicNote{n("C4", 4, 0, false), n("D4", 4, 0, false)}}
	count := 0
	err := Walk(context.Background(), line, "test", ticksPerBeat, func(model.PlayableNote) bool {
		count++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWalkReportsMismatch(t *testing.T) {
	line := &sliceLine{
		notes: []model.SymbolicNote{n("C4", 4, 0, false), n("D4", 4, 0, false)},
		ties:  map[int]bool{0: true},
	}
	err := Walk(context.Background(), line, "test", ticksPerBeat, func(model.PlayableNote) bool { return true })
	assert.True(t, errors.Is(err, model.ErrTiePitchMismatch))
}
