package cmd

import (
	"net/http"
	"testing"

	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	res, err := decompose(model.DecomposeRequestBody{Pitch: "E5", BeatDuration: 2.5, Denominator: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1/2"}, res.Components)
	assert.Equal(t, []model.SymbolicNote{
		{Pitch: "E5", Length: 2, TiedToNext: true},
		{Pitch: "E5", Length: 8},
	}, res.Notes)

	res, err = decompose(model.DecomposeRequestBody{Pitch: "R", BeatDuration: 1.5, Denominator: 8})
	require.NoError(t, err)
	assert.Equal(t, []model.SymbolicNote{{Pitch: "R", Length: 4, Dot: 1}}, res.Notes)

	_, err = decompose(model.DecomposeRequestBody{Pitch: "X9", BeatDuration: 1})
	assert.ErrorIs(t, err, model.ErrInvalidNote)

	_, err = decompose(model.DecomposeRequestBody{BeatDuration: 1})
	assert.ErrorIs(t, err, model.ErrInvalidNote)

	_, err = decompose(model.DecomposeRequestBody{Pitch: "C4", BeatDuration: 1e17})
	assert.ErrorIs(t, err, model.ErrUnrepresentableDuration)

	_, err = decompose(model.DecomposeRequestBody{Pitch: "C4", BeatDuration: -1})
	assert.ErrorIs(t, err, model.ErrUnrepresentableDuration)
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		errors.Wrap(model.ErrLineDoesNotExist, "x"):       http.StatusNotFound,
		errors.Wrap(model.ErrLineExists, "x"):             http.StatusConflict,
		errors.Wrap(model.ErrTiePitchMismatch, "x"):       http.StatusBadRequest,
		model.ErrEmptyTieChain:                            http.StatusBadRequest,
		errors.New("disk on fire"):                        http.StatusInternalServerError,
		errors.Wrap(model.ErrUnrepresentableDuration, ""): http.StatusBadRequest,
	}
	for err, status := range cases {
		assert.Equal(t, status, statusOf(err), err.Error())
	}
}
