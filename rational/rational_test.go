package rational

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSameDenominator(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(New(3, 8), New(1, 8).Add(New(2, 8)))
}

func TestAddScalesSmallerDenominator(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(New(7, 8), New(1, 2).Add(New(3, 8)))
	assert.Equal(New(7, 8), New(3, 8).Add(New(1, 2)))
}

func TestAddFallsBackToLcm(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(New(5, 6), New(1, 2).Add(New(1, 3)))
}

func TestZeroValueIsZero(t *testing.T) {
	assert := assert.New(t)
	var r Rational
	assert.True(r.IsZero())
	assert.Equal(New(1, 4), r.Add(New(1, 4)))
	assert.Equal(0, r.Cmp(Zero))
}

func TestSub(t *testing.T) {
	assert := assert.New(t)
	res, ok := New(13, 4).Sub(Int(2))
	assert.True(ok)
	assert.Equal(New(5, 4), res)

	_, ok = New(1, 4).Sub(New(1, 2))
	assert.False(ok)
}

func TestCmp(t *testing.T) {
	cases := []struct {
		a, b Rational
		want int
	}{
		{New(1, 2), New(2, 4), 0},
		{New(1, 3), New(1, 2), -1},
		{New(3, 2), New(1, 1), 1},
		{New(1<<62, 3), New(1<<62, 5), 1},
	}
	for _, c := range cases {
		t.Run(c.a.String()+" vs "+c.b.String(), func(t *testing.T) {
			assert.Equal(t, c.want, c.a.Cmp(c.b))
		})
	}
}

func TestReduce(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(New(480, 1), New(1920, 4).Reduce())
	assert.Equal(Zero, New(0, 64).Reduce())
	assert.Equal("3/2", New(6, 4).Reduce().String())
}

func TestAddMatchesBigRat(t *testing.T) {
	dens := []uint64{1, 2, 4, 8, 16, 32, 64, 6, 12, 24, 48}
	sum := Zero
	want := new(big.Rat)
	for i, d := range dens {
		r := New(uint64(i+1), d)
		sum = sum.Add(r)
		want.Add(want, big.NewRat(int64(i+1), int64(d)))
	}
	got := new(big.Rat).SetFrac(new(big.Int).SetUint64(sum.Num), new(big.Int).SetUint64(sum.Den))
	assert.Equal(t, 0, want.Cmp(got))
}

func TestIsInt(t *testing.T) {
	assert := assert.New(t)
	assert.True(New(960, 2).IsInt())
	assert.True(Zero.IsInt())
	assert.False(New(961, 2).IsInt())
}
