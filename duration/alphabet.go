package duration

import "github.com/jsphweid/tieline/rational"

// Alphabet is a descending ladder of primitive beat values.
type Alphabet []rational.Rational

// Simple is the ladder for quarter based meters: whole down to a 256th.
var Simple = Alphabet{
	rational.Int(4),
	rational.Int(2),
	rational.Int(1),
	rational.New(1, 2),
	rational.New(1, 4),
	rational.New(1, 8),
	rational.New(1, 16),
	rational.New(1, 32),
	rational.New(1, 64),
}

// Compound is the ladder for eighth based meters such as 6/8. It tops out
// at a quarter, so longer values come back as tied quarters.
var Compound = Alphabet{
	rational.Int(1),
	rational.New(1, 2),
	rational.New(1, 4),
	rational.New(1, 8),
	rational.New(1, 16),
	rational.New(1, 32),
	rational.New(1, 64),
}

// AlphabetFor picks a ladder from a time signature denominator.
func AlphabetFor(denominator uint8) Alphabet {
	if denominator == 8 {
		return Compound
	}
	return Simple
}

func (a Alphabet) Smallest() rational.Rational {
	if len(a) == 0 {
		return rational.Zero
	}
	return a[len(a)-1]
}
