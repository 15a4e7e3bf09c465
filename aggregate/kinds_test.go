package aggregate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbernard/recs-collate/aggregate"
)

func newStateFor(t *testing.T, kindName, args string) aggregate.AggregatorState {
	t.Helper()

	k, ok := aggregate.Lookup(kindName)
	require.True(t, ok)

	newState, _, err := k.ParseArgs(args)
	require.NoError(t, err)

	s := newState()
	s.Init()

	return s
}

func numArg(v float64) aggregate.FieldValue {
	return aggregate.FieldValue{Num: v, Set: !math.IsNaN(v)}
}

func textArg(s string) aggregate.FieldValue {
	return aggregate.FieldValue{Text: s, Set: true, Num: math.NaN()}
}

func TestCountIgnoresArguments(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "count", "")

	for range 5 {
		s.Update(nil)
	}

	assert.Equal(t, "5", s.Dump())
}

func TestVarianceOfConstantIsZero(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "variance", "v")

	for range 4 {
		s.Update([]aggregate.FieldValue{numArg(7)})
	}

	assert.Equal(t, "0", s.Dump())
}

func TestVarianceOfOneTwoThree(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "variance", "v")

	for _, v := range []float64{1, 2, 3} {
		s.Update([]aggregate.FieldValue{numArg(v)})
	}

	// mean=2, E[x^2]=(1+4+9)/3=14/3, var=14/3-4=2/3
	assert.Equal(t, "0.666666666666667", s.Dump())
}

func TestVarianceSkipsNaN(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "variance", "v")

	s.Update([]aggregate.FieldValue{numArg(math.NaN())})
	s.Update([]aggregate.FieldValue{numArg(1)})
	s.Update([]aggregate.FieldValue{numArg(3)})

	assert.Equal(t, "1", s.Dump()) // mean=2, E[x^2]=5, var=5-4=1
}

func TestCovarianceSkipsPairWhenEitherIsNaN(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "covariance", "x,y")

	s.Update([]aggregate.FieldValue{numArg(1), numArg(math.NaN())})
	s.Update([]aggregate.FieldValue{numArg(2), numArg(4)})
	s.Update([]aggregate.FieldValue{numArg(3), numArg(6)})

	// Only the second and third pairs are observed: n=2, sumXY=8+18=26,
	// mean_x=2.5, mean_y=5, cov=26/2-2.5*5=13-12.5=0.5.
	assert.Equal(t, "0.5", s.Dump())
}

func TestMinMaxEmptyGroupAreInfinite(t *testing.T) {
	t.Parallel()

	min := newStateFor(t, "min", "v")
	max := newStateFor(t, "max", "v")

	assert.Equal(t, "null", min.Dump())
	assert.Equal(t, "null", max.Dump())
}

func TestMinMaxTrackExtremesAndSkipNaN(t *testing.T) {
	t.Parallel()

	min := newStateFor(t, "min", "v")
	max := newStateFor(t, "max", "v")

	for _, v := range []float64{5, math.NaN(), 1, 9, -3} {
		min.Update([]aggregate.FieldValue{numArg(v)})
		max.Update([]aggregate.FieldValue{numArg(v)})
	}

	assert.Equal(t, "-3", min.Dump())
	assert.Equal(t, "9", max.Dump())
}

func TestModeTieBreakFirstSeenWins(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "mode", "v")

	for _, v := range []string{"b", "a", "b", "a"} {
		s.Update([]aggregate.FieldValue{textArg(v)})
	}

	assert.Equal(t, `"b"`, s.Dump())
}

func TestModeEmptyGroupIsNull(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "mode", "v")
	assert.Equal(t, "null", s.Dump())
}

func TestModeSkipsAbsentValues(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "mode", "v")

	s.Update([]aggregate.FieldValue{{Set: false}})
	s.Update([]aggregate.FieldValue{textArg("x")})

	assert.Equal(t, `"x"`, s.Dump())
}

func TestPercentileEmptyGroupIsNull(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "percentile", "50,v")
	assert.Equal(t, "null", s.Dump())
}

func TestPercentileZeroIsMinimum(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "percentile", "0,v")

	for _, v := range []float64{5, 1, 9, 3} {
		s.Update([]aggregate.FieldValue{numArg(v)})
	}

	assert.Equal(t, "1", s.Dump())
}

func TestPercentileHundredIsMaximumClamped(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "percentile", "100,v")

	for _, v := range []float64{5, 1, 9, 3} {
		s.Update([]aggregate.FieldValue{numArg(v)})
	}

	assert.Equal(t, "9", s.Dump())
}

func TestPercentileRejectsOutOfRangeArgument(t *testing.T) {
	t.Parallel()

	k, ok := aggregate.Lookup("percentile")
	require.True(t, ok)

	_, _, err := k.ParseArgs("150,v")
	require.Error(t, err)
}

func TestConcatenateJoinsAndEscapes(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "concatenate", `|,v`)

	s.Update([]aggregate.FieldValue{textArg("a")})
	s.Update([]aggregate.FieldValue{{Set: false}}) // absent values are skipped
	s.Update([]aggregate.FieldValue{textArg(`b"c`)})

	assert.Equal(t, `"a|b\"c"`, s.Dump())
}

func TestAverageEmptyGroupIsNull(t *testing.T) {
	t.Parallel()

	s := newStateFor(t, "average", "v")
	assert.Equal(t, "null", s.Dump())
}

func TestUnknownAggregatorLookupFails(t *testing.T) {
	t.Parallel()

	_, ok := aggregate.Lookup("no-such-kind")
	assert.False(t, ok)
}

func TestSumArgumentValidation(t *testing.T) {
	t.Parallel()

	k, ok := aggregate.Lookup("sum")
	require.True(t, ok)

	_, _, err := k.ParseArgs("")
	require.Error(t, err)

	_, fields, err := k.ParseArgs("v")
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, fields)
}
