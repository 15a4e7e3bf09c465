package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAggregatorSpecDefaultOutputName(t *testing.T) {
	t.Parallel()

	inst, inputFields, err := parseAggregatorSpec("sum,price")
	require.NoError(t, err)
	assert.Equal(t, "sum_price", inst.OutputName)
	assert.Equal(t, []string{"price"}, inputFields)
}

func TestParseAggregatorSpecExplicitOutputName(t *testing.T) {
	t.Parallel()

	inst, inputFields, err := parseAggregatorSpec("total=sum,price")
	require.NoError(t, err)
	assert.Equal(t, "total", inst.OutputName)
	assert.Equal(t, []string{"price"}, inputFields)
}

func TestParseAggregatorSpecCommasBecomeUnderscoresInDefaultName(t *testing.T) {
	t.Parallel()

	inst, _, err := parseAggregatorSpec("covariance,x,y")
	require.NoError(t, err)
	assert.Equal(t, "covariance_x_y", inst.OutputName)
}

func TestParseAggregatorSpecUnknownKind(t *testing.T) {
	t.Parallel()

	_, _, err := parseAggregatorSpec("bogus,x")
	require.ErrorIs(t, err, ErrUnknownAggregator)
}

func TestSplitNonEmptyIgnoresEmptyFields(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, splitNonEmpty("a,,b,", ","))
	assert.Nil(t, splitNonEmpty("", ","))
}

func TestConfigMaxClumpsDefaultsToBoundedOne(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	assert.Equal(t, 1, c.maxClumps())

	c.Perfect = true
	assert.Equal(t, 0, c.maxClumps())
}
