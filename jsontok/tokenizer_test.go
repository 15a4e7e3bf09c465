package jsontok_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbernard/recs-collate/jsontok"
)

type recording struct {
	keys    []string
	values  []string
	objects int
}

func parseAll(t *testing.T, input string) []recording {
	t.Helper()

	p := jsontok.New(strings.NewReader(input))

	var (
		recs []recording
		cur  recording
	)

	p.RegisterKey(func(k string) { cur.keys = append(cur.keys, k) })
	p.RegisterValue(func(v string) { cur.values = append(cur.values, v) })
	p.RegisterObjectEnd(func() {
		cur.objects = 1
		recs = append(recs, cur)
		cur = recording{}
	})

	ctx := context.Background()

	for {
		eof, err := p.Parse(ctx)
		require.NoError(t, err)

		if eof {
			break
		}
	}

	return recs
}

func TestParserScalarFields(t *testing.T) {
	t.Parallel()

	recs := parseAll(t, `{"a":1,"b":"two","c":true,"d":null}`)

	require.Len(t, recs, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, recs[0].keys)
	assert.Equal(t, []string{"1", "two"}, recs[0].values, "boolean and null values should not invoke ValueFunc")
}

func TestParserMultipleRecords(t *testing.T) {
	t.Parallel()

	recs := parseAll(t, `{"k":"1"} {"k":"2"}{"k":"3"}`)

	require.Len(t, recs, 3)

	for i, want := range []string{"1", "2", "3"} {
		assert.Equal(t, []string{want}, recs[i].values)
	}
}

func TestParserIgnoresNestedStructures(t *testing.T) {
	t.Parallel()

	recs := parseAll(t, `{"a":1,"nested":{"x":1,"y":[1,2,3]},"b":2}`)

	require.Len(t, recs, 1)
	assert.Equal(t, []string{"a", "nested", "b"}, recs[0].keys)
	assert.Equal(t, []string{"1", "2"}, recs[0].values)
}

func TestParserArrayValue(t *testing.T) {
	t.Parallel()

	recs := parseAll(t, `{"a":[{"x":1},{"y":2}],"b":"after"}`)

	require.Len(t, recs, 1)
	assert.Equal(t, []string{"a", "b"}, recs[0].keys)
	assert.Equal(t, []string{"after"}, recs[0].values)
}

func TestParserEmptyInput(t *testing.T) {
	t.Parallel()

	p := jsontok.New(strings.NewReader(""))

	eof, err := p.Parse(context.Background())
	require.NoError(t, err)
	assert.True(t, eof)
}

func TestParserTopLevelArrayIsError(t *testing.T) {
	t.Parallel()

	p := jsontok.New(strings.NewReader(`[1,2,3]`))

	_, err := p.Parse(context.Background())
	require.ErrorIs(t, err, jsontok.ErrUnexpectedToken)
}

func TestParserTruncatedInputIsError(t *testing.T) {
	t.Parallel()

	p := jsontok.New(strings.NewReader(`{"a":1,`))

	_, err := p.Parse(context.Background())
	require.Error(t, err)
}

func TestParserContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := jsontok.New(strings.NewReader(`{"a":1}`))

	_, err := p.Parse(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParserNumberPreservesLiteralText(t *testing.T) {
	t.Parallel()

	recs := parseAll(t, `{"n":3.140000}`)

	require.Len(t, recs, 1)
	assert.Equal(t, []string{"3.140000"}, recs[0].values, "json.Number should preserve literal decimal text")
}
