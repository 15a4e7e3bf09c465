package aggregate

import (
	"io"
	"math"
	"strconv"

	"github.com/benbernard/recs-collate/jsontok"
)

// Extractor drives a [jsontok.Parser] over one input source, maintaining
// per-record scratch state that records the most recently observed value
// for each interesting field. It is the Go port's realization of the
// reference implementation's per-record commit callback family, split into
// the parsing/observation half (here) and the clump-commit half (in
// [Collator]).
type Extractor struct {
	fields  *FieldTable
	parser  *jsontok.Parser
	scratch []FieldValue

	current int // index of the field the next value belongs to, or -1
}

// NewExtractor creates an [Extractor] reading from r, whose interesting
// fields are those already declared in fields. fields must already be
// finalized.
func NewExtractor(fields *FieldTable, r io.Reader) *Extractor {
	e := &Extractor{
		fields:  fields,
		parser:  jsontok.New(r),
		scratch: make([]FieldValue, fields.NumFields()),
		current: -1,
	}

	e.parser.RegisterKey(e.onKey)
	e.parser.RegisterValue(e.onValue)

	return e
}

// Parser returns the underlying tokenizer, so a caller can drive it and
// register an end-of-object callback.
func (e *Extractor) Parser() *jsontok.Parser {
	return e.parser
}

// Reset clears captured field values before parsing the next record. Every
// field starts absent (Num NaN, Set false) until observed.
func (e *Extractor) Reset() {
	for i := range e.scratch {
		e.scratch[i] = FieldValue{Num: math.NaN()}
	}

	e.current = -1
}

// Values returns the scratch slice of captured field values for the record
// just parsed, indexed identically to the [FieldTable] it was built from.
// The returned slice is reused across records; callers must not retain it
// across a [Extractor.Reset] call.
func (e *Extractor) Values() []FieldValue {
	return e.scratch
}

func (e *Extractor) onKey(key string) {
	idx, ok := e.fields.Lookup(key)
	if !ok {
		e.current = -1
		return
	}

	e.current = idx
}

func (e *Extractor) onValue(text string) {
	if e.current < 0 {
		return
	}

	fv := FieldValue{Text: text, Set: true, Num: math.NaN()}

	if n, err := strconv.ParseFloat(text, 64); err == nil {
		fv.Num = n
	}

	e.scratch[e.current] = fv
}
