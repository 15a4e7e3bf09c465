package jsontok

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrUnexpectedToken is returned when the input does not match the shape
// this package understands: a stream of top-level JSON objects.
var ErrUnexpectedToken = errors.New("unexpected token")

// KeyFunc is called once for every key observed directly inside the
// top-level object of the record currently being parsed.
type KeyFunc func(key string)

// ValueFunc is called once for every string or number value observed
// directly inside the top-level object of the record currently being
// parsed, immediately after the [KeyFunc] call for the key it belongs to.
// It is not called for a JSON null, true, or false value; callers that need
// to distinguish "absent" from "present but null" (or a boolean) should do
// so via [ObjectEndFunc] bookkeeping, since this package treats them all as
// equivalent to "absent" (see package doc).
type ValueFunc func(text string)

// ObjectEndFunc is called once the top-level object closes.
type ObjectEndFunc func()

// Parser incrementally tokenizes a stream of top-level JSON objects,
// dispatching to registered callbacks as it goes. It is the concrete
// implementation of the incremental JSON tokenizer this repository's
// collation engine is built against; see the package doc for why it is
// built on [encoding/json] rather than a hand-rolled byte scanner.
//
// A Parser is driven one record at a time via [Parser.Parse]. It is not
// safe for concurrent use.
type Parser struct {
	dec *json.Decoder

	onKey       KeyFunc
	onValue     ValueFunc
	onObjectEnd ObjectEndFunc

	// depth tracks nesting below the stream root: 0 before/after a record,
	// 1 while directly inside the current record's top-level object, >1
	// inside a nested object or array whose contents are parsed (so the
	// decoder's own bracket matching stays correct) but never reported.
	depth int
	// topExpectingKey is only meaningful while depth == 1: true if the next
	// scalar token is a field name, false if it is that field's value.
	topExpectingKey bool
}

// New creates a [Parser] reading tokens from r.
func New(r io.Reader) *Parser {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	return &Parser{dec: dec}
}

// RegisterKey sets the callback invoked for each top-level-object key.
func (p *Parser) RegisterKey(fn KeyFunc) { p.onKey = fn }

// RegisterValue sets the callback invoked for each top-level-object scalar
// value.
func (p *Parser) RegisterValue(fn ValueFunc) { p.onValue = fn }

// RegisterObjectEnd sets the callback invoked when the top-level object
// closes.
func (p *Parser) RegisterObjectEnd(fn ObjectEndFunc) { p.onObjectEnd = fn }

// Reset clears per-record bookkeeping internal to the tokenizer. Callers
// need not call this between successful [Parser.Parse] calls (Parse already
// returns with depth back at 0); it exists so a caller aborting mid-record
// after an error can put the tokenizer back into a known state before
// reusing it, though in practice a parse error is always treated as fatal
// by this repository's driver.
func (p *Parser) Reset() {
	p.depth = 0
	p.topExpectingKey = false
}

// Parse consumes tokens up to and including the next top-level object's
// closing brace, firing registered callbacks as it goes. It reports eof
// true (with a nil error) if the stream ends before any further record
// begins. A non-nil error is always fatal: the caller must not trust any
// callbacks already fired for the in-flight record.
func (p *Parser) Parse(ctx context.Context) (eof bool, err error) {
	started := false

	for {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("parsing record: %w", err)
		}

		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			if !started {
				return true, nil
			}

			return false, fmt.Errorf("parsing record: %w", io.ErrUnexpectedEOF)
		}

		if err != nil {
			return false, fmt.Errorf("parsing record: %w", err)
		}

		if delim, ok := tok.(json.Delim); ok {
			eof, done, derr := p.handleDelim(delim, &started)
			if derr != nil {
				return false, derr
			}

			if done {
				return eof, nil
			}

			continue
		}

		p.handleScalar(tok)
	}
}

func (p *Parser) handleDelim(delim json.Delim, started *bool) (eof bool, done bool, err error) {
	switch delim {
	case '{':
		if p.depth == 0 {
			if *started {
				return false, false, fmt.Errorf("%w: nested record start", ErrUnexpectedToken)
			}

			*started = true
			p.depth = 1
			p.topExpectingKey = true

			return false, false, nil
		}

		p.depth++

		return false, false, nil

	case '[':
		if p.depth == 0 {
			return false, false, fmt.Errorf("%w: top-level value must be an object", ErrUnexpectedToken)
		}

		p.depth++

		return false, false, nil

	case '}':
		if p.depth == 1 {
			p.depth = 0

			if p.onObjectEnd != nil {
				p.onObjectEnd()
			}

			return false, true, nil
		}

		p.depth--
		if p.depth == 1 {
			p.topExpectingKey = true
		}

		return false, false, nil

	case ']':
		p.depth--
		if p.depth == 1 {
			p.topExpectingKey = true
		}

		return false, false, nil
	}

	return false, false, fmt.Errorf("%w: %v", ErrUnexpectedToken, delim)
}

func (p *Parser) handleScalar(tok json.Token) {
	if p.depth != 1 {
		return
	}

	if p.topExpectingKey {
		if key, ok := tok.(string); ok && p.onKey != nil {
			p.onKey(key)
		}

		p.topExpectingKey = false

		return
	}

	p.topExpectingKey = true

	if tok == nil {
		return
	}

	if p.onValue == nil {
		return
	}

	switch v := tok.(type) {
	case string:
		p.onValue(v)
	case json.Number:
		p.onValue(v.String())
	}
}
