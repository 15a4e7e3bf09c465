package aggregate

import (
	"fmt"
	"io"
	"strings"
)

// appendEscaped writes s into sb with JSON string escaping, but without the
// surrounding quotes, so callers can build up a single quoted string out of
// several escaped pieces (e.g. concatenate's delimiter-joined parts).
func appendEscaped(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
}

// appendQuoted writes s into sb as a complete JSON string, including
// surrounding quotes and escaping.
func appendQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	appendEscaped(sb, s)
	sb.WriteByte('"')
}

// emitClump renders one clump as a single-line JSON object: key fields in
// declaration order, followed by aggregator outputs in registration order.
// The field separator is written whenever anything has already been
// written this record, tracked with a boolean spanning both the key loop
// and the aggregator-output loop, so a zero-key-field record and the first
// aggregator output are both handled correctly.
func emitClump(w io.Writer, fieldNames []string, numKeyFields int, keys []*string, instances []*Instance, states []AggregatorState) error {
	var sb strings.Builder

	sb.WriteByte('{')

	wroteAny := false

	for j := range numKeyFields {
		if wroteAny {
			sb.WriteByte(',')
		}

		wroteAny = true

		appendQuoted(&sb, fieldNames[j])
		sb.WriteByte(':')

		if keys[j] == nil {
			sb.WriteString("null")
		} else {
			appendQuoted(&sb, *keys[j])
		}
	}

	for i, inst := range instances {
		if wroteAny {
			sb.WriteByte(',')
		}

		wroteAny = true

		appendQuoted(&sb, inst.OutputName)
		sb.WriteByte(':')
		sb.WriteString(states[i].Dump())
	}

	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("emitting record: %w", err)
	}

	return nil
}
