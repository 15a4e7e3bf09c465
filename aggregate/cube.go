package aggregate

import "math"

// cubeIterations returns how many key-dimension masks a single record
// expands into: 1 when cubing is disabled, or 2^numKeyFields when enabled
// (the power set of "roll this key dimension up" decisions).
func cubeIterations(numKeyFields int, cube bool) int {
	if !cube {
		return 1
	}

	return 1 << numKeyFields
}

// applyCubeMask substitutes cubeDefault for every key field whose bit is
// set in mask (bit j corresponds to key field j, the table's field 0), and
// passes every other field through unchanged. The returned slice is always
// a fresh copy so it can be handed off to [ClumpTable.FindOrCreate] (which
// retains copies of the key portion) without aliasing the extractor's
// reusable scratch slice.
func applyCubeMask(values []FieldValue, numKeyFields int, mask int, cubeDefault string) []FieldValue {
	out := make([]FieldValue, len(values))
	copy(out, values)

	for j := range numKeyFields {
		if mask&(1<<j) != 0 {
			out[j] = FieldValue{Text: cubeDefault, Set: true, Num: math.NaN()}
		}
	}

	return out
}
