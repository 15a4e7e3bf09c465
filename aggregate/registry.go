package aggregate

import "sort"

// FieldValue is one interesting field's observed value for the record
// currently being committed. Num is NaN when the field was absent, null, or
// did not parse as a number; numeric aggregators treat NaN as "skip this
// observation". Set is false when the field was absent or null; textual
// aggregators (concatenate, mode) treat !Set as "skip this observation".
type FieldValue struct {
	Text string
	Num  float64
	Set  bool
}

// AggregatorState is the mutable per-clump state owned by one aggregator
// instance. Implementations are constructed fresh for every new clump via
// the [Kind]'s parsed constructor, and are never shared across clumps.
type AggregatorState interface {
	// Init resets the state to its zero value for a newly created clump.
	Init()
	// Update folds one record's observation into the state. args has
	// exactly as many elements as the owning instance declared input
	// fields (0, 1, or 2).
	Update(args []FieldValue)
	// Dump renders the final value as a JSON fragment (a bare number, a
	// quoted and escaped string, or the literal null).
	Dump() string
}

// Kind is an immutable catalogue entry describing one aggregator: its name,
// an optional short name, and how to parse an argument string into a
// constructor for fresh [AggregatorState] values plus the list of
// interesting-field names that state wants to observe.
type Kind struct {
	Name      string
	ShortName string
	Help      string

	// ParseArgs parses everything after the aggregator name (and its
	// separating comma, if any) in an aggregator spec. It returns a
	// constructor for fresh per-clump state and the ordered list of field
	// names this aggregator instance wants as Update inputs (0, 1, or 2
	// names, matching the order Update receives them in).
	ParseArgs func(args string) (newState func() AggregatorState, inputFields []string, err error)
}

var registry = map[string]*Kind{}

func register(k *Kind) {
	registry[k.Name] = k
	if k.ShortName != "" {
		registry[k.ShortName] = k
	}
}

// Lookup finds a [Kind] by its long or short name.
func Lookup(name string) (*Kind, bool) {
	k, ok := registry[name]
	return k, ok
}

// KindNames returns every registered long aggregator name, sorted, for use
// in --list-aggregators output and shell completions.
func KindNames() []string {
	seen := make(map[string]bool)

	names := make([]string, 0, len(registry))

	for _, k := range registry {
		if seen[k.Name] {
			continue
		}

		seen[k.Name] = true

		names = append(names, k.Name)
	}

	sort.Strings(names)

	return names
}
