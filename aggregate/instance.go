package aggregate

// Instance is one configured aggregator: a [Kind] bound to an output field
// name and the interesting-field-table indices it reads its inputs from.
// InputFields is populated with indices into the *original* (pre-finalize)
// field table as fields are declared, then rewritten in place by
// [FieldTable.Finalize]'s returned permutation.
type Instance struct {
	Kind        *Kind
	OutputName  string
	InputFields []int

	newState func() AggregatorState
}

// NewState constructs fresh per-clump state for this instance.
func (inst *Instance) NewState() AggregatorState {
	return inst.newState()
}
