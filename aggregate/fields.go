package aggregate

// FieldTable is the ordered list of field names the engine extracts from
// every input record. Key fields occupy the first NumKeyFields() entries in
// declaration order; the remainder are aggregator-input fields in
// first-seen order. Build one with [NewFieldTable], declare fields with
// [FieldTable.Add], then call [FieldTable.Finalize] once configuration is
// complete.
type FieldTable struct {
	names        []string
	isKey        []bool
	index        map[string]int
	numKeyFields int
	finalized    bool
}

// NewFieldTable creates an empty [FieldTable].
func NewFieldTable() *FieldTable {
	return &FieldTable{index: make(map[string]int)}
}

// Add declares field name as interesting, returning its current index. If
// name was already declared, its existing index is returned; if it was
// previously declared as a non-key field and is now declared as a key
// field, it is promoted (its isKey flag is updated in place, but its
// position does not move until [FieldTable.Finalize] runs).
func (t *FieldTable) Add(name string, isKey bool) int {
	if idx, ok := t.index[name]; ok {
		if isKey {
			t.isKey[idx] = true
		}

		return idx
	}

	idx := len(t.names)
	t.names = append(t.names, name)
	t.isKey = append(t.isKey, isKey)
	t.index[name] = idx

	return idx
}

// NumFields returns the total number of declared fields.
func (t *FieldTable) NumFields() int {
	return len(t.names)
}

// NumKeyFields returns the number of key fields. Only meaningful after
// [FieldTable.Finalize].
func (t *FieldTable) NumKeyFields() int {
	return t.numKeyFields
}

// Names returns the field names in their current order.
func (t *FieldTable) Names() []string {
	return t.names
}

// Lookup returns the index of name, if declared.
func (t *FieldTable) Lookup(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// Finalize partitions fields into key fields first (declaration order),
// then non-key fields (first-seen order), and returns the permutation
// mapping each field's old index to its new index. Callers must use the
// returned slice to rewrite any previously captured field indices (see
// [Instance.InputFields]). Finalize is idempotent; calling it again after
// the table has already been finalized returns an identity permutation.
func (t *FieldTable) Finalize() []int {
	if t.finalized {
		remap := make([]int, len(t.names))
		for i := range remap {
			remap[i] = i
		}

		return remap
	}

	n := len(t.names)
	remap := make([]int, n)

	newNames := make([]string, 0, n)
	newIsKey := make([]bool, 0, n)

	for i := range t.names {
		if t.isKey[i] {
			remap[i] = len(newNames)
			newNames = append(newNames, t.names[i])
			newIsKey = append(newIsKey, true)
		}
	}

	numKeyFields := len(newNames)

	for i := range t.names {
		if !t.isKey[i] {
			remap[i] = len(newNames)
			newNames = append(newNames, t.names[i])
			newIsKey = append(newIsKey, false)
		}
	}

	t.names = newNames
	t.isKey = newIsKey
	t.numKeyFields = numKeyFields
	t.finalized = true

	t.index = make(map[string]int, n)
	for i, name := range t.names {
		t.index[name] = i
	}

	return remap
}
