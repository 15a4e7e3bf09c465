package aggregate

import (
	"context"
	"fmt"
	"io"
)

// Collator is the driver: it owns the interesting field table, the
// configured aggregator instances, and the clump table, and orchestrates
// parsing one or more input sources into it. Build one with
// [Config.NewCollator]; call [Collator.Run] once per input source, then
// [Collator.Flush] once after all sources have been consumed.
type Collator struct {
	fields      *FieldTable
	instances   []*Instance
	table       *ClumpTable
	incremental bool
	cube        bool
	cubeDefault string
	out         io.Writer

	// emitErr records the first write failure seen while emitting a clump,
	// whether from an eviction mid-run or an incremental per-record emit.
	// [Collator.Run] checks it after every record so an I/O failure aborts
	// the run promptly instead of being silently dropped by the eviction
	// callback, which itself cannot return an error to its caller.
	emitErr error
}

func newCollator(fields *FieldTable, instances []*Instance, maxClumps int, incremental, cube bool, cubeDefault string, out io.Writer) *Collator {
	c := &Collator{
		fields:      fields,
		instances:   instances,
		incremental: incremental,
		cube:        cube,
		cubeDefault: cubeDefault,
		out:         out,
	}

	c.table = NewClumpTable(fields.NumKeyFields(), maxClumps, incremental, instances, func(victim *Clump) {
		c.emit(victim.Keys, victim.States)
	})

	return c
}

// emit renders one clump and records the first write failure seen, since
// callers driven from inside the clump table (eviction) have no error
// return path of their own.
func (c *Collator) emit(keys []*string, states []AggregatorState) {
	if c.emitErr != nil {
		return
	}

	err := emitClump(c.out, c.fields.Names(), c.fields.NumKeyFields(), keys, c.instances, states)
	if err != nil {
		c.emitErr = err
	}
}

// Run parses every record from r, committing each into the clump table,
// until r is exhausted or ctx is canceled. In incremental mode a record is
// emitted after every commit (including every cube-expanded sub-record);
// otherwise records are emitted only on LRU eviction and at
// [Collator.Flush].
func (c *Collator) Run(ctx context.Context, r io.Reader) error {
	ext := NewExtractor(c.fields, r)
	ext.Parser().RegisterObjectEnd(func() {
		c.commit(ext)
	})

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("collating input: %w", err)
		}

		ext.Reset()

		eof, err := ext.Parser().Parse(ctx)
		if err != nil {
			return fmt.Errorf("collating input: %w", err)
		}

		if c.emitErr != nil {
			return c.emitErr
		}

		if eof {
			return nil
		}
	}
}

// Flush emits every clump remaining in the table (in LRU order) and empties
// it. Call once after all input sources have been run.
func (c *Collator) Flush() error {
	c.table.FlushAll(func(clump *Clump) {
		c.emit(clump.Keys, clump.States)
	})

	return c.emitErr
}

// commit performs the per-record cube expansion and clump update: one
// FindOrCreate + Update pass per cube mask (just one pass when cubing is
// disabled), optionally emitting immediately.
func (c *Collator) commit(ext *Extractor) {
	values := ext.Values()
	numKeyFields := c.fields.NumKeyFields()
	iterations := cubeIterations(numKeyFields, c.cube)

	for mask := range iterations {
		masked := values
		if c.cube {
			masked = applyCubeMask(values, numKeyFields, mask, c.cubeDefault)
		}

		keys := make([]*string, numKeyFields)

		for j := range numKeyFields {
			if masked[j].Set {
				t := masked[j].Text
				keys[j] = &t
			}
		}

		clump := c.table.FindOrCreate(keys)

		for i, inst := range c.instances {
			args := make([]FieldValue, len(inst.InputFields))
			for a, idx := range inst.InputFields {
				args[a] = masked[idx]
			}

			clump.States[i].Update(args)
		}

		if c.incremental {
			c.emit(clump.Keys, clump.States)
		}
	}
}
