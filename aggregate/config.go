package aggregate

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for collator configuration, allowing callers
// to customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Key         string
	Aggregator  string
	Size        string
	SizeAlias   string
	Adjacent    string
	Perfect     string
	Incremental string
	Cube        string
	CubeDefault string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f, CubeDefault: "ALL"}
}

// Config holds CLI flag values describing how to collate a stream of
// records. Create instances with [NewConfig], register CLI flags with
// [Config.RegisterFlags], then build a [Collator] with [Config.NewCollator].
type Config struct {
	Key         string
	Aggregator  string
	Size        int
	Adjacent    bool
	Perfect     bool
	Incremental bool
	Cube        bool
	CubeDefault string

	Flags Flags
}

// NewConfig returns a new [Config] with default flag names and CubeDefault
// "ALL". Use [Config.RegisterFlags] to add CLI flags, or set values
// directly.
func NewConfig() *Config {
	f := Flags{
		Key:         "key",
		Aggregator:  "aggregator",
		Size:        "size",
		SizeAlias:   "sz",
		Adjacent:    "adjacent",
		Perfect:     "perfect",
		Incremental: "incremental",
		Cube:        "cube",
		CubeDefault: "cube-default",
	}

	return f.NewConfig()
}

// RegisterFlags adds collation flags to the given [*pflag.FlagSet].
//
// --aggregator keeps the reference implementation's -a shorthand, but
// --adjacent is given its own distinct shorthand (-1) instead of also
// claiming -a, resolving a flag collision present in the reference CLI (see
// the design notes on the -a ambiguity).
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Key, c.Flags.Key, "k", "",
		"comma-separated list of fields to group records by")
	flags.StringVarP(&c.Aggregator, c.Flags.Aggregator, "a", "",
		"colon-separated list of aggregator specs: [outname=]kind[,args]")
	flags.IntVarP(&c.Size, c.Flags.Size, "n", 0,
		"maximum number of clumps held in memory at once (LRU eviction)")
	flags.IntVar(&c.Size, c.Flags.SizeAlias, 0, "alias of --"+c.Flags.Size)
	flags.BoolVarP(&c.Adjacent, c.Flags.Adjacent, "1", false,
		"equivalent to --"+c.Flags.Size+" 1, for collating adjacent records")
	flags.BoolVar(&c.Perfect, c.Flags.Perfect, false,
		"never evict clumps; hold every group in memory until end of input")
	flags.BoolVar(&c.Incremental, c.Flags.Incremental, false,
		"emit a record on every update instead of only on eviction and end of input")
	flags.BoolVar(&c.Cube, c.Flags.Cube, false,
		"expand each record into every power-set combination of rolled-up key dimensions")
	flags.StringVar(&c.CubeDefault, c.Flags.CubeDefault, "ALL",
		"placeholder value used for rolled-up key dimensions when --"+c.Flags.Cube+" is set")
}

// RegisterCompletions registers shell completions for collation flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Aggregator,
		cobra.FixedCompletions(KindNames(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Aggregator, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, name := range []string{c.Flags.Size, c.Flags.SizeAlias} {
		if err := cmd.RegisterFlagCompletionFunc(name, noFileComp); err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// maxClumps resolves the effective bounded capacity from Perfect, Adjacent,
// and Size: 0 means unbounded. With none of the three given, it defaults to
// a bounded capacity of 1, matching the reference implementation's default
// (`max_clumps = 1`) rather than treating the omission as an error.
func (c *Config) maxClumps() int {
	switch {
	case c.Perfect:
		return 0
	case c.Adjacent:
		return 1
	case c.Size > 0:
		return c.Size
	default:
		return 1
	}
}

// NewCollator builds a [Collator] from this configuration, writing emitted
// records to out. It parses --key and --aggregator, builds the interesting
// field table, and validates the cube/capacity constraint (§4.4/§4.7): when
// cubing is enabled and the table is bounded, capacity must be at least
// 2^numKeyFields.
func (c *Config) NewCollator(out io.Writer) (*Collator, error) {
	keyNames := splitNonEmpty(c.Key, ",")
	aggSpecs := splitNonEmpty(c.Aggregator, ":")

	if len(keyNames) == 0 && len(aggSpecs) == 0 {
		return nil, fmt.Errorf("%w: at least one --%s field or --%s must be given",
			ErrInvalidConfig, c.Flags.Key, c.Flags.Aggregator)
	}

	fields := NewFieldTable()
	for _, name := range keyNames {
		fields.Add(name, true)
	}

	var instances []*Instance

	for _, spec := range aggSpecs {
		inst, inputFields, err := parseAggregatorSpec(spec)
		if err != nil {
			return nil, err
		}

		for _, name := range inputFields {
			inst.InputFields = append(inst.InputFields, fields.Add(name, false))
		}

		instances = append(instances, inst)
	}

	remap := fields.Finalize()
	for _, inst := range instances {
		for i, idx := range inst.InputFields {
			inst.InputFields[i] = remap[idx]
		}
	}

	maxClumps := c.maxClumps()

	numKeyFields := fields.NumKeyFields()
	if c.Cube && maxClumps > 0 {
		needed := 1 << numKeyFields
		if maxClumps < needed {
			return nil, fmt.Errorf("%w: --%s requires capacity >= 2^%d (%d) key combinations, got %d",
				ErrInvalidConfig, c.Flags.Cube, numKeyFields, needed, maxClumps)
		}
	}

	return newCollator(fields, instances, maxClumps, c.Incremental, c.Cube, c.CubeDefault, out), nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// parseAggregatorSpec parses one colon-delimited aggregator spec of the
// form [outname=]kind[,args]. When outname is omitted, it defaults to the
// spec (after any outname= prefix is stripped) with commas turned into
// underscores.
func parseAggregatorSpec(spec string) (*Instance, []string, error) {
	rest := spec
	outName := ""

	eqIdx := strings.Index(spec, "=")
	commaIdx := strings.Index(spec, ",")

	if eqIdx >= 0 && (commaIdx < 0 || eqIdx < commaIdx) {
		outName = spec[:eqIdx]
		rest = spec[eqIdx+1:]
	}

	kindName := rest
	kindArgs := ""

	if idx := strings.Index(rest, ","); idx >= 0 {
		kindName = rest[:idx]
		kindArgs = rest[idx+1:]
	}

	if outName == "" {
		outName = strings.ReplaceAll(rest, ",", "_")
	}

	kind, ok := Lookup(kindName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownAggregator, kindName)
	}

	newState, inputFields, err := kind.ParseArgs(kindArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: aggregator %q: %w", ErrInvalidAggregatorSpec, spec, err)
	}

	return &Instance{Kind: kind, OutputName: outName, newState: newState}, inputFields, nil
}
