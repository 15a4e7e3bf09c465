package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// numericStat is implemented by the aggregators whose final value is a
// plain float64 derived from a running sum of moments, so [correlation]
// can compose a covariance and two variances internally without going
// through Dump's string formatting.
type numericStat interface {
	value() (v float64, ok bool)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func splitArgs(args string, n int) ([]string, error) {
	parts := strings.SplitN(args, ",", n)
	if len(parts) != n {
		return nil, fmt.Errorf("%w: expected %d comma-separated argument(s), got %q", ErrInvalidAggregatorSpec, n, args)
	}

	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty argument in %q", ErrInvalidAggregatorSpec, args)
		}
	}

	return parts, nil
}

func init() {
	registerCount()
	registerSum()
	registerAverage()
	registerMin()
	registerMax()
	registerVariance()
	registerCovariance()
	registerCorrelation()
	registerConcatenate()
	registerMode()
	registerPercentile()
}

// --- count ------------------------------------------------------------

type countState struct{ n uint64 }

func (s *countState) Init()                    { s.n = 0 }
func (s *countState) Update(_ []FieldValue)    { s.n++ }
func (s *countState) Dump() string             { return strconv.FormatUint(s.n, 10) }

func registerCount() {
	register(&Kind{
		Name:      "count",
		ShortName: "c",
		Help:      "number of records observed in the group",
		ParseArgs: func(args string) (func() AggregatorState, []string, error) {
			if args != "" {
				return nil, nil, fmt.Errorf("%w: count takes no arguments", ErrInvalidAggregatorSpec)
			}

			return func() AggregatorState { return &countState{} }, nil, nil
		},
	})
}

// --- sum ----------------------------------------------------------------

type sumState struct{ s float64 }

func (s *sumState) Init() { s.s = 0 }

func (s *sumState) Update(args []FieldValue) {
	if v := args[0].Num; !math.IsNaN(v) {
		s.s += v
	}
}

func (s *sumState) Dump() string { return formatFloat(s.s) }

func registerSum() {
	register(&Kind{
		Name:      "sum",
		ShortName: "s",
		Help:      "sum of a numeric field over the group",
		ParseArgs: singleFieldParser(func() AggregatorState { return &sumState{} }),
	})
}

func singleFieldParser(newState func() AggregatorState) func(string) (func() AggregatorState, []string, error) {
	return func(args string) (func() AggregatorState, []string, error) {
		if args == "" {
			return nil, nil, fmt.Errorf("%w: expected a single field name argument", ErrInvalidAggregatorSpec)
		}

		field := args

		return newState, []string{field}, nil
	}
}

// --- average --------------------------------------------------------------

type averageState struct {
	s float64
	n float64
}

func (s *averageState) Init() { s.s, s.n = 0, 0 }

func (s *averageState) Update(args []FieldValue) {
	if v := args[0].Num; !math.IsNaN(v) {
		s.s += v
		s.n++
	}
}

func (s *averageState) value() (float64, bool) {
	if s.n == 0 {
		return 0, false
	}

	return s.s / s.n, true
}

func (s *averageState) Dump() string {
	v, ok := s.value()
	if !ok {
		return "null"
	}

	return formatFloat(v)
}

func registerAverage() {
	register(&Kind{
		Name:      "average",
		ShortName: "avg",
		Help:      "arithmetic mean of a numeric field over the group",
		ParseArgs: singleFieldParser(func() AggregatorState { return &averageState{} }),
	})
}

// --- min / max --------------------------------------------------------------

type minState struct{ m float64 }

func (s *minState) Init() { s.m = math.Inf(1) }

func (s *minState) Update(args []FieldValue) {
	if v := args[0].Num; !math.IsNaN(v) && v < s.m {
		s.m = v
	}
}

func (s *minState) Dump() string {
	if math.IsInf(s.m, 1) {
		return "null"
	}

	return formatFloat(s.m)
}

type maxState struct{ m float64 }

func (s *maxState) Init() { s.m = math.Inf(-1) }

func (s *maxState) Update(args []FieldValue) {
	if v := args[0].Num; !math.IsNaN(v) && v > s.m {
		s.m = v
	}
}

func (s *maxState) Dump() string {
	if math.IsInf(s.m, -1) {
		return "null"
	}

	return formatFloat(s.m)
}

func registerMin() {
	register(&Kind{
		Name:      "min",
		ShortName: "mn",
		Help:      "minimum of a numeric field over the group",
		ParseArgs: singleFieldParser(func() AggregatorState { return &minState{} }),
	})
}

func registerMax() {
	register(&Kind{
		Name:      "max",
		ShortName: "mx",
		Help:      "maximum of a numeric field over the group",
		ParseArgs: singleFieldParser(func() AggregatorState { return &maxState{} }),
	})
}

// --- variance ---------------------------------------------------------------

type varianceState struct {
	n, sum, sumSq float64
}

func (s *varianceState) Init() { s.n, s.sum, s.sumSq = 0, 0, 0 }

func (s *varianceState) Update(args []FieldValue) {
	if v := args[0].Num; !math.IsNaN(v) {
		s.n++
		s.sum += v
		s.sumSq += v * v
	}
}

func (s *varianceState) value() (float64, bool) {
	if s.n == 0 {
		return 0, false
	}

	mean := s.sum / s.n

	return s.sumSq/s.n - mean*mean, true
}

func (s *varianceState) Dump() string {
	v, ok := s.value()
	if !ok {
		return "null"
	}

	return formatFloat(v)
}

func registerVariance() {
	register(&Kind{
		Name:      "variance",
		ShortName: "var",
		Help:      "population variance of a numeric field over the group",
		ParseArgs: singleFieldParser(func() AggregatorState { return &varianceState{} }),
	})
}

// --- covariance -------------------------------------------------------------

type covarianceState struct {
	n, sumXY, sumX, sumY float64
}

func (s *covarianceState) Init() { s.n, s.sumXY, s.sumX, s.sumY = 0, 0, 0, 0 }

func (s *covarianceState) Update(args []FieldValue) {
	x, y := args[0].Num, args[1].Num
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}

	s.n++
	s.sumXY += x * y
	s.sumX += x
	s.sumY += y
}

func (s *covarianceState) value() (float64, bool) {
	if s.n == 0 {
		return 0, false
	}

	return s.sumXY/s.n - (s.sumX/s.n)*(s.sumY/s.n), true
}

func (s *covarianceState) Dump() string {
	v, ok := s.value()
	if !ok {
		return "null"
	}

	return formatFloat(v)
}

func twoFieldParser(newState func() AggregatorState) func(string) (func() AggregatorState, []string, error) {
	return func(args string) (func() AggregatorState, []string, error) {
		parts, err := splitArgs(args, 2)
		if err != nil {
			return nil, nil, err
		}

		return newState, parts, nil
	}
}

func registerCovariance() {
	register(&Kind{
		Name:      "covariance",
		ShortName: "cov",
		Help:      "population covariance of two numeric fields over the group",
		ParseArgs: twoFieldParser(func() AggregatorState { return &covarianceState{} }),
	})
}

// --- correlation --------------------------------------------------------------

// correlationState composes a covariance and two variances internally,
// updated with (f1, f2), (f1, f1), and (f2, f2) respectively, matching the
// reference implementation's decomposition.
type correlationState struct {
	cov  covarianceState
	var1 varianceState
	var2 varianceState
}

func (s *correlationState) Init() {
	s.cov.Init()
	s.var1.Init()
	s.var2.Init()
}

func (s *correlationState) Update(args []FieldValue) {
	x, y := args[0].Num, args[1].Num
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}

	s.cov.Update(args)
	s.var1.Update(args[:1])
	s.var2.Update(args[1:])
}

func (s *correlationState) Dump() string {
	cov, ok := s.cov.value()
	if !ok {
		return "null"
	}

	v1, _ := s.var1.value()
	v2, _ := s.var2.value()

	denom := math.Sqrt(v1 * v2)
	if denom == 0 {
		return "null"
	}

	return formatFloat(cov / denom)
}

func registerCorrelation() {
	register(&Kind{
		Name:      "correlation",
		ShortName: "corr",
		Help:      "Pearson correlation coefficient of two numeric fields over the group",
		ParseArgs: twoFieldParser(func() AggregatorState { return &correlationState{} }),
	})
}

// --- concatenate --------------------------------------------------------------

type concatenateState struct {
	delim string
	parts []string
}

func newConcatenateState(delim string) func() AggregatorState {
	return func() AggregatorState {
		return &concatenateState{delim: delim, parts: make([]string, 0, concatenateInitialCapacity)}
	}
}

const concatenateInitialCapacity = 16 // mirrors the reference implementation's 128-byte initial buffer at a handful of bytes per field.

func (s *concatenateState) Init() { s.parts = s.parts[:0] }

func (s *concatenateState) Update(args []FieldValue) {
	if !args[0].Set {
		return
	}

	s.parts = append(s.parts, args[0].Text)
}

func (s *concatenateState) Dump() string {
	var sb strings.Builder

	sb.WriteByte('"')

	for i, p := range s.parts {
		if i > 0 {
			appendEscaped(&sb, s.delim)
		}

		appendEscaped(&sb, p)
	}

	sb.WriteByte('"')

	return sb.String()
}

func registerConcatenate() {
	register(&Kind{
		Name:      "concatenate",
		ShortName: "cat",
		Help:      "join a textual field's observed values with a delimiter",
		ParseArgs: func(args string) (func() AggregatorState, []string, error) {
			parts, err := splitArgs(args, 2)
			if err != nil {
				return nil, nil, err
			}

			delim, field := parts[0], parts[1]

			return newConcatenateState(delim), []string{field}, nil
		},
	})
}

// --- mode --------------------------------------------------------------------

type modeState struct {
	counts map[string]int
	order  []string
}

const modeInitialCapacity = 32

func newModeState() AggregatorState {
	return &modeState{counts: make(map[string]int, modeInitialCapacity), order: make([]string, 0, modeInitialCapacity)}
}

func (s *modeState) Init() {
	s.counts = make(map[string]int, modeInitialCapacity)
	s.order = s.order[:0]
}

func (s *modeState) Update(args []FieldValue) {
	if !args[0].Set {
		return
	}

	v := args[0].Text
	if _, ok := s.counts[v]; !ok {
		s.order = append(s.order, v)
	}

	s.counts[v]++
}

func (s *modeState) Dump() string {
	if len(s.order) == 0 {
		return "null"
	}

	best := s.order[0]
	bestCount := s.counts[best]

	for _, v := range s.order[1:] {
		if c := s.counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}

	var sb strings.Builder

	appendQuoted(&sb, best)

	return sb.String()
}

func registerMode() {
	register(&Kind{
		Name:      "mode",
		ShortName: "mode",
		Help:      "most frequently observed value of a textual field; ties keep the first-seen value",
		ParseArgs: singleFieldParser(newModeState),
	})
}

// --- percentile ----------------------------------------------------------------

type percentileState struct {
	p      float64
	values []float64
}

const percentileInitialCapacity = 64

func newPercentileState(p float64) func() AggregatorState {
	return func() AggregatorState {
		return &percentileState{p: p, values: make([]float64, 0, percentileInitialCapacity)}
	}
}

func (s *percentileState) Init() { s.values = s.values[:0] }

func (s *percentileState) Update(args []FieldValue) {
	if v := args[0].Num; !math.IsNaN(v) {
		s.values = append(s.values, v)
	}
}

func (s *percentileState) Dump() string {
	n := len(s.values)
	if n == 0 {
		return "null"
	}

	sort.Float64s(s.values)

	idx := int(s.p / 100 * float64(n))
	if idx >= n {
		idx = n - 1
	}

	if idx < 0 {
		idx = 0
	}

	return formatFloat(s.values[idx])
}

func registerPercentile() {
	register(&Kind{
		Name:      "percentile",
		ShortName: "pct",
		Help:      "value at the p-th percentile (0-100) of a numeric field, computed at dump time",
		ParseArgs: func(args string) (func() AggregatorState, []string, error) {
			parts, err := splitArgs(args, 2)
			if err != nil {
				return nil, nil, err
			}

			p, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: invalid percentile %q: %w", ErrInvalidAggregatorSpec, parts[0], err)
			}

			if p < 0 || p > 100 {
				return nil, nil, fmt.Errorf("%w: percentile %v out of range [0,100]", ErrInvalidAggregatorSpec, p)
			}

			return newPercentileState(p), []string{parts[1]}, nil
		},
	})
}
