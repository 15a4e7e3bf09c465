// Package aggregate implements a streaming record collator: it groups JSON
// records by a composite key into "clumps" held in a bounded, LRU-evicted
// table, and accumulates per-group state across a configurable set of
// aggregators (count, sum, average, min, max, variance, covariance,
// correlation, concatenate, mode, percentile).
//
// Configure a [Config] with CLI flags (mirroring the [Config]/[Flags]/
// RegisterFlags/NewX pattern used elsewhere in this repository, e.g.
// package log and package profile), build a [Collator] with
// [Config.NewCollator], and call [Collator.Run] once per input source
// followed by [Collator.Flush] at end of stream.
package aggregate
