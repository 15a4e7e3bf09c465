package aggregate

import "errors"

var (
	// ErrUnknownAggregator indicates an aggregator spec named a kind not in
	// the registry.
	ErrUnknownAggregator = errors.New("unknown aggregator kind")
	// ErrInvalidAggregatorSpec indicates an aggregator spec string could not
	// be parsed, or its kind rejected its arguments.
	ErrInvalidAggregatorSpec = errors.New("invalid aggregator spec")
	// ErrInvalidConfig indicates the driver configuration is incomplete or
	// self-contradictory (e.g. cubing with insufficient clump capacity).
	ErrInvalidConfig = errors.New("invalid collator configuration")
)
