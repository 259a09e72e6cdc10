package types

import "time"

const (
	// BpsDenominator is the basis-point denominator used for percentage
	// arithmetic over encrypted values and matching pool caps.
	BpsDenominator = uint64(10000)
	// DefaultClaimWindow is the period after round finalization during which
	// matching allocations can be claimed, unless the round overrides it.
	DefaultClaimWindow = 30 * 24 * time.Hour
	// DefaultMinProjects is the minimum number of distinct projects a round
	// needs before matching may run.
	DefaultMinProjects = 2
	// DefaultProjectCapBps is the default per-project cap on the matching
	// pool share, in basis points (20%).
	DefaultProjectCapBps = uint64(2000)
)
