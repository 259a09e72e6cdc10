package matching

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// Policy decides the plaintext matching amount of every project given the
// pool total and the per-project encrypted sqrt-sums.
type Policy interface {
	Allocate(rid *types.RoundID, pool uint64,
		sqrtSums map[common.Address]encint.Amount) (map[common.Address]uint64, error)
}

// EqualSplitPolicy divides the pool equally across all projects, capped
// per-project at CapBps basis points of the pool total. The sqrt-sums are
// stored for auditability but do not weight the split: without encrypted
// division there is no way to normalize by the total inside the encrypted
// domain. Weighted splitting needs the oracle round-trip of
// QuadraticPolicy.
type EqualSplitPolicy struct {
	CapBps uint64
}

// Allocate implements Policy.
func (p *EqualSplitPolicy) Allocate(_ *types.RoundID, pool uint64,
	sqrtSums map[common.Address]encint.Amount,
) (map[common.Address]uint64, error) {
	if p.CapBps > types.BpsDenominator {
		return nil, encint.ErrInvalidBps
	}
	n := uint64(len(sqrtSums))
	if n == 0 {
		return nil, ErrNoProjects
	}
	share := pool / n
	maxShare := pool * p.CapBps / types.BpsDenominator
	if share > maxShare {
		share = maxShare
	}
	out := make(map[common.Address]uint64, n)
	for project := range sqrtSums {
		out[project] = share
	}
	return out, nil
}

// RevealerProvider resolves the controlled decryption capability of a round.
// Only policies that genuinely need plaintext weights consume it.
type RevealerProvider interface {
	RevealerFor(rid *types.RoundID) (encint.Revealer, error)
}

// QuadraticPolicy weights each project's share by the square of its revealed
// sqrt-sum: share_i = pool * s_i^2 / sum_j s_j^2. It is the
// decrypt-then-distribute alternative to EqualSplitPolicy and is the only
// matching path that reveals aggregate values; it trades the privacy of the
// per-project sqrt-sums for a true quadratic split.
type QuadraticPolicy struct {
	Revealers RevealerProvider
}

// Allocate implements Policy.
func (p *QuadraticPolicy) Allocate(rid *types.RoundID, pool uint64,
	sqrtSums map[common.Address]encint.Amount,
) (map[common.Address]uint64, error) {
	if len(sqrtSums) == 0 {
		return nil, ErrNoProjects
	}
	revealer, err := p.Revealers.RevealerFor(rid)
	if err != nil {
		return nil, err
	}
	weights := make(map[common.Address]uint64, len(sqrtSums))
	var totalWeight uint64
	for project, handle := range sqrtSums {
		s, err := revealer.Reveal(handle)
		if err != nil {
			return nil, fmt.Errorf("reveal sqrt-sum of project %s: %w", project.Hex(), err)
		}
		w := s * s
		weights[project] = w
		totalWeight += w
	}
	out := make(map[common.Address]uint64, len(sqrtSums))
	if totalWeight == 0 {
		// every sqrt-sum is zero, nothing to weight by
		for project := range sqrtSums {
			out[project] = 0
		}
		return out, nil
	}
	for project, w := range weights {
		out[project] = mulDiv(pool, w, totalWeight)
	}
	return out, nil
}

// mulDiv computes a*b/c without overflowing the intermediate product.
func mulDiv(a, b, c uint64) uint64 {
	hi := a / c
	lo := a % c
	return hi*b + lo*b/c
}
