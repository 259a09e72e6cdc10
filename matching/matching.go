// Package matching computes the matching allocations of an ended round. The
// per-project encrypted sqrt-sums are always computed and stored for
// auditability; the plaintext split of the pool is delegated to a Policy.
package matching

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// ErrNoProjects is returned when the round has no project with donations.
var ErrNoProjects = errors.New("round has no projects")

// SchemeProvider resolves the encrypted arithmetic scheme of a round.
type SchemeProvider interface {
	SchemeFor(rid *types.RoundID) (encint.Scheme, error)
}

// Engine computes matching allocations. It is the only component that
// creates MatchingAllocation records; the lifecycle manager guards it
// against running twice for the same round.
type Engine struct {
	stg     *storage.Storage
	schemes SchemeProvider
	policy  Policy
	sqrt    encint.SqrtStrategy
	seal    bool
}

// New creates a matching engine with the given pool split policy. A nil
// policy falls back to the equal split with the default per-project cap.
func New(stg *storage.Storage, schemes SchemeProvider, policy Policy) *Engine {
	if policy == nil {
		policy = &EqualSplitPolicy{CapBps: types.DefaultProjectCapBps}
	}
	return &Engine{
		stg:     stg,
		schemes: schemes,
		policy:  policy,
		sqrt:    encint.DefaultSqrt,
	}
}

// SealAllocations makes the engine store allocation amounts encrypted instead
// of plaintext. Sealed amounts stay hidden until claim time, when the
// settlement requests an oracle decryption of the claimed allocation.
func (e *Engine) SealAllocations(seal bool) {
	e.seal = seal
}

// Compute runs the matching algorithm over a round and stores one allocation
// per project. Nothing is written until the whole computation has succeeded.
// It returns the encrypted total sqrt-sum handle of the round.
func (e *Engine) Compute(rid *types.RoundID) (types.HexBytes, error) {
	scheme, err := e.schemes.SchemeFor(rid)
	if err != nil {
		return nil, err
	}
	round, err := e.stg.Round(rid)
	if err != nil {
		return nil, err
	}
	projects, err := e.stg.ListProjects(rid)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	donors, err := e.stg.ListParticipants(rid)
	if err != nil {
		return nil, err
	}

	zero, err := scheme.Const(0)
	if err != nil {
		return nil, err
	}

	// phase 1: per-project encrypted sqrt-sums, all in memory
	aggregates := make(map[common.Address]*types.ProjectAggregate, len(projects))
	sqrtSums := make(map[common.Address]encint.Amount, len(projects))
	totalSqrtSum := zero
	for _, project := range projects {
		agg, err := e.stg.ProjectAggregate(rid, project)
		if err != nil {
			return nil, fmt.Errorf("aggregate of project %s: %w", project.Hex(), err)
		}
		sqrtSum, err := e.projectSqrtSum(scheme, rid, project, donors, zero)
		if err != nil {
			return nil, err
		}
		agg.SqrtSum = types.HexBytes(sqrtSum)
		agg.HasMatching = true
		aggregates[project] = agg
		sqrtSums[project] = sqrtSum
		if totalSqrtSum, err = scheme.Add(totalSqrtSum, sqrtSum); err != nil {
			return nil, err
		}
	}

	// phase 2: plaintext pool split
	amounts, err := e.policy.Allocate(rid, round.MatchingPool, sqrtSums)
	if err != nil {
		return nil, err
	}

	// phase 3: apply
	for _, project := range projects {
		allocation := &types.MatchingAllocation{
			RoundID: rid.Marshal(),
			Project: project,
		}
		if e.seal {
			enc, err := scheme.Encrypt(amounts[project])
			if err != nil {
				return nil, err
			}
			allocation.EncAmount = types.HexBytes(enc)
		} else {
			allocation.Amount = amounts[project]
		}
		if err := e.stg.SetAllocation(allocation); err != nil {
			return nil, err
		}
		if err := e.stg.SetProjectAggregate(aggregates[project]); err != nil {
			return nil, err
		}
		log.Debugw("matching allocation stored",
			"round", rid.String(), "project", project.Hex(), "sealed", e.seal)
	}
	return types.HexBytes(totalSqrtSum), nil
}

// projectSqrtSum accumulates approxSqrt over every donor contribution to the
// project. Donors with a zero contribution are skipped through encrypted
// equality and select; the engine cannot branch on the amount itself.
func (e *Engine) projectSqrtSum(scheme encint.Scheme, rid *types.RoundID,
	project common.Address, donors []common.Address, zero encint.Amount,
) (encint.Amount, error) {
	sqrtSum := zero
	for _, donor := range donors {
		c, err := e.stg.Contribution(rid, donor, project)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		amount := encint.Amount(c.Amount)
		root, err := e.sqrt.Sqrt(scheme, amount)
		if err != nil {
			return nil, err
		}
		isZero, err := scheme.Eq(amount, zero)
		if err != nil {
			return nil, err
		}
		term, err := scheme.Select(isZero, zero, root)
		if err != nil {
			return nil, err
		}
		if sqrtSum, err = scheme.Add(sqrtSum, term); err != nil {
			return nil, err
		}
	}
	return sqrtSum, nil
}
