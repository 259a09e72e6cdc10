// Package rounds implements the lifecycle of funding rounds. A round moves
// from pending through active and ended to finalized; the state is derived
// from wall-clock time and the finalized flag, never stored as an enum.
package rounds

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

var (
	// ErrRoundNotFound is returned when the round does not exist.
	ErrRoundNotFound = errors.New("round not found")
	// ErrStartInPast is returned when a round is created with a start time
	// that is not in the future.
	ErrStartInPast = errors.New("round start time must be in the future")
	// ErrInvalidWindow is returned when the end time does not come after the
	// start time.
	ErrInvalidWindow = errors.New("round end time must be after the start time")
	// ErrInvalidBounds is returned when the max donation bound does not
	// exceed the min donation bound.
	ErrInvalidBounds = errors.New("max donation must exceed min donation")
	// ErrRoundNotEnded is returned when matching or finalization is
	// attempted before the donation window has closed.
	ErrRoundNotEnded = errors.New("round has not ended")
	// ErrMatchingAlreadyDone is returned when matching is attempted a second
	// time after it completed.
	ErrMatchingAlreadyDone = errors.New("matching already computed")
	// ErrNotEnoughProjects is returned when the round has fewer distinct
	// projects than the configured minimum. The caller may retry, although
	// no new projects can appear once the round has ended.
	ErrNotEnoughProjects = errors.New("not enough projects in round")
	// ErrMatchingNotDone is returned when finalization is attempted before
	// matching has completed.
	ErrMatchingNotDone = errors.New("matching not computed yet")
	// ErrAlreadyFinalized is returned for any mutation of a finalized round.
	ErrAlreadyFinalized = errors.New("round is finalized")
	// ErrNotOrganizer is returned when finalization is attempted by anyone
	// other than the round organizer.
	ErrNotOrganizer = errors.New("caller is not the round organizer")
)

// KeyGenerator creates and persists the encryption key pair of a new round.
type KeyGenerator interface {
	GenerateKey(rid *types.RoundID) (*types.EncryptionKey, error)
}

// MatchingEngine computes the matching allocations of an ended round and
// returns the encrypted total sqrt-sum handle for auditability.
type MatchingEngine interface {
	Compute(rid *types.RoundID) (types.HexBytes, error)
}

// Manager drives funding rounds through their lifecycle. All state-mutating
// calls are serialized; the manager is the only component that writes Round
// records after creation.
type Manager struct {
	stg         *storage.Storage
	keys        KeyGenerator
	matcher     MatchingEngine
	chainID     uint32
	minProjects uint64

	mu  sync.Mutex
	now func() time.Time
}

// New creates a round manager. minProjects is the minimum number of distinct
// projects a round needs before matching can be computed.
func New(stg *storage.Storage, keys KeyGenerator, matcher MatchingEngine, chainID uint32, minProjects uint64) *Manager {
	if minProjects == 0 {
		minProjects = types.DefaultMinProjects
	}
	return &Manager{
		stg:         stg,
		keys:        keys,
		matcher:     matcher,
		chainID:     chainID,
		minProjects: minProjects,
		now:         time.Now,
	}
}

// CreateRound creates a new round in pending state owned by organizer. The
// round gets a fresh encryption key pair; donors encrypt their amounts
// against its public key.
func (m *Manager) CreateRound(organizer common.Address, name string,
	start, end time.Time, pool, minDonation, maxDonation uint64,
) (*types.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !start.After(now) {
		return nil, ErrStartInPast
	}
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	if maxDonation <= minDonation {
		return nil, ErrInvalidBounds
	}

	nonce, err := m.nextNonce()
	if err != nil {
		return nil, err
	}
	rid := &types.RoundID{
		Address: organizer,
		Nonce:   nonce,
		ChainID: m.chainID,
	}
	encKey, err := m.keys.GenerateKey(rid)
	if err != nil {
		return nil, err
	}
	round := &types.Round{
		ID:            *rid,
		Name:          name,
		Organizer:     organizer,
		StartTime:     start,
		EndTime:       end,
		MatchingPool:  pool,
		MinDonation:   minDonation,
		MaxDonation:   maxDonation,
		ClaimWindow:   types.DefaultClaimWindow,
		EncryptionKey: encKey,
	}
	if err := m.stg.SetRound(round); err != nil {
		return nil, err
	}
	log.Infow("round created",
		"id", rid.String(),
		"organizer", organizer.Hex(),
		"start", start.String(),
		"end", end.String(),
		"pool", pool)
	return round, nil
}

// TopUpMatchingPool increases the plaintext matching pool of a round. It is
// allowed at any time before finalization.
func (m *Manager) TopUpMatchingPool(rid *types.RoundID, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, err := m.stg.Round(rid)
	if err != nil {
		return ErrRoundNotFound
	}
	if round.Finalized {
		return ErrAlreadyFinalized
	}
	if round.MatchingPool+amount < round.MatchingPool {
		return fmt.Errorf("matching pool overflow")
	}
	round.MatchingPool += amount
	if err := m.stg.SetRound(round); err != nil {
		return err
	}
	log.Infow("matching pool topped up",
		"id", rid.String(), "amount", amount, "pool", round.MatchingPool)
	return nil
}

// ComputeMatching runs the matching engine over an ended round. It fails
// without state mutation when the round has fewer projects than the
// configured minimum, and cannot be invoked twice to completion.
func (m *Manager) ComputeMatching(rid *types.RoundID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, err := m.stg.Round(rid)
	if err != nil {
		return ErrRoundNotFound
	}
	if state := round.State(m.now()); state != types.RoundEnded {
		return fmt.Errorf("%w: state is %s", ErrRoundNotEnded, state)
	}
	if round.MatchingDone {
		return ErrMatchingAlreadyDone
	}
	if round.ProjectCount < m.minProjects {
		return fmt.Errorf("%w: %d of %d required",
			ErrNotEnoughProjects, round.ProjectCount, m.minProjects)
	}

	totalSqrtSum, err := m.matcher.Compute(rid)
	if err != nil {
		return err
	}
	round.MatchingDone = true
	round.TotalSqrtSum = totalSqrtSum
	if err := m.stg.SetRound(round); err != nil {
		return err
	}
	log.Infow("matching computed", "id", rid.String(), "projects", round.ProjectCount)
	return nil
}

// Finalize moves an ended and matched round to its terminal state. Only the
// round organizer may finalize. The claim window starts counting from this
// moment.
func (m *Manager) Finalize(rid *types.RoundID, caller common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, err := m.stg.Round(rid)
	if err != nil {
		return ErrRoundNotFound
	}
	if caller != round.Organizer {
		return ErrNotOrganizer
	}
	if round.Finalized {
		return ErrAlreadyFinalized
	}
	if state := round.State(m.now()); state != types.RoundEnded {
		return fmt.Errorf("%w: state is %s", ErrRoundNotEnded, state)
	}
	if !round.MatchingDone {
		return ErrMatchingNotDone
	}
	round.Finalized = true
	round.FinalizedAt = m.now()
	if err := m.stg.SetRound(round); err != nil {
		return err
	}
	log.Infow("round finalized", "id", rid.String(), "claimDeadline", round.ClaimDeadline().String())
	return nil
}

// Round returns a round by ID.
func (m *Manager) Round(rid *types.RoundID) (*types.Round, error) {
	round, err := m.stg.Round(rid)
	if err != nil {
		return nil, ErrRoundNotFound
	}
	return round, nil
}

// nextNonce returns a nonce that makes the new round ID unique. Rounds are
// never deleted, so the round count is monotonic.
func (m *Manager) nextNonce() (uint64, error) {
	rounds, err := m.stg.ListRounds()
	if err != nil {
		return 0, err
	}
	return uint64(len(rounds)), nil
}
