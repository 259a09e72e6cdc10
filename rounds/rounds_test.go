package rounds

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

func TestMain(m *testing.M) {
	log.Init("debug", "stderr", nil)
	m.Run()
}

type noopKeys struct{}

func (noopKeys) GenerateKey(*types.RoundID) (*types.EncryptionKey, error) { return nil, nil }

type testMatcher struct {
	calls int
	fail  error
}

func (m *testMatcher) Compute(*types.RoundID) (types.HexBytes, error) {
	m.calls++
	if m.fail != nil {
		return nil, m.fail
	}
	return types.HexBytes{0x01}, nil
}

var organizer = common.HexToAddress("0xcc00000000000000000000000000000000000001")

func newTestManager(t *testing.T) (*Manager, *testMatcher, *storage.Storage) {
	stg := storage.New(metadb.NewTest(t))
	matcher := &testMatcher{}
	return New(stg, noopKeys{}, matcher, 1, 2), matcher, stg
}

// createActive creates a round and moves the manager clock inside its
// donation window.
func createActive(c *qt.C, m *Manager) *types.Round {
	base := time.Now()
	m.now = func() time.Time { return base }
	round, err := m.CreateRound(organizer, "round",
		base.Add(time.Hour), base.Add(2*time.Hour), 10000, 1, 1000)
	c.Assert(err, qt.IsNil)
	m.now = func() time.Time { return base.Add(90 * time.Minute) }
	return round
}

func endRound(m *Manager, round *types.Round) {
	m.now = func() time.Time { return round.EndTime.Add(time.Minute) }
}

func TestCreateRoundValidation(t *testing.T) {
	c := qt.New(t)
	m, _, _ := newTestManager(t)
	now := time.Now()

	_, err := m.CreateRound(organizer, "r", now.Add(-time.Hour), now.Add(time.Hour), 0, 1, 100)
	c.Assert(err, qt.ErrorIs, ErrStartInPast)

	_, err = m.CreateRound(organizer, "r", now.Add(2*time.Hour), now.Add(time.Hour), 0, 1, 100)
	c.Assert(err, qt.ErrorIs, ErrInvalidWindow)

	_, err = m.CreateRound(organizer, "r", now.Add(time.Hour), now.Add(2*time.Hour), 0, 100, 100)
	c.Assert(err, qt.ErrorIs, ErrInvalidBounds)
}

func TestCreateRound(t *testing.T) {
	c := qt.New(t)
	m, _, stg := newTestManager(t)
	now := time.Now()

	round, err := m.CreateRound(organizer, "my round",
		now.Add(time.Hour), now.Add(2*time.Hour), 5000, 1, 1000)
	c.Assert(err, qt.IsNil)
	c.Assert(round.State(now), qt.Equals, types.RoundPending)
	c.Assert(round.ID.Address, qt.Equals, organizer)
	c.Assert(round.ClaimWindow, qt.Equals, types.DefaultClaimWindow)

	stored, err := stg.Round(&round.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Name, qt.Equals, "my round")

	// a second round gets a different nonce
	round2, err := m.CreateRound(organizer, "another",
		now.Add(time.Hour), now.Add(2*time.Hour), 0, 1, 1000)
	c.Assert(err, qt.IsNil)
	c.Assert(round2.ID.Nonce, qt.Not(qt.Equals), round.ID.Nonce)
}

func TestTopUpMatchingPool(t *testing.T) {
	c := qt.New(t)
	m, _, stg := newTestManager(t)
	round := createActive(c, m)

	c.Assert(m.TopUpMatchingPool(&round.ID, 2500), qt.IsNil)
	stored, err := stg.Round(&round.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.MatchingPool, qt.Equals, uint64(12500))

	// top-ups stay allowed after the round ends, until finalization
	endRound(m, round)
	c.Assert(m.TopUpMatchingPool(&round.ID, 100), qt.IsNil)

	stored.ProjectCount = 2
	c.Assert(stg.SetRound(stored), qt.IsNil)
	c.Assert(m.ComputeMatching(&round.ID), qt.IsNil)
	c.Assert(m.Finalize(&round.ID, organizer), qt.IsNil)
	c.Assert(m.TopUpMatchingPool(&round.ID, 100), qt.ErrorIs, ErrAlreadyFinalized)
}

func TestComputeMatching(t *testing.T) {
	c := qt.New(t)
	m, matcher, stg := newTestManager(t)
	round := createActive(c, m)

	// still active
	c.Assert(m.ComputeMatching(&round.ID), qt.ErrorIs, ErrRoundNotEnded)

	// ended but only one project
	endRound(m, round)
	round.ProjectCount = 1
	c.Assert(stg.SetRound(round), qt.IsNil)
	c.Assert(m.ComputeMatching(&round.ID), qt.ErrorIs, ErrNotEnoughProjects)
	c.Assert(matcher.calls, qt.Equals, 0)

	// a matcher failure leaves the round untouched and is retryable
	round.ProjectCount = 3
	c.Assert(stg.SetRound(round), qt.IsNil)
	matcher.fail = errors.New("engine exploded")
	c.Assert(m.ComputeMatching(&round.ID), qt.ErrorIs, matcher.fail)
	stored, err := stg.Round(&round.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.MatchingDone, qt.IsFalse)

	matcher.fail = nil
	c.Assert(m.ComputeMatching(&round.ID), qt.IsNil)
	stored, err = stg.Round(&round.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.MatchingDone, qt.IsTrue)
	c.Assert(stored.TotalSqrtSum, qt.DeepEquals, types.HexBytes{0x01})

	// idempotence guard: a second run is rejected and does not reach the
	// matcher again
	c.Assert(m.ComputeMatching(&round.ID), qt.ErrorIs, ErrMatchingAlreadyDone)
	c.Assert(matcher.calls, qt.Equals, 2)
}

func TestFinalize(t *testing.T) {
	c := qt.New(t)
	m, _, stg := newTestManager(t)
	round := createActive(c, m)

	// active rounds cannot be finalized
	c.Assert(m.Finalize(&round.ID, organizer), qt.ErrorIs, ErrRoundNotEnded)

	// ended but not matched
	endRound(m, round)
	c.Assert(m.Finalize(&round.ID, organizer), qt.ErrorIs, ErrMatchingNotDone)

	round.ProjectCount = 2
	c.Assert(stg.SetRound(round), qt.IsNil)
	c.Assert(m.ComputeMatching(&round.ID), qt.IsNil)

	// only the organizer may finalize
	stranger := common.HexToAddress("0xdd00000000000000000000000000000000000009")
	c.Assert(m.Finalize(&round.ID, stranger), qt.ErrorIs, ErrNotOrganizer)
	stored, err := stg.Round(&round.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.Finalized, qt.IsFalse)

	c.Assert(m.Finalize(&round.ID, organizer), qt.IsNil)

	stored, err = stg.Round(&round.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(stored.State(m.now()), qt.Equals, types.RoundFinalized)
	c.Assert(stored.FinalizedAt.IsZero(), qt.IsFalse)

	// terminal state
	c.Assert(m.Finalize(&round.ID, organizer), qt.ErrorIs, ErrAlreadyFinalized)
}

func TestStateDerivation(t *testing.T) {
	c := qt.New(t)
	now := time.Now()
	round := &types.Round{
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	}
	c.Assert(round.State(now), qt.Equals, types.RoundPending)
	c.Assert(round.State(now.Add(90*time.Minute)), qt.Equals, types.RoundActive)
	c.Assert(round.State(now.Add(3*time.Hour)), qt.Equals, types.RoundEnded)
	round.Finalized = true
	c.Assert(round.State(now.Add(3*time.Hour)), qt.Equals, types.RoundFinalized)
	// the finalized flag wins over the clock
	c.Assert(round.State(now), qt.Equals, types.RoundFinalized)
}
