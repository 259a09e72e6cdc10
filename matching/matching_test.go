package matching

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/cleartext"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/schemes"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

func TestMain(m *testing.M) {
	log.Init("debug", "stderr", nil)
	m.Run()
}

var (
	donor1   = common.HexToAddress("0xaa00000000000000000000000000000000000001")
	donor2   = common.HexToAddress("0xaa00000000000000000000000000000000000002")
	project1 = common.HexToAddress("0xbb00000000000000000000000000000000000001")
	project2 = common.HexToAddress("0xbb00000000000000000000000000000000000002")
	project3 = common.HexToAddress("0xbb00000000000000000000000000000000000003")
)

type fixture struct {
	stg      *storage.Storage
	provider *schemes.Provider
	scheme   *cleartext.Scheme
	rid      *types.RoundID
}

func newFixture(t *testing.T, pool uint64) *fixture {
	c := qt.New(t)
	stg := storage.New(metadb.NewTest(t))
	provider, err := schemes.NewProvider(cleartext.SchemeType, stg)
	c.Assert(err, qt.IsNil)
	rid := &types.RoundID{
		Address: common.HexToAddress("0xcc00000000000000000000000000000000000001"),
		Nonce:   1,
		ChainID: 1,
	}
	now := time.Now()
	c.Assert(stg.SetRound(&types.Round{
		ID:           *rid,
		StartTime:    now.Add(-2 * time.Hour),
		EndTime:      now.Add(-time.Hour),
		MatchingPool: pool,
		MaxDonation:  100000,
	}), qt.IsNil)
	return &fixture{stg: stg, provider: provider, scheme: cleartext.New(), rid: rid}
}

// seed registers a contribution the way the donation ledger would have.
func (f *fixture) seed(c *qt.C, donor, project common.Address, amount uint64) {
	enc, err := f.scheme.Encrypt(amount)
	c.Assert(err, qt.IsNil)
	c.Assert(f.stg.SetContribution(&types.Contribution{
		RoundID: f.rid.Marshal(),
		Donor:   donor,
		Project: project,
		Amount:  types.HexBytes(enc),
	}), qt.IsNil)
	if !f.stg.HasProject(f.rid, project) {
		c.Assert(f.stg.SetProject(f.rid, project), qt.IsNil)
	}
	if !f.stg.HasParticipation(f.rid, donor) {
		c.Assert(f.stg.SetParticipation(f.rid, donor), qt.IsNil)
	}
	agg, err := f.stg.ProjectAggregate(f.rid, project)
	if err != nil {
		zero, _ := f.scheme.Const(0)
		agg = &types.ProjectAggregate{
			RoundID: f.rid.Marshal(),
			Project: project,
			Total:   types.HexBytes(zero),
		}
	}
	existing, _ := f.scheme.Reveal(encint.Amount(agg.Total))
	total, err := f.scheme.Encrypt(existing + amount)
	c.Assert(err, qt.IsNil)
	agg.Total = types.HexBytes(total)
	agg.DonorCount++
	c.Assert(f.stg.SetProjectAggregate(agg), qt.IsNil)
}

func (f *fixture) reveal(c *qt.C, handle types.HexBytes) uint64 {
	v, err := f.scheme.Reveal(encint.Amount(handle))
	c.Assert(err, qt.IsNil)
	return v
}

func TestComputeEqualSplitWithCap(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, 10000)
	f.seed(c, donor1, project1, 100)
	f.seed(c, donor1, project2, 200)
	f.seed(c, donor2, project2, 300)
	f.seed(c, donor2, project3, 0)

	engine := New(f.stg, f.provider, nil)
	totalSqrtSum, err := engine.Compute(f.rid)
	c.Assert(err, qt.IsNil)

	// halving sqrt: p1 -> 50, p2 -> 100+150, p3 -> 0
	agg1, err := f.stg.ProjectAggregate(f.rid, project1)
	c.Assert(err, qt.IsNil)
	c.Assert(f.reveal(c, agg1.SqrtSum), qt.Equals, uint64(50))
	c.Assert(agg1.HasMatching, qt.IsTrue)
	agg2, err := f.stg.ProjectAggregate(f.rid, project2)
	c.Assert(err, qt.IsNil)
	c.Assert(f.reveal(c, agg2.SqrtSum), qt.Equals, uint64(250))
	agg3, err := f.stg.ProjectAggregate(f.rid, project3)
	c.Assert(err, qt.IsNil)
	c.Assert(f.reveal(c, agg3.SqrtSum), qt.Equals, uint64(0))
	c.Assert(f.reveal(c, totalSqrtSum), qt.Equals, uint64(300))

	// equal split would give 3333 each; the 20% cap limits it to 2000
	allocations, err := f.stg.ListAllocations(f.rid)
	c.Assert(err, qt.IsNil)
	c.Assert(allocations, qt.HasLen, 3)
	for _, a := range allocations {
		c.Assert(a.Amount, qt.Equals, uint64(2000))
		c.Assert(a.Claimed, qt.IsFalse)
	}
}

func TestComputeEqualSplitUnderCap(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, 10000)
	f.seed(c, donor1, project1, 100)
	f.seed(c, donor1, project2, 100)

	// 50% cap: the plain equal share of 5000 fits
	engine := New(f.stg, f.provider, &EqualSplitPolicy{CapBps: 5000})
	_, err := engine.Compute(f.rid)
	c.Assert(err, qt.IsNil)

	allocations, err := f.stg.ListAllocations(f.rid)
	c.Assert(err, qt.IsNil)
	c.Assert(allocations, qt.HasLen, 2)
	for _, a := range allocations {
		c.Assert(a.Amount, qt.Equals, uint64(5000))
	}
}

func TestComputeSealedAllocations(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, 10000)
	f.seed(c, donor1, project1, 100)
	f.seed(c, donor2, project2, 100)

	engine := New(f.stg, f.provider, nil)
	engine.SealAllocations(true)
	_, err := engine.Compute(f.rid)
	c.Assert(err, qt.IsNil)

	allocations, err := f.stg.ListAllocations(f.rid)
	c.Assert(err, qt.IsNil)
	c.Assert(allocations, qt.HasLen, 2)
	for _, a := range allocations {
		c.Assert(a.Amount, qt.Equals, uint64(0))
		c.Assert(len(a.EncAmount) > 0, qt.IsTrue)
		c.Assert(f.reveal(c, a.EncAmount), qt.Equals, uint64(2000))
	}
}

func TestComputeNoProjects(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, 10000)
	engine := New(f.stg, f.provider, nil)
	_, err := engine.Compute(f.rid)
	c.Assert(err, qt.ErrorIs, ErrNoProjects)
	allocations, err := f.stg.ListAllocations(f.rid)
	c.Assert(err, qt.IsNil)
	c.Assert(allocations, qt.HasLen, 0)
}

func TestQuadraticPolicy(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, 1000)
	s1, err := f.scheme.Encrypt(1)
	c.Assert(err, qt.IsNil)
	s2, err := f.scheme.Encrypt(3)
	c.Assert(err, qt.IsNil)

	policy := &QuadraticPolicy{Revealers: f.provider}
	amounts, err := policy.Allocate(f.rid, 1000, map[common.Address]encint.Amount{
		project1: s1,
		project2: s2,
	})
	c.Assert(err, qt.IsNil)
	// weights 1 and 9 over a total of 10
	c.Assert(amounts[project1], qt.Equals, uint64(100))
	c.Assert(amounts[project2], qt.Equals, uint64(900))
}

func TestQuadraticPolicyAllZero(t *testing.T) {
	c := qt.New(t)
	f := newFixture(t, 1000)
	z, err := f.scheme.Encrypt(0)
	c.Assert(err, qt.IsNil)

	policy := &QuadraticPolicy{Revealers: f.provider}
	amounts, err := policy.Allocate(f.rid, 1000, map[common.Address]encint.Amount{project1: z})
	c.Assert(err, qt.IsNil)
	c.Assert(amounts[project1], qt.Equals, uint64(0))
}
