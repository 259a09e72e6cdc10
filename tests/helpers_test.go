package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/arbo/memdb"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/api"
	"github.com/vocdoni/qf-z-sandbox/api/client"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/cleartext"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/schemes"
	"github.com/vocdoni/qf-z-sandbox/crypto/ethereum"
	"github.com/vocdoni/qf-z-sandbox/ledger"
	"github.com/vocdoni/qf-z-sandbox/matching"
	"github.com/vocdoni/qf-z-sandbox/oracle"
	"github.com/vocdoni/qf-z-sandbox/rounds"
	"github.com/vocdoni/qf-z-sandbox/service"
	"github.com/vocdoni/qf-z-sandbox/settlement"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
	"github.com/vocdoni/qf-z-sandbox/util"
)

const testChainID = uint32(1)

func init() {
	log.Init("debug", "stdout", nil)
}

// testRegistry maps projects to their owners. Unknown projects are not
// verified.
type testRegistry struct {
	owners map[common.Address]common.Address
}

func (r *testRegistry) IsActiveAndVerified(project common.Address) (bool, error) {
	_, ok := r.owners[project]
	return ok, nil
}

func (r *testRegistry) OwnerOf(project common.Address) (common.Address, error) {
	owner, ok := r.owners[project]
	if !ok {
		return common.Address{}, fmt.Errorf("unknown project %s", project.Hex())
	}
	return owner, nil
}

type testVerifier struct{}

func (v *testVerifier) IsEligible(common.Address) (bool, error) { return true, nil }

// testCustody accumulates payouts per recipient.
type testCustody struct {
	payouts map[common.Address]uint64
}

func (c *testCustody) Transfer(to common.Address, amount uint64) error {
	c.payouts[to] += amount
	return nil
}

// testService is a fully wired funding engine with its API listening on a
// random localhost port.
type testService struct {
	storage  *storage.Storage
	provider *schemes.Provider
	registry *testRegistry
	custody  *testCustody
	srv      *service.APIService
	cli      *client.HTTPclient
}

func newTestService(t *testing.T, ctx context.Context) *testService {
	c := qt.New(t)

	stg := storage.New(memdb.New())
	provider, err := schemes.NewProvider(cleartext.SchemeType, stg)
	c.Assert(err, qt.IsNil)

	registry := &testRegistry{owners: map[common.Address]common.Address{}}
	custody := &testCustody{payouts: map[common.Address]uint64{}}

	engine := matching.New(stg, provider, nil)
	manager := rounds.New(stg, provider, engine, testChainID, 2)
	ldg := ledger.New(stg, provider, registry, &testVerifier{})
	orc := oracle.NewLocal(provider)
	stl := settlement.New(stg, registry, custody, orc)

	port := util.RandomInt(40000, 60000)
	srv := service.NewAPI(stg, ldg, manager, stl, testChainID, "127.0.0.1", port)
	c.Assert(srv.Start(ctx), qt.IsNil)
	t.Cleanup(srv.Stop)

	// Wait for the HTTP server to start
	time.Sleep(500 * time.Millisecond)

	cli, err := client.New(fmt.Sprintf("http://127.0.0.1:%d", port))
	c.Assert(err, qt.IsNil)

	return &testService{
		storage:  stg,
		provider: provider,
		registry: registry,
		custody:  custody,
		srv:      srv,
		cli:      cli,
	}
}

// newTestSigner creates a fresh ethereum key pair.
func newTestSigner(c *qt.C) *ethereum.SignKeys {
	signer := ethereum.NewSignKeys()
	c.Assert(signer.Generate(), qt.IsNil)
	return signer
}

// signedRound builds a round creation request signed by the organizer.
func signedRound(c *qt.C, organizer *ethereum.SignKeys, name string,
	start, end int64, pool, minDonation, maxDonation uint64,
) *api.NewRound {
	p := &api.NewRound{
		ChainID:      testChainID,
		Name:         name,
		StartTime:    start,
		EndTime:      end,
		MatchingPool: pool,
		MinDonation:  minDonation,
		MaxDonation:  maxDonation,
	}
	signature, err := organizer.SignEthereum(api.RoundCreationPayload(p))
	c.Assert(err, qt.IsNil)
	p.Signature = signature
	return p
}

// signedDonation builds a donation request signed by the donor.
func signedDonation(c *qt.C, donor *ethereum.SignKeys, rid *types.RoundID,
	project common.Address, amount []byte,
) *api.Donation {
	d := &api.Donation{
		Project: project,
		Amount:  amount,
	}
	signature, err := donor.SignEthereum(api.DonationPayload(rid, d))
	c.Assert(err, qt.IsNil)
	d.Signature = signature
	return d
}

// signedFinalize builds a finalization request signed by the given key.
func signedFinalize(c *qt.C, signer *ethereum.SignKeys, rid *types.RoundID) *api.Finalize {
	signature, err := signer.SignEthereum(api.FinalizePayload(rid))
	c.Assert(err, qt.IsNil)
	return &api.Finalize{Signature: signature}
}

// signedClaim builds a claim request signed by the project owner.
func signedClaim(c *qt.C, owner *ethereum.SignKeys, rid *types.RoundID,
	project, recipient common.Address,
) *api.Claim {
	signature, err := owner.SignEthereum(api.ClaimPayload(rid, project, recipient))
	c.Assert(err, qt.IsNil)
	return &api.Claim{Recipient: recipient, Signature: signature}
}
