// Package ledger implements the encrypted donation ledger: per-round,
// per-project, per-donor contribution bookkeeping over encrypted amounts.
// All numeric operations go through the encint capability; the ledger never
// observes a plaintext amount, so it cannot branch on one. Donation caps are
// enforced with encrypted comparison and select, and aggregates are updated
// with the derived increment so repeated donations beyond the cap contribute
// nothing further.
package ledger

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

var (
	// ErrRoundNotFound is returned when the round does not exist.
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundNotActive is returned when the round is outside its donation
	// window or already finalized.
	ErrRoundNotActive = errors.New("round is not accepting donations")
	// ErrProjectNotVerified is returned when the project registry does not
	// know the project as active and verified.
	ErrProjectNotVerified = errors.New("project is not active and verified")
	// ErrDonorNotEligible is returned when the anti-sybil verifier rejects
	// the donor.
	ErrDonorNotEligible = errors.New("donor is not eligible")
	// ErrReentrantCall is returned when a state-mutating entry point is
	// re-entered while a donation is being processed.
	ErrReentrantCall = errors.New("re-entrant call rejected")
	// ErrBatchUnsupported is returned for batch donations: aggregating
	// multiple encrypted inputs in a single call is unsupported by design.
	ErrBatchUnsupported = errors.New("batch donations are unsupported")
	// ErrExternalDependency wraps failures of the registry or the verifier.
	// The donation is aborted without partial state change.
	ErrExternalDependency = errors.New("external dependency failure")
)

// ProjectRegistry is the external collaborator that knows which projects
// exist and who owns them.
type ProjectRegistry interface {
	IsActiveAndVerified(project common.Address) (bool, error)
	OwnerOf(project common.Address) (common.Address, error)
}

// SybilVerifier is the external collaborator that decides donor
// eligibility.
type SybilVerifier interface {
	IsEligible(donor common.Address) (bool, error)
}

// SchemeProvider resolves the encrypted arithmetic scheme of a round.
type SchemeProvider interface {
	SchemeFor(rid *types.RoundID) (encint.Scheme, error)
}

// Ledger is the encrypted donation ledger of the funding engine. State
// mutations execute one at a time: a mutating call that arrives while
// another is in flight is rejected, not queued. Since the in-flight call may
// be blocked on an external collaborator, rejecting is the only way to also
// catch a collaborator calling back into the ledger.
type Ledger struct {
	stg      *storage.Storage
	schemes  SchemeProvider
	registry ProjectRegistry
	sybil    SybilVerifier

	busy   atomic.Bool
	events chan *types.DonationEvent
	now    func() time.Time
}

// New creates a donation ledger on top of the given storage, scheme
// provider and external collaborators.
func New(stg *storage.Storage, schemes SchemeProvider, registry ProjectRegistry, sybil SybilVerifier) *Ledger {
	return &Ledger{
		stg:      stg,
		schemes:  schemes,
		registry: registry,
		sybil:    sybil,
		events:   make(chan *types.DonationEvent, 64),
		now:      time.Now,
	}
}

// Events returns the donation event stream. Events carry round, project,
// donor and timestamp, never an amount.
func (l *Ledger) Events() <-chan *types.DonationEvent {
	return l.events
}

// acquire takes the re-entrancy guard before any external collaborator is
// called; release must be deferred right after a successful acquire.
func (l *Ledger) acquire() error {
	if !l.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (l *Ledger) release() {
	l.busy.Store(false)
}

// RecordDonation records a single encrypted donation from donor to project
// within the round. A zero-value donation is accepted and has no observable
// effect; detecting it would require decrypting the amount.
func (l *Ledger) RecordDonation(rid *types.RoundID, donor, project common.Address, amount encint.Amount) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()

	round, err := l.stg.Round(rid)
	if err != nil {
		return ErrRoundNotFound
	}
	if !round.AcceptsDonations(l.now()) {
		return fmt.Errorf("%w: state is %s", ErrRoundNotActive, round.State(l.now()))
	}
	scheme, err := l.schemes.SchemeFor(rid)
	if err != nil {
		return err
	}

	// external collaborator checks, before any state is touched
	verified, err := l.registry.IsActiveAndVerified(project)
	if err != nil {
		return fmt.Errorf("%w: registry: %v", ErrExternalDependency, err)
	}
	if !verified {
		return ErrProjectNotVerified
	}
	eligible, err := l.sybil.IsEligible(donor)
	if err != nil {
		return fmt.Errorf("%w: verifier: %v", ErrExternalDependency, err)
	}
	if !eligible {
		return ErrDonorNotEligible
	}

	// existing cumulative contribution, or encrypted zero on first donation
	firstForProject := false
	existing, err := l.stg.Contribution(rid, donor, project)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		firstForProject = true
		zero, err := scheme.Const(0)
		if err != nil {
			return err
		}
		existing = &types.Contribution{
			RoundID: rid.Marshal(),
			Donor:   donor,
			Project: project,
			Amount:  types.HexBytes(zero),
		}
	}

	// newTotal = min(existing + amount, maxDonation)
	newTotal, err := encint.SafeAdd(scheme, encint.Amount(existing.Amount), amount)
	if err != nil {
		return err
	}
	capC, err := scheme.Const(round.MaxDonation)
	if err != nil {
		return err
	}
	capped, err := encint.Min(scheme, newTotal, capC)
	if err != nil {
		return err
	}
	// the increment actually applied to the aggregate; donations beyond the
	// cap contribute nothing further
	increment, err := encint.SafeSub(scheme, capped, encint.Amount(existing.Amount))
	if err != nil {
		return err
	}

	aggregate, err := l.stg.ProjectAggregate(rid, project)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		zero, err := scheme.Const(0)
		if err != nil {
			return err
		}
		aggregate = &types.ProjectAggregate{
			RoundID: rid.Marshal(),
			Project: project,
			Total:   types.HexBytes(zero),
		}
	}
	newAggTotal, err := encint.SafeAdd(scheme, encint.Amount(aggregate.Total), increment)
	if err != nil {
		return err
	}
	aggregate.Total = types.HexBytes(newAggTotal)

	roundDirty := false
	if firstForProject {
		aggregate.DonorCount++
		if !l.stg.HasProject(rid, project) {
			if err := l.stg.SetProject(rid, project); err != nil {
				return err
			}
			round.ProjectCount++
			roundDirty = true
		}
	}
	if !l.stg.HasParticipation(rid, donor) {
		if err := l.stg.SetParticipation(rid, donor); err != nil {
			return err
		}
		round.DonorCount++
		roundDirty = true
	}

	existing.Amount = types.HexBytes(capped)
	existing.UpdatedAt = l.now()
	if err := l.stg.SetContribution(existing); err != nil {
		return err
	}
	if err := l.stg.SetProjectAggregate(aggregate); err != nil {
		return err
	}
	if roundDirty {
		if err := l.stg.SetRound(round); err != nil {
			return err
		}
	}

	l.emit(&types.DonationEvent{
		RoundID:   rid.Marshal(),
		Donor:     donor,
		Project:   project,
		Timestamp: l.now(),
	})
	return nil
}

// RecordDonationBatch rejects batch donations outright. Aggregating several
// encrypted inputs in one call is a hard limitation of the capability, not a
// missing feature.
func (l *Ledger) RecordDonationBatch(*types.RoundID, common.Address, []common.Address, []encint.Amount) error {
	return ErrBatchUnsupported
}

// Contribution returns the encrypted cumulative contribution handle of a
// donor to a project. Access control for decrypting the handle is a concern
// of the external capability, not of the ledger.
func (l *Ledger) Contribution(rid *types.RoundID, donor, project common.Address) (encint.Amount, error) {
	c, err := l.stg.Contribution(rid, donor, project)
	if err != nil {
		return nil, err
	}
	return encint.Amount(c.Amount), nil
}

// ProjectTotal returns the encrypted donation total handle of a project.
func (l *Ledger) ProjectTotal(rid *types.RoundID, project common.Address) (encint.Amount, error) {
	a, err := l.stg.ProjectAggregate(rid, project)
	if err != nil {
		return nil, err
	}
	return encint.Amount(a.Total), nil
}

func (l *Ledger) emit(e *types.DonationEvent) {
	if err := l.stg.PushDonationEvent(e); err != nil {
		log.Warnw("failed to persist donation event", "round", e.RoundID.String(), "error", err.Error())
	}
	select {
	case l.events <- e:
	default:
		log.Debugw("donation event channel full, dropping", "round", e.RoundID.String())
	}
}
