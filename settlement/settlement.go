// Package settlement tracks matching allocation claims. A claim is one-shot:
// once an allocation is marked claimed it can never be claimed again, and the
// claim deadline closes the window for everyone. The actual token movement is
// delegated to an external custody collaborator; a failed transfer reverts
// the claim mark so the project owner can retry.
package settlement

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/ledger"
	"github.com/vocdoni/qf-z-sandbox/oracle"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

var (
	// ErrRoundNotFound is returned when the round does not exist.
	ErrRoundNotFound = errors.New("round not found")
	// ErrRoundNotFinalized is returned when a claim is attempted before the
	// round is finalized.
	ErrRoundNotFinalized = errors.New("round is not finalized")
	// ErrNoAllocation is returned when the project has no matching
	// allocation in the round.
	ErrNoAllocation = errors.New("no allocation for project")
	// ErrAlreadyClaimed is returned for a second claim of the same
	// allocation.
	ErrAlreadyClaimed = errors.New("allocation already claimed")
	// ErrClaimWindowClosed is returned when the claim deadline has passed.
	ErrClaimWindowClosed = errors.New("claim window closed")
	// ErrNotProjectOwner is returned when the caller is not the registered
	// owner of the project.
	ErrNotProjectOwner = errors.New("caller is not the project owner")
	// ErrDecryptionPending is returned when the allocation amount is still
	// encrypted: a decryption request has been submitted and the claim
	// completes once the oracle calls back.
	ErrDecryptionPending = errors.New("allocation decryption pending")
	// ErrReentrantCall is returned when a claim re-enters while another
	// claim is in flight.
	ErrReentrantCall = errors.New("re-entrant call rejected")
	// ErrTransferFailed wraps a custody transfer failure; the claim mark is
	// reverted so the owner can retry.
	ErrTransferFailed = errors.New("token transfer failed")
)

// TokenCustody is the external collaborator holding the matching pool funds.
type TokenCustody interface {
	Transfer(to common.Address, amount uint64) error
}

// Settlement processes claims of matching allocations. It is the only
// component that flips the claimed flag of an allocation.
type Settlement struct {
	stg      *storage.Storage
	registry ledger.ProjectRegistry
	custody  TokenCustody
	oracle   oracle.Oracle

	mu  sync.Mutex
	now func() time.Time
}

// New creates a settlement component and subscribes it to the oracle for
// decryption callbacks.
func New(stg *storage.Storage, registry ledger.ProjectRegistry, custody TokenCustody, orc oracle.Oracle) *Settlement {
	s := &Settlement{
		stg:      stg,
		registry: registry,
		custody:  custody,
		oracle:   orc,
		now:      time.Now,
	}
	orc.Subscribe(s.OnDecrypted)
	return s
}

// Claim pays out the matching allocation of a project to recipient. The
// caller must be the registered project owner. If the allocation amount is
// still encrypted, the claim submits a decryption request and returns
// ErrDecryptionPending; the payout happens when the oracle calls back.
//
// A claim that re-enters while another one holds the guard is rejected,
// not queued: a custody transfer must not be able to trigger a nested
// payout.
func (s *Settlement) Claim(rid *types.RoundID, project, recipient, caller common.Address) error {
	if !s.mu.TryLock() {
		return ErrReentrantCall
	}
	defer s.mu.Unlock()

	round, err := s.stg.Round(rid)
	if err != nil {
		return ErrRoundNotFound
	}
	if !round.Finalized {
		return ErrRoundNotFinalized
	}
	if s.now().After(round.ClaimDeadline()) {
		return ErrClaimWindowClosed
	}
	allocation, err := s.stg.Allocation(rid, project)
	if err != nil {
		return ErrNoAllocation
	}
	if allocation.Claimed {
		return ErrAlreadyClaimed
	}
	owner, err := s.registry.OwnerOf(project)
	if err != nil {
		return fmt.Errorf("%w: registry: %v", ledger.ErrExternalDependency, err)
	}
	if owner != caller {
		return ErrNotProjectOwner
	}

	if len(allocation.EncAmount) > 0 {
		// the amount is only available as a handle; never trust a caller
		// supplied plaintext, go through the oracle instead
		requestID, err := s.oracle.RequestDecryption(rid, encint.Amount(allocation.EncAmount))
		if err != nil {
			return err
		}
		if err := s.stg.SetPendingDecryption(&storage.PendingDecryption{
			RequestID: requestID,
			RoundID:   rid.Marshal(),
			Project:   project,
			Recipient: recipient,
			Handle:    allocation.EncAmount,
			Purpose:   storage.DecryptionPurposeClaim,
		}); err != nil {
			return err
		}
		log.Infow("claim awaiting decryption",
			"round", rid.String(), "project", project.Hex(), "request", requestID.String())
		return ErrDecryptionPending
	}
	return s.payout(round, allocation, recipient)
}

// payout marks the allocation claimed and moves the funds. A custody failure
// reverts the mark.
func (s *Settlement) payout(round *types.Round, allocation *types.MatchingAllocation, recipient common.Address) error {
	allocation.Claimed = true
	allocation.ClaimedAt = s.now()
	allocation.Recipient = recipient
	if err := s.stg.SetAllocation(allocation); err != nil {
		return err
	}
	if err := s.custody.Transfer(recipient, allocation.Amount); err != nil {
		allocation.Claimed = false
		allocation.ClaimedAt = time.Time{}
		allocation.Recipient = common.Address{}
		if rerr := s.stg.SetAllocation(allocation); rerr != nil {
			log.Errorw(rerr, "could not revert claim mark after failed transfer")
		}
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	log.Infow("allocation claimed",
		"round", allocation.RoundID.String(),
		"project", allocation.Project.Hex(),
		"recipient", recipient.Hex(),
		"amount", allocation.Amount)
	return nil
}

// OnDecrypted completes claims that were waiting on an oracle decryption. It
// is the oracle callback; unknown request IDs are ignored.
func (s *Settlement) OnDecrypted(requestID types.HexBytes, value uint64, oerr error) {
	// the callback runs on its own goroutine and may arrive while the claim
	// that created the request is still in flight; block until the guard is
	// free instead of rejecting
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.stg.PendingDecryption(requestID)
	if err != nil {
		log.Warnw("decryption callback for unknown request",
			"request", requestID.String())
		return
	}
	if oerr != nil {
		// leave the pending record so the owner can claim again
		log.Warnw("oracle decryption failed",
			"request", requestID.String(), "error", oerr.Error())
		return
	}
	rid := new(types.RoundID).SetBytes(pending.RoundID)
	round, err := s.stg.Round(rid)
	if err != nil {
		log.Warnw("decryption callback for unknown round", "round", pending.RoundID.String())
		return
	}
	allocation, err := s.stg.Allocation(rid, pending.Project)
	if err != nil || allocation.Claimed {
		return
	}
	allocation.Amount = value
	allocation.EncAmount = nil
	if err := s.stg.DeletePendingDecryption(requestID); err != nil {
		log.Warnw("could not delete pending decryption",
			"request", requestID.String(), "error", err.Error())
	}
	if err := s.payout(round, allocation, pending.Recipient); err != nil {
		log.Warnw("payout after decryption failed",
			"request", requestID.String(), "error", err.Error())
	}
}

// Allocation returns the allocation of a project in a round.
func (s *Settlement) Allocation(rid *types.RoundID, project common.Address) (*types.MatchingAllocation, error) {
	a, err := s.stg.Allocation(rid, project)
	if err != nil {
		return nil, ErrNoAllocation
	}
	return a, nil
}
