package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vocdoni/qf-z-sandbox/types"
)

// Allocation retrieves the matching allocation of a project in a round. It
// returns ErrNotFound if matching has not produced one.
func (s *Storage) Allocation(rid *types.RoundID, project common.Address) (*types.MatchingAllocation, error) {
	a := &types.MatchingAllocation{}
	if err := s.getArtifact(allocationPrefix, projectKey(rid.Marshal(), project), a); err != nil {
		return nil, err
	}
	return a, nil
}

// SetAllocation stores a matching allocation record.
func (s *Storage) SetAllocation(a *types.MatchingAllocation) error {
	return s.setArtifact(allocationPrefix, projectKey(a.RoundID, a.Project), a)
}

// ListAllocations returns the matching allocations of a round.
func (s *Storage) ListAllocations(rid *types.RoundID) ([]*types.MatchingAllocation, error) {
	projects, err := s.listAddressSet(allocationPrefix, rid)
	if err != nil {
		return nil, err
	}
	allocations := make([]*types.MatchingAllocation, 0, len(projects))
	for _, p := range projects {
		a, err := s.Allocation(rid, p)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, a)
	}
	return allocations, nil
}

// PendingDecryption is a decryption request in flight between the engine and
// the external oracle. Completion arrives through a separate callback, never
// inside the call that created the request.
type PendingDecryption struct {
	RequestID types.HexBytes `json:"requestId"           cbor:"0,keyasint,omitempty"`
	RoundID   types.HexBytes `json:"roundId"             cbor:"1,keyasint,omitempty"`
	Project   common.Address `json:"project"             cbor:"2,keyasint,omitempty"`
	Recipient common.Address `json:"recipient,omitempty" cbor:"3,keyasint,omitempty"`
	Handle    types.HexBytes `json:"handle"              cbor:"4,keyasint,omitempty"`
	Purpose   string         `json:"purpose"             cbor:"5,keyasint,omitempty"`
}

// DecryptionPurposeClaim marks a request created to pay out a sealed
// allocation amount.
const DecryptionPurposeClaim = "claim"

// PendingDecryption retrieves a pending decryption request by its ID.
func (s *Storage) PendingDecryption(requestID types.HexBytes) (*PendingDecryption, error) {
	p := &PendingDecryption{}
	if err := s.getArtifact(pendingPrefix, requestID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPendingDecryption stores a pending decryption request.
func (s *Storage) SetPendingDecryption(p *PendingDecryption) error {
	return s.setArtifact(pendingPrefix, p.RequestID, p)
}

// DeletePendingDecryption removes a pending decryption request once its
// callback has been processed.
func (s *Storage) DeletePendingDecryption(requestID types.HexBytes) error {
	return s.deleteArtifact(pendingPrefix, requestID)
}
