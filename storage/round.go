package storage

import (
	"fmt"

	"github.com/vocdoni/qf-z-sandbox/types"
)

// Round retrieves a round from the storage. It returns ErrNotFound if the
// round does not exist.
func (s *Storage) Round(rid *types.RoundID) (*types.Round, error) {
	r := &types.Round{}
	if err := s.getArtifact(roundPrefix, rid.Marshal(), r); err != nil {
		return nil, err
	}
	return r, nil
}

// SetRound stores a round into the storage.
func (s *Storage) SetRound(r *types.Round) error {
	if r == nil {
		return fmt.Errorf("nil round data")
	}
	return s.setArtifact(roundPrefix, r.ID.Marshal(), r)
}

// ListRounds returns the list of round IDs stored in the storage.
func (s *Storage) ListRounds() ([]*types.RoundID, error) {
	keys, err := s.listArtifactKeys(roundPrefix)
	if err != nil {
		return nil, err
	}
	rids := make([]*types.RoundID, 0, len(keys))
	for _, k := range keys {
		rid := &types.RoundID{}
		if err := rid.Unmarshal(k); err != nil {
			return nil, fmt.Errorf("malformed round key %x: %w", k, err)
		}
		rids = append(rids, rid)
	}
	return rids, nil
}
