package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vocdoni/qf-z-sandbox/types"
)

// Contribution retrieves the cumulative encrypted contribution of a donor to
// a project in a round. It returns ErrNotFound if the donor has never
// donated to that project in that round.
func (s *Storage) Contribution(rid *types.RoundID, donor, project common.Address) (*types.Contribution, error) {
	c := &types.Contribution{}
	if err := s.getArtifact(contributionPrefix, contributionKey(rid.Marshal(), donor, project), c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetContribution stores a contribution record.
func (s *Storage) SetContribution(c *types.Contribution) error {
	rid := &types.RoundID{}
	if err := rid.Unmarshal(c.RoundID); err != nil {
		return err
	}
	return s.setArtifact(contributionPrefix, contributionKey(c.RoundID, c.Donor, c.Project), c)
}

// ProjectAggregate retrieves the encrypted donation aggregate of a project
// in a round. It returns ErrNotFound if the project has received no
// donations in that round.
func (s *Storage) ProjectAggregate(rid *types.RoundID, project common.Address) (*types.ProjectAggregate, error) {
	a := &types.ProjectAggregate{}
	if err := s.getArtifact(aggregatePrefix, projectKey(rid.Marshal(), project), a); err != nil {
		return nil, err
	}
	return a, nil
}

// SetProjectAggregate stores a project aggregate record.
func (s *Storage) SetProjectAggregate(a *types.ProjectAggregate) error {
	return s.setArtifact(aggregatePrefix, projectKey(a.RoundID, a.Project), a)
}

// HasParticipation reports whether the donor has donated at least once in
// the round.
func (s *Storage) HasParticipation(rid *types.RoundID, donor common.Address) bool {
	return s.hasArtifact(participationPrefix, donorKey(rid.Marshal(), donor))
}

// SetParticipation records that the donor has donated in the round.
func (s *Storage) SetParticipation(rid *types.RoundID, donor common.Address) error {
	return s.setArtifact(participationPrefix, donorKey(rid.Marshal(), donor), true)
}

// ListParticipants returns the donors that have donated at least once in the
// round. It drives the square-root summation walk of the matching engine.
func (s *Storage) ListParticipants(rid *types.RoundID) ([]common.Address, error) {
	return s.listAddressSet(participationPrefix, rid)
}

// HasProject reports whether the project has received at least one donation
// in the round.
func (s *Storage) HasProject(rid *types.RoundID, project common.Address) bool {
	return s.hasArtifact(projectSetPrefix, projectKey(rid.Marshal(), project))
}

// SetProject registers the project in the round's project set.
func (s *Storage) SetProject(rid *types.RoundID, project common.Address) error {
	return s.setArtifact(projectSetPrefix, projectKey(rid.Marshal(), project), true)
}

// ListProjects returns the projects that have received at least one donation
// in the round.
func (s *Storage) ListProjects(rid *types.RoundID) ([]common.Address, error) {
	return s.listAddressSet(projectSetPrefix, rid)
}

// listAddressSet lists the address suffixes stored under a prefix for the
// given round.
func (s *Storage) listAddressSet(prefix []byte, rid *types.RoundID) ([]common.Address, error) {
	keys, err := s.listArtifactKeys(prefix)
	if err != nil {
		return nil, err
	}
	ridBytes := rid.Marshal()
	var addrs []common.Address
	for _, k := range keys {
		if len(k) != len(ridBytes)+common.AddressLength {
			continue
		}
		if string(k[:len(ridBytes)]) != string(ridBytes) {
			continue
		}
		addrs = append(addrs, common.BytesToAddress(k[len(ridBytes):]))
	}
	return addrs, nil
}
