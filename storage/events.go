package storage

import (
	"encoding/binary"

	"github.com/vocdoni/qf-z-sandbox/types"
)

// PushDonationEvent appends a donation event to the round's event log. The
// event carries no amount by construction.
func (s *Storage) PushDonationEvent(e *types.DonationEvent) error {
	seq, err := s.nextEventSeq(e.RoundID)
	if err != nil {
		return err
	}
	key := make([]byte, 0, len(e.RoundID)+8)
	key = append(key, e.RoundID...)
	key = binary.BigEndian.AppendUint64(key, seq)
	return s.setArtifact(eventPrefix, key, e)
}

// DonationEvents returns the donation events of a round in append order.
func (s *Storage) DonationEvents(rid *types.RoundID) ([]*types.DonationEvent, error) {
	keys, err := s.listArtifactKeys(eventPrefix)
	if err != nil {
		return nil, err
	}
	ridBytes := rid.Marshal()
	var events []*types.DonationEvent
	for _, k := range keys {
		if len(k) != len(ridBytes)+8 || string(k[:len(ridBytes)]) != string(ridBytes) {
			continue
		}
		e := &types.DonationEvent{}
		if err := s.getArtifact(eventPrefix, k, e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// nextEventSeq returns the next sequence number for the round's event log.
// Keys are iterated in lexicographic order, so the highest suffix is the
// last matching key.
func (s *Storage) nextEventSeq(roundID types.HexBytes) (uint64, error) {
	keys, err := s.listArtifactKeys(eventPrefix)
	if err != nil {
		return 0, err
	}
	var next uint64
	for _, k := range keys {
		if len(k) != len(roundID)+8 || string(k[:len(roundID)]) != string(roundID) {
			continue
		}
		seq := binary.BigEndian.Uint64(k[len(roundID):])
		if seq >= next {
			next = seq + 1
		}
	}
	return next, nil
}
