package types

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RoundState is the lifecycle state of a funding round. It is derived from
// wall-clock time and the round flags, never stored.
type RoundState uint8

const (
	// RoundPending means the round start time is still in the future.
	RoundPending RoundState = iota
	// RoundActive means the round is inside its donation window.
	RoundActive
	// RoundEnded means the donation window has closed but the round is not
	// finalized yet.
	RoundEnded
	// RoundFinalized is the terminal state of a round.
	RoundFinalized
)

// String returns a human readable representation of the round state.
func (s RoundState) String() string {
	switch s {
	case RoundPending:
		return "pending"
	case RoundActive:
		return "active"
	case RoundEnded:
		return "ended"
	case RoundFinalized:
		return "finalized"
	}
	return "unknown"
}

// EncryptionKey holds the public key donors use to encrypt their
// contribution amounts for a round.
type EncryptionKey struct {
	X *BigInt `json:"x" cbor:"0,keyasint,omitempty"`
	Y *BigInt `json:"y" cbor:"1,keyasint,omitempty"`
}

// Round is a time-boxed donation campaign with its own matching pool and
// donation limits. The matching pool total and the donation bounds are
// public plaintext; only individual contribution amounts are encrypted.
type Round struct {
	ID            RoundID        `json:"id"                      cbor:"0,keyasint,omitempty"`
	Name          string         `json:"name"                    cbor:"1,keyasint,omitempty"`
	Organizer     common.Address `json:"organizer"               cbor:"2,keyasint,omitempty"`
	StartTime     time.Time      `json:"startTime"               cbor:"3,keyasint,omitempty"`
	EndTime       time.Time      `json:"endTime"                 cbor:"4,keyasint,omitempty"`
	MatchingPool  uint64         `json:"matchingPool"            cbor:"5,keyasint,omitempty"`
	MinDonation   uint64         `json:"minDonation"             cbor:"6,keyasint,omitempty"`
	MaxDonation   uint64         `json:"maxDonation"             cbor:"7,keyasint,omitempty"`
	ClaimWindow   time.Duration  `json:"claimWindow"             cbor:"8,keyasint,omitempty"`
	EncryptionKey *EncryptionKey `json:"encryptionKey,omitempty" cbor:"9,keyasint,omitempty"`
	ProjectCount  uint64         `json:"projectCount"            cbor:"10,keyasint,omitempty"`
	DonorCount    uint64         `json:"donorCount"              cbor:"11,keyasint,omitempty"`
	MatchingDone  bool           `json:"matchingDone"            cbor:"12,keyasint,omitempty"`
	TotalSqrtSum  HexBytes       `json:"totalSqrtSum,omitempty"  cbor:"13,keyasint,omitempty"`
	Finalized     bool           `json:"finalized"               cbor:"14,keyasint,omitempty"`
	FinalizedAt   time.Time      `json:"finalizedAt,omitempty"   cbor:"15,keyasint,omitempty"`
}

// State derives the round lifecycle state at the given time.
func (r *Round) State(now time.Time) RoundState {
	if r.Finalized {
		return RoundFinalized
	}
	if now.Before(r.StartTime) {
		return RoundPending
	}
	if now.Before(r.EndTime) {
		return RoundActive
	}
	return RoundEnded
}

// AcceptsDonations reports whether the round is inside its donation window.
func (r *Round) AcceptsDonations(now time.Time) bool {
	return r.State(now) == RoundActive
}

// ClaimDeadline returns the time after which matching allocations can no
// longer be claimed. It is only meaningful once the round is finalized.
func (r *Round) ClaimDeadline() time.Time {
	return r.FinalizedAt.Add(r.ClaimWindow)
}

func (r *Round) String() string {
	data, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(data)
}

// Contribution is the encrypted cumulative amount one donor has given one
// project within a round. The amount handle is opaque; it is clamped to the
// round's max donation bound on every update.
type Contribution struct {
	RoundID   HexBytes       `json:"roundId"   cbor:"0,keyasint,omitempty"`
	Donor     common.Address `json:"donor"     cbor:"1,keyasint,omitempty"`
	Project   common.Address `json:"project"   cbor:"2,keyasint,omitempty"`
	Amount    HexBytes       `json:"amount"    cbor:"3,keyasint,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt" cbor:"4,keyasint,omitempty"`
}

// ProjectAggregate is the encrypted running total of all donations to a
// project in a round, together with the plaintext donor count.
type ProjectAggregate struct {
	RoundID     HexBytes       `json:"roundId"           cbor:"0,keyasint,omitempty"`
	Project     common.Address `json:"project"           cbor:"1,keyasint,omitempty"`
	Total       HexBytes       `json:"total"             cbor:"2,keyasint,omitempty"`
	DonorCount  uint64         `json:"donorCount"        cbor:"3,keyasint,omitempty"`
	SqrtSum     HexBytes       `json:"sqrtSum,omitempty" cbor:"4,keyasint,omitempty"`
	HasMatching bool           `json:"hasMatching"       cbor:"5,keyasint,omitempty"`
}

// MatchingAllocation is the matching amount owed to a project after a round
// has been matched. With the equal-split policy the amount is plaintext;
// with the quadratic policy only the encrypted handle is available until an
// oracle decryption completes.
type MatchingAllocation struct {
	RoundID   HexBytes       `json:"roundId"             cbor:"0,keyasint,omitempty"`
	Project   common.Address `json:"project"             cbor:"1,keyasint,omitempty"`
	Amount    uint64         `json:"amount"              cbor:"2,keyasint,omitempty"`
	EncAmount HexBytes       `json:"encAmount,omitempty" cbor:"3,keyasint,omitempty"`
	Claimed   bool           `json:"claimed"             cbor:"4,keyasint,omitempty"`
	ClaimedAt time.Time      `json:"claimedAt,omitempty" cbor:"5,keyasint,omitempty"`
	Recipient common.Address `json:"recipient,omitempty" cbor:"6,keyasint,omitempty"`
}

// DonationEvent records that a donation happened. It deliberately carries no
// amount, encrypted or otherwise.
type DonationEvent struct {
	RoundID   HexBytes       `json:"roundId"   cbor:"0,keyasint,omitempty"`
	Donor     common.Address `json:"donor"     cbor:"1,keyasint,omitempty"`
	Project   common.Address `json:"project"   cbor:"2,keyasint,omitempty"`
	Timestamp time.Time      `json:"timestamp" cbor:"3,keyasint,omitempty"`
}
