package api

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/vocdoni/qf-z-sandbox/types"
)

// NewRound is the request to create a funding round. The organizer address
// is recovered from the signature, which covers the chain ID, the name, the
// time window and the initial pool.
type NewRound struct {
	ChainID      uint32         `json:"chainId"`
	Name         string         `json:"name"`
	StartTime    int64          `json:"startTime"`
	EndTime      int64          `json:"endTime"`
	MatchingPool uint64         `json:"matchingPool"`
	MinDonation  uint64         `json:"minDonation"`
	MaxDonation  uint64         `json:"maxDonation"`
	Signature    types.HexBytes `json:"signature"`
}

// NewRoundResponse is the response to a round creation request.
type NewRoundResponse struct {
	RoundID       types.HexBytes       `json:"roundId"`
	EncryptionKey *types.EncryptionKey `json:"encryptionKey,omitempty"`
}

// RoundResponse is a round together with its derived lifecycle state.
type RoundResponse struct {
	*types.Round
	State string `json:"state"`
}

// RoundList is the response to a round listing request.
type RoundList struct {
	Rounds []types.HexBytes `json:"rounds"`
}

// TopUp is the request to increase the matching pool of a round.
type TopUp struct {
	Amount uint64 `json:"amount"`
}

// Finalize is the request to move an ended and matched round to its terminal
// state. The caller address is recovered from the signature, which covers the
// round ID, and must be the round organizer.
type Finalize struct {
	Signature types.HexBytes `json:"signature"`
}

// Donation is the request to record an encrypted donation. The donor address
// is recovered from the signature, which covers the round ID, the project
// and the encrypted amount handle.
type Donation struct {
	Project   common.Address `json:"project"`
	Amount    types.HexBytes `json:"amount"`
	Signature types.HexBytes `json:"signature"`
}

// DonationBatch is the request shape of the batch endpoint. The endpoint
// always rejects; the type exists so clients get a structured error instead
// of a parse failure.
type DonationBatch struct {
	Donations []Donation `json:"donations"`
}

// ContributionResponse carries the encrypted cumulative contribution handle
// of a donor to a project.
type ContributionResponse struct {
	RoundID types.HexBytes `json:"roundId"`
	Donor   common.Address `json:"donor"`
	Project common.Address `json:"project"`
	Amount  types.HexBytes `json:"amount"`
}

// Claim is the request to claim a matching allocation. The caller address is
// recovered from the signature, which covers the round ID, the project and
// the recipient.
type Claim struct {
	Recipient common.Address `json:"recipient"`
	Signature types.HexBytes `json:"signature"`
}

// ClaimPending is the response to a claim that is waiting on an oracle
// decryption of the allocation amount.
type ClaimPending struct {
	Status string `json:"status"`
}
