package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/ethereum"
	"github.com/vocdoni/qf-z-sandbox/settlement"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// ClaimPayload returns the bytes a project owner signs to authorize a claim.
func ClaimPayload(rid *types.RoundID, project, recipient common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s%s", rid.String(), project.Hex(), recipient.Hex()))
}

// allocations returns the matching allocations of a round
// GET /rounds/{roundId}/allocations
func (a *API) allocations(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	allocations, err := a.storage.ListAllocations(rid)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, allocations)
}

// claim pays out the matching allocation of a project
// POST /rounds/{roundId}/allocations/{project}/claim
func (a *API) claim(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	project, err := addressFromRequest(r, ProjectURLParam)
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	p := &Claim{}
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}

	// Extract the caller address from the signature
	caller, err := ethereum.AddrFromSignature(ClaimPayload(rid, project, p.Recipient), p.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}

	err = a.settlement.Claim(rid, project, p.Recipient, caller)
	if errors.Is(err, settlement.ErrDecryptionPending) {
		httpWriteAccepted(w, &ClaimPending{Status: "decryption-pending"})
		return
	}
	if err != nil {
		fromDomainError(err).Write(w)
		return
	}
	log.Infow("allocation claimed",
		"roundId", rid.String(), "project", project.Hex(), "recipient", p.Recipient.Hex())
	httpWriteOK(w)
}
