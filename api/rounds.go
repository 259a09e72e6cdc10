package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/ethereum"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// RoundCreationPayload returns the bytes an organizer signs to authorize a
// round creation request. It covers every round parameter, so a relay cannot
// alter any of them without invalidating the recovered organizer.
func RoundCreationPayload(p *NewRound) []byte {
	return []byte(fmt.Sprintf("%d%s%d%d%d%d%d",
		p.ChainID, p.Name, p.StartTime, p.EndTime,
		p.MatchingPool, p.MinDonation, p.MaxDonation))
}

// FinalizePayload returns the bytes the organizer signs to authorize the
// finalization of a round.
func FinalizePayload(rid *types.RoundID) []byte {
	return []byte(fmt.Sprintf("finalize%s", rid.String()))
}

// newRound creates a new funding round
// POST /rounds
func (a *API) newRound(w http.ResponseWriter, r *http.Request) {
	p := &NewRound{}
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if p.ChainID != a.chainID {
		ErrInvalidRoundParams.Withf("unexpected chain ID %d", p.ChainID).Write(w)
		return
	}

	// Extract the organizer address from the signature
	organizer, err := ethereum.AddrFromSignature(RoundCreationPayload(p), p.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}

	round, err := a.rounds.CreateRound(organizer, p.Name,
		time.Unix(p.StartTime, 0), time.Unix(p.EndTime, 0),
		p.MatchingPool, p.MinDonation, p.MaxDonation)
	if err != nil {
		fromDomainError(err).Write(w)
		return
	}

	log.Infow("new round", "roundId", round.ID.String(), "organizer", organizer.Hex())
	httpWriteJSON(w, &NewRoundResponse{
		RoundID:       round.ID.Marshal(),
		EncryptionKey: round.EncryptionKey,
	})
}

// round returns the info of a round together with its derived state
// GET /rounds/{roundId}
func (a *API) round(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	round, err := a.rounds.Round(rid)
	if err != nil {
		fromDomainError(err).Write(w)
		return
	}
	httpWriteJSON(w, &RoundResponse{
		Round: round,
		State: round.State(time.Now()).String(),
	})
}

// listRounds returns the IDs of all known rounds
// GET /rounds
func (a *API) listRounds(w http.ResponseWriter, _ *http.Request) {
	ids, err := a.storage.ListRounds()
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	list := &RoundList{Rounds: make([]types.HexBytes, 0, len(ids))}
	for _, id := range ids {
		list.Rounds = append(list.Rounds, id.Marshal())
	}
	httpWriteJSON(w, list)
}

// topUp increases the matching pool of a round
// POST /rounds/{roundId}/topup
func (a *API) topUp(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	p := &TopUp{}
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if err := a.rounds.TopUpMatchingPool(rid, p.Amount); err != nil {
		fromDomainError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// computeMatching runs the matching engine over an ended round
// POST /rounds/{roundId}/matching
func (a *API) computeMatching(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	if err := a.rounds.ComputeMatching(rid); err != nil {
		fromDomainError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// finalizeRound moves an ended and matched round to its terminal state. The
// request must be signed by the round organizer.
// POST /rounds/{roundId}/finalize
func (a *API) finalizeRound(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	p := &Finalize{}
	if err := json.NewDecoder(r.Body).Decode(p); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}

	// Extract the caller address from the signature
	caller, err := ethereum.AddrFromSignature(FinalizePayload(rid), p.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}

	if err := a.rounds.Finalize(rid, caller); err != nil {
		fromDomainError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// projectAggregate returns the aggregate of a project in a round
// GET /rounds/{roundId}/projects/{project}
func (a *API) projectAggregate(w http.ResponseWriter, r *http.Request) {
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
	aggregate, err := a.storage.ProjectAggregate(rid, project)
	if err != nil {
		ErrResourceNotFound.With("no aggregate for project").Write(w)
		return
	}
	httpWriteJSON(w, aggregate)
}
