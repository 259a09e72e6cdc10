package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/crypto/ethereum"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// DonationPayload returns the bytes a donor signs to authorize a donation.
func DonationPayload(rid *types.RoundID, d *Donation) []byte {
	return []byte(fmt.Sprintf("%s%s%s", rid.String(), d.Project.Hex(), d.Amount.String()))
}

// newDonation records an encrypted donation
// POST /rounds/{roundId}/donations
func (a *API) newDonation(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	d := &Donation{}
	if err := json.NewDecoder(r.Body).Decode(d); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if len(d.Amount) == 0 {
		ErrMalformedBody.With("missing encrypted amount").Write(w)
		return
	}

	// Extract the donor address from the signature
	donor, err := ethereum.AddrFromSignature(DonationPayload(rid, d), d.Signature)
	if err != nil {
		ErrInvalidSignature.Withf("could not extract address from signature: %v", err).Write(w)
		return
	}

	if err := a.ledger.RecordDonation(rid, donor, d.Project, encint.Amount(d.Amount)); err != nil {
		fromDomainError(err).Write(w)
		return
	}
	log.Infow("donation recorded",
		"roundId", rid.String(), "donor", donor.Hex(), "project", d.Project.Hex())
	httpWriteOK(w)
}

// newDonationBatch always rejects: the capability cannot aggregate several
// encrypted inputs in a single call
// POST /rounds/{roundId}/donations/batch
func (a *API) newDonationBatch(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	b := &DonationBatch{}
	if err := json.NewDecoder(r.Body).Decode(b); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	err = a.ledger.RecordDonationBatch(rid, common.Address{}, nil, nil)
	fromDomainError(err).Write(w)
}

// contribution returns the encrypted cumulative contribution of a donor to a
// project
// GET /rounds/{roundId}/contributions/{donor}/{project}
func (a *API) contribution(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	donor, err := addressFromRequest(r, DonorURLParam)
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	project, err := addressFromRequest(r, ProjectURLParam)
	if err != nil {
		ErrMalformedAddress.WithErr(err).Write(w)
		return
	}
	amount, err := a.ledger.Contribution(rid, donor, project)
	if err != nil {
		ErrResourceNotFound.With("no contribution found").Write(w)
		return
	}
	httpWriteJSON(w, &ContributionResponse{
		RoundID: rid.Marshal(),
		Donor:   donor,
		Project: project,
		Amount:  types.HexBytes(amount),
	})
}

// donationEvents returns the donation events of a round. Events carry no
// amounts, encrypted or otherwise.
// GET /rounds/{roundId}/events
func (a *API) donationEvents(w http.ResponseWriter, r *http.Request) {
	rid, err := roundIDFromRequest(r)
	if err != nil {
		ErrMalformedRoundID.WithErr(err).Write(w)
		return
	}
	events, err := a.storage.DonationEvents(rid)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, events)
}
