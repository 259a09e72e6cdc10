//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// The initial list of errors were more or less grouped by topic, but the list grows with time in a random fashion.
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap (say, error code 4010, 4011 and 4013 exist, 4012 is missing) DON'T fill in the gap,
// that code was used in the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status,
// for example the fact that Code 4045 returns HTTP Status 404 Not Found is just a coincidence
//
// Do note that HTTPstatus 204 No Content implies the response body will be empty,
// so the Code and Message will actually be discarded, never sent to the client
var (
	ErrResourceNotFound    = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody       = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidSignature    = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid signature")}
	ErrMalformedRoundID    = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed round ID")}
	ErrRoundNotFound       = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("round not found")}
	ErrMalformedAddress    = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed address")}
	ErrInvalidRoundParams  = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid round parameters")}
	ErrRoundNotActive      = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("round is not accepting donations")}
	ErrProjectNotVerified  = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("project is not active and verified")}
	ErrDonorNotEligible    = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("donor is not eligible")}
	ErrBatchUnsupported    = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("batch donations are unsupported")}
	ErrRoundNotEnded       = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("round has not ended")}
	ErrNotEnoughProjects   = Error{Code: 40015, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("not enough projects in round")}
	ErrMatchingAlreadyDone = Error{Code: 40016, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("matching already computed")}
	ErrMatchingNotDone     = Error{Code: 40017, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("matching not computed yet")}
	ErrRoundFinalized      = Error{Code: 40018, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("round is finalized")}
	ErrNoAllocation        = Error{Code: 40019, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("no allocation for project")}
	ErrAlreadyClaimed      = Error{Code: 40020, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("allocation already claimed")}
	ErrClaimWindowClosed   = Error{Code: 40021, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("claim window closed")}
	ErrNotProjectOwner     = Error{Code: 40022, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("caller is not the project owner")}
	ErrRoundNotFinalized   = Error{Code: 40023, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("round is not finalized")}
	ErrNotRoundOrganizer   = Error{Code: 40024, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("caller is not the round organizer")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrEngineBusy                 = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("engine is busy, retry")}
	ErrExternalDependencyFailed   = Error{Code: 50004, HTTPstatus: http.StatusBadGateway, Err: fmt.Errorf("external dependency failure")}
)
