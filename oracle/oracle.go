// Package oracle models the external decryption service. The engine never
// decrypts anything itself: it submits a handle, records pending state and
// gets the plaintext back later through a callback. The round-trip is always
// two-phase, a blocking wait inside a state-mutating call is not allowed.
package oracle

import (
	"errors"
	"sync"

	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/encint"
	"github.com/vocdoni/qf-z-sandbox/types"
	"github.com/vocdoni/qf-z-sandbox/util"
)

// ErrNoSubscriber is returned when a decryption is requested before any
// callback has been subscribed.
var ErrNoSubscriber = errors.New("no decryption callback subscribed")

// Callback receives the result of a decryption request.
type Callback func(requestID types.HexBytes, value uint64, err error)

// Oracle is the controlled decryption collaborator.
type Oracle interface {
	// RequestDecryption submits a handle for decryption and returns a
	// request ID immediately. The plaintext arrives later through the
	// subscribed callback.
	RequestDecryption(rid *types.RoundID, handle encint.Amount) (types.HexBytes, error)
	// Subscribe registers the callback that receives completed requests.
	Subscribe(cb Callback)
}

// RevealerProvider resolves the decryption capability of a round.
type RevealerProvider interface {
	RevealerFor(rid *types.RoundID) (encint.Revealer, error)
}

// Local is an in-process oracle backed by the round's own revealer. It keeps
// the two-phase shape of a remote oracle: the callback fires from a separate
// goroutine, never from inside RequestDecryption.
type Local struct {
	revealers RevealerProvider

	mu sync.Mutex
	cb Callback
}

// NewLocal creates an in-process oracle.
func NewLocal(revealers RevealerProvider) *Local {
	return &Local{revealers: revealers}
}

// Subscribe implements Oracle.
func (o *Local) Subscribe(cb Callback) {
	o.mu.Lock()
	o.cb = cb
	o.mu.Unlock()
}

// RequestDecryption implements Oracle.
func (o *Local) RequestDecryption(rid *types.RoundID, handle encint.Amount) (types.HexBytes, error) {
	o.mu.Lock()
	cb := o.cb
	o.mu.Unlock()
	if cb == nil {
		return nil, ErrNoSubscriber
	}
	requestID := types.HexBytes(util.RandomBytes(16))
	go func() {
		revealer, err := o.revealers.RevealerFor(rid)
		if err != nil {
			cb(requestID, 0, err)
			return
		}
		value, err := revealer.Reveal(handle)
		if err != nil {
			log.Warnw("decryption request failed",
				"request", requestID.String(), "error", err.Error())
			cb(requestID, 0, err)
			return
		}
		cb(requestID, value, nil)
	}()
	return requestID, nil
}
