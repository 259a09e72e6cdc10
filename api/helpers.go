package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/types"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// httpWriteAccepted writes a 202 response with a JSON body, used for
// operations that complete asynchronously (e.g. a claim waiting on an oracle
// decryption).
func httpWriteAccepted(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	if _, err := w.Write(jdata); err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// roundIDFromRequest parses the round ID URL parameter.
func roundIDFromRequest(r *http.Request) (*types.RoundID, error) {
	raw := chi.URLParam(r, RoundURLParam)
	data, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not decode round ID: %w", err)
	}
	rid := new(types.RoundID)
	if err := rid.Unmarshal(data); err != nil {
		return nil, err
	}
	return rid, nil
}

// addressFromRequest parses an address URL parameter.
func addressFromRequest(r *http.Request, param string) (common.Address, error) {
	raw := chi.URLParam(r, param)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("not a hex address: %q", raw)
	}
	return common.HexToAddress(raw), nil
}
