package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/services"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/rs/zerolog/log"
)

type Response struct {
	Data  any          `json:"data,omitempty"`
	State *types.State `json:"state,omitempty"`
	Error string       `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write response")
	}
}

func writeData(w http.ResponseWriter, r *http.Request, data any, state types.State) {
	writeJSON(w, r, http.StatusOK, Response{Data: data, State: &state})
}

// writeError maps a failed refresh to a status. The message is the user
// facing one kept in the domain state, not the underlying error.
func writeError(w http.ResponseWriter, r *http.Request, err error, state types.State) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, services.ErrContractNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrReferralScanPending):
		w.Header().Set("Retry-After", "30")
		status = http.StatusAccepted
	case errors.Is(err, services.ErrAddressRequired):
		writeBadRequest(w, r, err)
		return
	}

	msg := state.Error
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, r, status, Response{State: &state, Error: msg})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, r, http.StatusBadRequest, Response{Error: err.Error()})
}
