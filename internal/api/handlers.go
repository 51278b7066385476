package api

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/types"
	"github.com/onedreamlabs/onedream-staking-indexer/pkg"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// force reads the optional ?force=true query flag.
func force(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("force"))
	return err == nil && v
}

func (s *Server) handleStaking(w http.ResponseWriter, r *http.Request) {
	data, err := s.backend.RefreshStaking(r.Context(), force(r))
	s.respond(w, r, data, err, types.DomainStaking, "")
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	data, err := s.backend.RefreshToken(r.Context(), force(r))
	s.respond(w, r, data, err, types.DomainToken, "")
}

func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	data, err := s.backend.RefreshVault(r.Context(), force(r))
	s.respond(w, r, data, err, types.DomainVault, "")
}

func (s *Server) handleUserStaking(w http.ResponseWriter, r *http.Request) {
	user, ok := pathAddress(w, r)
	if !ok {
		return
	}
	data, err := s.backend.RefreshUserStaking(r.Context(), user, force(r))
	s.respond(w, r, data, err, types.DomainUserStaking, user.Hex())
}

func (s *Server) handleReferrals(w http.ResponseWriter, r *http.Request) {
	user, ok := pathAddress(w, r)
	if !ok {
		return
	}
	data, err := s.backend.RefreshReferral(r.Context(), user, force(r))
	s.respond(w, r, data, err, types.DomainReferral, user.Hex())
}

func (s *Server) handleUserVault(w http.ResponseWriter, r *http.Request) {
	user, ok := pathAddress(w, r)
	if !ok {
		return
	}
	data, err := s.backend.RefreshVaultUser(r.Context(), user, force(r))
	s.respond(w, r, data, err, types.DomainVault, user.Hex())
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, Response{Data: s.backend.States()})
}

// handleRefresh forces a refresh of the domain in the path. Wallet scoped
// domains take the wallet from ?address=.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	domain, err := types.DomainFromString(chi.URLParam(r, "domain"))
	if err != nil {
		writeBadRequest(w, r, err)
		return
	}

	address := r.URL.Query().Get("address")
	if address != "" {
		user, err := pkg.ParseAddress(address)
		if err != nil {
			writeBadRequest(w, r, err)
			return
		}
		address = user.Hex()
	}

	data, err := s.backend.RefreshDomain(r.Context(), domain, address)
	s.respond(w, r, data, err, domain, address)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, data any, err error, domain types.Domain, address string) {
	state := s.backend.State(domain, address)
	if err != nil {
		writeError(w, r, err, state)
		return
	}
	writeData(w, r, data, state)
}

func pathAddress(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	user, err := pkg.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, r, err)
		return common.Address{}, false
	}
	return user, true
}
