package http

import (
	"net/http"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.repo.ListAccounts(r.Context(), includeInactive(r.URL.Query()))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = accountToResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	account := req.toCore()
	if err := account.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	created, err := s.repo.CreateAccount(r.Context(), account)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, accountToResponse(created))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	account, err := s.repo.GetAccount(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToResponse(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	existing, err := s.repo.GetAccount(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	account := req.toCore()
	account.ID = id
	account.Active = existing.Active
	if err := account.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := s.repo.UpdateAccount(r.Context(), account); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, accountToResponse(account))
}

// handleArchiveAccount soft-deletes: the account drops out of listings
// and totals but its transactions stay resolvable.
func (s *Server) handleArchiveAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.repo.ArchiveAccount(r.Context(), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
