package http

import (
	"net/http"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.repo.ListBudgets(r.Context(), includeInactive(r.URL.Query()))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = budgetToResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	budget, err := req.toCore()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := budget.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if _, err := s.repo.GetTag(r.Context(), budget.TagID); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	created, err := s.repo.CreateBudget(r.Context(), budget)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, budgetToResponse(created))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	budget, err := s.repo.GetBudget(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetToResponse(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	existing, err := s.repo.GetBudget(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	budget, err := req.toCore()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	budget.ID = id
	budget.Active = existing.Active
	if err := budget.Validate(); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if _, err := s.repo.GetTag(r.Context(), budget.TagID); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := s.repo.UpdateBudget(r.Context(), budget); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, budgetToResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.repo.DeleteBudget(r.Context(), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
