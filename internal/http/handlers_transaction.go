package http

import (
	"net/http"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	txs, err := s.repo.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = transactionToResponse(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tx, err := req.toCore()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	created, err := s.transactions.Create(r.Context(), tx)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, transactionToResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tx, err := s.repo.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	tx, err := req.toCore()
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	tx.ID = id
	if err := s.transactions.Update(r.Context(), tx); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, transactionToResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
