package http

import (
	"net/http"
	"strconv"

	applog "carteira/internal/log"
)

func statementKey(prefix string, query map[string]string) string {
	key := prefix
	for _, part := range []string{"id", "from", "to"} {
		key += ":" + query[part]
	}
	return key
}

func (s *Server) handleAccountStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	window, err := parseWindow(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := statementKey("account", map[string]string{
		"id":   strconv.FormatInt(id, 10),
		"from": r.URL.Query().Get("from"),
		"to":   r.URL.Query().Get("to"),
	})
	if cached, ok := s.statementCache.Get(key); ok {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Statement cache hit", "key", key)
		writeJSON(w, http.StatusOK, statementToResponse(cached))
		return
	}

	stmt, err := s.reports.AccountStatement(r.Context(), id, window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.statementCache.Set(key, stmt)
	writeJSON(w, http.StatusOK, statementToResponse(stmt))
}

func (s *Server) handleCombinedStatement(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := statementKey("combined", map[string]string{
		"from": r.URL.Query().Get("from"),
		"to":   r.URL.Query().Get("to"),
	})
	if cached, ok := s.statementCache.Get(key); ok {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Statement cache hit", "key", key)
		writeJSON(w, http.StatusOK, statementToResponse(cached))
		return
	}

	stmt, err := s.reports.CombinedStatement(r.Context(), window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.statementCache.Set(key, stmt)
	writeJSON(w, http.StatusOK, statementToResponse(stmt))
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.netWorthCache.Get("networth"); ok {
		writeJSON(w, http.StatusOK, netWorthToResponse(cached))
		return
	}

	result, err := s.reports.NetWorth(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	// Degraded totals are never cached: the next request should retry
	// the conversion rather than pin a wrong number for the TTL.
	if !result.Degraded {
		s.netWorthCache.Set("networth", result)
	}
	writeJSON(w, http.StatusOK, netWorthToResponse(result))
}

func (s *Server) handleNetWorthSeries(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := "series:" + strconv.Itoa(months)
	if cached, ok := s.seriesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	points, degraded, err := s.reports.NetWorthSeries(r.Context(), months)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	resp := seriesToResponse(points, s.reports.ReferenceCurrency(), degraded)
	if !degraded {
		s.seriesCache.Set(key, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := statementKey("budgets", map[string]string{
		"from": r.URL.Query().Get("from"),
		"to":   r.URL.Query().Get("to"),
	})
	if cached, ok := s.budgetCache.Get(key); ok {
		writeJSON(w, http.StatusOK, budgetReportToResponse(cached))
		return
	}

	report, err := s.reports.BudgetReport(r.Context(), window)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	s.budgetCache.Set(key, report)
	writeJSON(w, http.StatusOK, budgetReportToResponse(report))
}
