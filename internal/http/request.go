package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"carteira/internal/core"
	"carteira/internal/ledger"
)

const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst, rejecting unknown
// fields and oversized payloads.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathID extracts the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseWindow reads optional from/to query parameters (YYYY-MM-DD).
func parseWindow(query url.Values) (ledger.Window, error) {
	var window ledger.Window
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.Window{}, fmt.Errorf("invalid from date %q", v)
		}
		window.From = &d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return ledger.Window{}, fmt.Errorf("invalid to date %q", v)
		}
		window.To = &d
	}
	if err := window.Validate(); err != nil {
		return ledger.Window{}, err
	}
	return window, nil
}

// parseTransactionFilter reads listing filters from query parameters.
func parseTransactionFilter(query url.Values) (core.TransactionFilter, error) {
	var f core.TransactionFilter
	if v := strings.TrimSpace(query.Get("account_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return core.TransactionFilter{}, fmt.Errorf("invalid account_id %q", v)
		}
		f.AccountID = &id
	}
	if v := strings.TrimSpace(query.Get("tag_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return core.TransactionFilter{}, fmt.Errorf("invalid tag_id %q", v)
		}
		f.TagID = &id
	}
	window, err := parseWindow(query)
	if err != nil {
		return core.TransactionFilter{}, err
	}
	f.From = window.From
	f.To = window.To
	return f, nil
}

// parseMonths reads the months query parameter, defaulting to 12.
func parseMonths(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("months"))
	if v == "" {
		return 12, nil
	}
	months, err := strconv.Atoi(v)
	if err != nil || months < 1 || months > 120 {
		return 0, fmt.Errorf("invalid months %q: must be between 1 and 120", v)
	}
	return months, nil
}

// includeInactive reads the include_inactive query flag.
func includeInactive(query url.Values) bool {
	v := strings.TrimSpace(query.Get("include_inactive"))
	return v == "true" || v == "1"
}
