package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carteira/internal/core"
	"carteira/internal/fx"
	ratesmem "carteira/internal/rates/memory"
	"carteira/internal/services"
	"carteira/internal/storage/memory"

	"github.com/shopspring/decimal"
)

func newTestServer(t *testing.T) (*Server, *memory.Repository, *ratesmem.Source) {
	t.Helper()
	repo := memory.NewRepository()
	source := ratesmem.NewSource()
	conv := fx.NewService(nil, ratesmem.NewStore(), source)

	s := NewServer(Options{
		Addr:         ":0",
		Repo:         repo,
		Transactions: services.NewTransactionService(repo, nil),
		Reports:      services.NewReportService(repo, conv, "BRL"),
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s, repo, source
}

func doJSON(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestAccountLifecycle(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/accounts", accountRequest{
		Name: "Nubank", Type: "checking", Currency: "BRL", InitialBalanceCents: 50000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[accountResponse](t, rec)
	if created.ID == 0 || !created.Active {
		t.Errorf("created account = %+v, want id set and active", created)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/accounts", nil)
	list := decodeBody[[]accountResponse](t, rec)
	if len(list) != 1 {
		t.Fatalf("list accounts = %d entries, want 1", len(list))
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/accounts/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("archive account = %d", rec.Code)
	}

	// Archived accounts drop out of the default listing but stay
	// resolvable by id.
	rec = doJSON(t, s, http.MethodGet, "/api/accounts", nil)
	if list := decodeBody[[]accountResponse](t, rec); len(list) != 0 {
		t.Errorf("list after archive = %d entries, want 0", len(list))
	}
	rec = doJSON(t, s, http.MethodGet, "/api/accounts?include_inactive=true", nil)
	if list := decodeBody[[]accountResponse](t, rec); len(list) != 1 {
		t.Errorf("list with inactive = %d entries, want 1", len(list))
	}
	rec = doJSON(t, s, http.MethodGet, "/api/accounts/1", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get archived account = %d, want 200", rec.Code)
	}
}

func TestCreateAccountRejectsInvalid(t *testing.T) {
	s, _, _ := newTestServer(t)

	tests := []struct {
		name string
		req  accountRequest
	}{
		{"empty name", accountRequest{Type: "checking", Currency: "BRL"}},
		{"bad type", accountRequest{Name: "X", Type: "offshore", Currency: "BRL"}},
		{"bad currency", accountRequest{Name: "X", Type: "checking", Currency: "reais"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/accounts", tt.req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("create = %d, want 422 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTransactionEndpoints(t *testing.T) {
	s, repo, _ := newTestServer(t)
	acct, _ := repo.CreateAccount(context.Background(), core.Account{
		Name: "Nubank", Type: core.Checking, Currency: "BRL",
	})

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", transactionRequest{
		Description: "groceries", AmountCents: 12500, Type: "expense",
		AccountID: acct.ID, Date: "2024-06-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[transactionResponse](t, rec)
	if created.Date != "2024-06-10" || created.AmountCents != 12500 {
		t.Errorf("created = %+v", created)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/transactions", transactionRequest{
		Description: "bad", AmountCents: 100, Type: "expense",
		AccountID: 999, Date: "2024-06-10",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("create with missing account = %d, want 404", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/transactions", transactionRequest{
		Description: "zero", AmountCents: 0, Type: "expense",
		AccountID: acct.ID, Date: "2024-06-10",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("create with zero amount = %d, want 422", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?account_id=1", nil)
	list := decodeBody[[]transactionResponse](t, rec)
	if len(list) != 1 {
		t.Errorf("list = %d entries, want 1", len(list))
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestStatementEndpointReportsBalances(t *testing.T) {
	s, repo, _ := newTestServer(t)
	acct, _ := repo.CreateAccount(context.Background(), core.Account{
		Name: "Nubank", Type: core.Checking, Currency: "BRL",
		InitialBalance: core.Money{Cents: 100000},
	})
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		Description: "rent", Amount: core.Money{Cents: 30000}, Type: core.Expense,
		AccountID: acct.ID, Date: core.NewDate(2024, 6, 5),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/accounts/1/statement?from=2024-06-01&to=2024-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement = %d, body %s", rec.Code, rec.Body.String())
	}
	stmt := decodeBody[statementResponse](t, rec)
	if stmt.Currency != "BRL" || len(stmt.Entries) != 1 {
		t.Fatalf("statement = %+v", stmt)
	}
	if stmt.Entries[0].BalanceCents == nil || *stmt.Entries[0].BalanceCents != 70000 {
		t.Errorf("balance = %v, want 70000", stmt.Entries[0].BalanceCents)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/accounts/1/statement?from=2024-06-30&to=2024-06-01", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted window = %d, want 400", rec.Code)
	}
}

func TestNetWorthEndpointCachesAndInvalidates(t *testing.T) {
	s, repo, source := newTestServer(t)
	source.SetRate("USD", "BRL", decimal.RequireFromString("5.00"))

	acct, _ := repo.CreateAccount(context.Background(), core.Account{
		Name: "Wise", Type: core.Checking, Currency: "USD",
		InitialBalance: core.Money{Cents: 10000},
	})

	rec := doJSON(t, s, http.MethodGet, "/api/networth", nil)
	nw := decodeBody[netWorthResponse](t, rec)
	if nw.TotalCents != 50000 {
		t.Fatalf("net worth = %d, want 50000", nw.TotalCents)
	}

	// A write through the API must invalidate the cached total.
	rec = doJSON(t, s, http.MethodPost, "/api/transactions", transactionRequest{
		Description: "salary", AmountCents: 10000, Type: "income",
		AccountID: acct.ID, Date: core.Today().String(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/networth", nil)
	nw = decodeBody[netWorthResponse](t, rec)
	if nw.TotalCents != 100000 {
		t.Errorf("net worth after income = %d, want 100000", nw.TotalCents)
	}
}

func TestNetWorthSeriesValidation(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/networth/series?months=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("months=0 = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/networth/series?months=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("series = %d, body %s", rec.Code, rec.Body.String())
	}
	series := decodeBody[seriesResponse](t, rec)
	if len(series.Points) != 3 {
		t.Errorf("points = %d, want 3", len(series.Points))
	}
}

func TestBudgetReportEndpoint(t *testing.T) {
	s, repo, _ := newTestServer(t)
	ctx := context.Background()
	acct, _ := repo.CreateAccount(ctx, core.Account{Name: "Nubank", Type: core.Checking, Currency: "BRL"})
	food, _ := repo.CreateTag(ctx, core.Tag{Name: "Food", Type: core.ExpenseTag})
	_, err := repo.CreateBudget(ctx, core.Budget{
		Name: "Food", Amount: core.Money{Cents: 50000}, TagID: food.ID,
		Period: core.Monthly, StartDate: core.NewDate(2024, 6, 1), EndDate: core.NewDate(2024, 6, 30),
	})
	if err != nil {
		t.Fatalf("seed budget: %v", err)
	}
	_, err = repo.CreateTransaction(ctx, core.Transaction{
		Description: "market", Amount: core.Money{Cents: 20000}, Type: core.Expense,
		AccountID: acct.ID, TagID: &food.ID, Date: core.NewDate(2024, 6, 12),
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/budgets/report?from=2024-06-01&to=2024-06-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("budget report = %d, body %s", rec.Code, rec.Body.String())
	}
	report := decodeBody[budgetReportResponse](t, rec)
	if report.TotalSpentCents != 20000 {
		t.Errorf("total spent = %d, want 20000", report.TotalSpentCents)
	}
	if report.TotalBudgetedCents != 50000 {
		t.Errorf("total budgeted = %d, want 50000", report.TotalBudgetedCents)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts",
		bytes.NewBufferString(`{"name":"X","type":"checking","currency":"BRL","bogus":true}`))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown field = %d, want 400", rec.Code)
	}
}

func TestTransferDestinationRules(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, name := range []string{"Nubank", "Itau"} {
		rec := doJSON(t, s, http.MethodPost, "/api/accounts", accountRequest{
			Name: name, Type: "checking", Currency: "BRL", InitialBalanceCents: 10000,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create account %s = %d", name, rec.Code)
		}
	}

	self := int64(1)
	other := int64(2)
	cases := []struct {
		name string
		req  transactionRequest
	}{
		{"transfer to itself", transactionRequest{
			Description: "loop", AmountCents: 1000, Type: "transfer",
			AccountID: 1, DestinationID: &self, Date: "2024-06-01",
		}},
		{"income with destination", transactionRequest{
			Description: "salary", AmountCents: 1000, Type: "income",
			AccountID: 1, DestinationID: &other, Date: "2024-06-01",
		}},
		{"transfer without destination", transactionRequest{
			Description: "move", AmountCents: 1000, Type: "transfer",
			AccountID: 1, Date: "2024-06-01",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tc.req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("create = %d, body %s, want 422", rec.Code, rec.Body.String())
			}
			body := decodeBody[map[string]string](t, rec)
			if body["error"] == "" || body["error"] == "internal server error" {
				t.Errorf("error body = %q, want the validation message", body["error"])
			}
		})
	}
}

func TestTagReparentCycleRejected(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/tags", tagRequest{Name: "Food", Type: "expense"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create root tag = %d", rec.Code)
	}
	root := decodeBody[tagResponse](t, rec)

	rec = doJSON(t, s, http.MethodPost, "/api/tags", tagRequest{
		Name: "Restaurants", Type: "expense", ParentID: &root.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child tag = %d", rec.Code)
	}
	child := decodeBody[tagResponse](t, rec)

	// Re-parenting the root under its own child would close a loop.
	rec = doJSON(t, s, http.MethodPut, "/api/tags/1", tagRequest{
		Name: "Food", Type: "expense", ParentID: &child.ID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("re-parent under descendant = %d, body %s, want 422", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/tags/1", nil)
	got := decodeBody[tagResponse](t, rec)
	if got.ParentID != nil {
		t.Errorf("root tag parent = %d after rejected update, want none", *got.ParentID)
	}

	selfID := root.ID
	rec = doJSON(t, s, http.MethodPut, "/api/tags/1", tagRequest{
		Name: "Food", Type: "expense", ParentID: &selfID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("self-parent = %d, want 422", rec.Code)
	}
}
