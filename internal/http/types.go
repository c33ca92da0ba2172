package http

import (
	"carteira/internal/core"
	"carteira/internal/ledger"
	"carteira/internal/services"
)

// Request and response shapes for the JSON API. Amounts travel as
// integer cents and dates as YYYY-MM-DD strings; conversion to core
// types happens at the boundary so handlers stay thin.

type accountRequest struct {
	Name                string `json:"name"`
	Bank                string `json:"bank"`
	Type                string `json:"type"`
	Currency            string `json:"currency"`
	InitialBalanceCents int64  `json:"initial_balance_cents"`
}

type accountResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Bank                string `json:"bank,omitempty"`
	Type                string `json:"type"`
	Currency            string `json:"currency"`
	InitialBalanceCents int64  `json:"initial_balance_cents"`
	Active              bool   `json:"active"`
}

func (r accountRequest) toCore() core.Account {
	return core.Account{
		Name:           r.Name,
		Bank:           r.Bank,
		Type:           core.AccountType(r.Type),
		Currency:       r.Currency,
		InitialBalance: core.Money{Cents: r.InitialBalanceCents},
	}
}

func accountToResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:                  a.ID,
		Name:                a.Name,
		Bank:                a.Bank,
		Type:                string(a.Type),
		Currency:            a.Currency,
		InitialBalanceCents: a.InitialBalance.Cents,
		Active:              a.Active,
	}
}

type transactionRequest struct {
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Type          string `json:"type"`
	AccountID     int64  `json:"account_id"`
	DestinationID *int64 `json:"destination_id,omitempty"`
	TagID         *int64 `json:"tag_id,omitempty"`
	Date          string `json:"date"`
	Notes         string `json:"notes,omitempty"`
}

type transactionResponse struct {
	ID            int64  `json:"id"`
	Description   string `json:"description"`
	AmountCents   int64  `json:"amount_cents"`
	Type          string `json:"type"`
	AccountID     int64  `json:"account_id"`
	DestinationID *int64 `json:"destination_id,omitempty"`
	TagID         *int64 `json:"tag_id,omitempty"`
	Date          string `json:"date"`
	Notes         string `json:"notes,omitempty"`
}

func (r transactionRequest) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	return core.Transaction{
		Description:   r.Description,
		Amount:        core.Money{Cents: r.AmountCents},
		Type:          core.TransactionType(r.Type),
		AccountID:     r.AccountID,
		DestinationID: r.DestinationID,
		TagID:         r.TagID,
		Date:          date,
		Notes:         r.Notes,
	}, nil
}

func transactionToResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Description:   t.Description,
		AmountCents:   t.Amount.Cents,
		Type:          string(t.Type),
		AccountID:     t.AccountID,
		DestinationID: t.DestinationID,
		TagID:         t.TagID,
		Date:          t.Date.String(),
		Notes:         t.Notes,
	}
}

type tagRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Color    string `json:"color,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Type     string `json:"type"`
}

type tagResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Color    string `json:"color,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Type     string `json:"type"`
	Active   bool   `json:"active"`
}

func (r tagRequest) toCore() core.Tag {
	return core.Tag{
		Name:     r.Name,
		ParentID: r.ParentID,
		Color:    r.Color,
		Icon:     r.Icon,
		Type:     core.TagType(r.Type),
	}
}

func tagToResponse(t core.Tag) tagResponse {
	return tagResponse{
		ID:       t.ID,
		Name:     t.Name,
		ParentID: t.ParentID,
		Color:    t.Color,
		Icon:     t.Icon,
		Type:     string(t.Type),
		Active:   t.Active,
	}
}

type budgetRequest struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	TagID       int64  `json:"tag_id"`
	Period      string `json:"period"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type budgetResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	TagID       int64  `json:"tag_id"`
	Period      string `json:"period"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Active      bool   `json:"active"`
}

func (r budgetRequest) toCore() (core.Budget, error) {
	start, err := core.ParseDate(r.StartDate)
	if err != nil {
		return core.Budget{}, core.ErrInvalidDate
	}
	end, err := core.ParseDate(r.EndDate)
	if err != nil {
		return core.Budget{}, core.ErrInvalidDate
	}
	return core.Budget{
		Name:      r.Name,
		Amount:    core.Money{Cents: r.AmountCents},
		TagID:     r.TagID,
		Period:    core.BudgetPeriod(r.Period),
		StartDate: start,
		EndDate:   end,
	}, nil
}

func budgetToResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:          b.ID,
		Name:        b.Name,
		AmountCents: b.Amount.Cents,
		TagID:       b.TagID,
		Period:      string(b.Period),
		StartDate:   b.StartDate.String(),
		EndDate:     b.EndDate.String(),
		Active:      b.Active,
	}
}

type statementEntryResponse struct {
	transactionResponse
	BalanceCents *int64 `json:"balance_cents,omitempty"`
}

type statementResponse struct {
	Entries  []statementEntryResponse `json:"entries"`
	Currency string                   `json:"currency"`
	Degraded bool                     `json:"degraded"`
}

func statementToResponse(s services.Statement) statementResponse {
	out := statementResponse{
		Entries:  make([]statementEntryResponse, len(s.Entries)),
		Currency: s.Currency,
		Degraded: s.Degraded,
	}
	for i, e := range s.Entries {
		entry := statementEntryResponse{transactionResponse: transactionToResponse(e.Transaction)}
		if e.Balance != nil {
			cents := e.Balance.Cents
			entry.BalanceCents = &cents
		}
		out.Entries[i] = entry
	}
	return out
}

type accountBalanceResponse struct {
	Account        accountResponse `json:"account"`
	BalanceCents   int64           `json:"balance_cents"`
	ConvertedCents int64           `json:"converted_cents"`
	Degraded       bool            `json:"degraded"`
}

type netWorthResponse struct {
	TotalCents int64                    `json:"total_cents"`
	Currency   string                   `json:"currency"`
	Accounts   []accountBalanceResponse `json:"accounts"`
	Degraded   bool                     `json:"degraded"`
}

func netWorthToResponse(r ledger.NetWorthResult) netWorthResponse {
	out := netWorthResponse{
		TotalCents: r.Total.Cents,
		Currency:   r.Currency,
		Accounts:   make([]accountBalanceResponse, len(r.Accounts)),
		Degraded:   r.Degraded,
	}
	for i, ab := range r.Accounts {
		out.Accounts[i] = accountBalanceResponse{
			Account:        accountToResponse(ab.Account),
			BalanceCents:   ab.Balance.Cents,
			ConvertedCents: ab.Converted.Cents,
			Degraded:       ab.Degraded,
		}
	}
	return out
}

type seriesPointResponse struct {
	Label      string `json:"label"`
	MonthEnd   string `json:"month_end"`
	TotalCents int64  `json:"total_cents"`
	Degraded   bool   `json:"degraded"`
}

type seriesResponse struct {
	Points   []seriesPointResponse `json:"points"`
	Currency string                `json:"currency"`
	Degraded bool                  `json:"degraded"`
}

func seriesToResponse(points []ledger.SeriesPoint, currency string, degraded bool) seriesResponse {
	out := seriesResponse{
		Points:   make([]seriesPointResponse, len(points)),
		Currency: currency,
		Degraded: degraded,
	}
	for i, p := range points {
		out.Points[i] = seriesPointResponse{
			Label:      p.Label,
			MonthEnd:   p.MonthEnd.String(),
			TotalCents: p.Total.Cents,
			Degraded:   p.Degraded,
		}
	}
	return out
}

type budgetStatusResponse struct {
	Budget         budgetResponse `json:"budget"`
	TagName        string         `json:"tag_name"`
	TagColor       string         `json:"tag_color,omitempty"`
	Periods        int            `json:"periods"`
	BudgetedCents  int64          `json:"budgeted_cents"`
	SpentCents     int64          `json:"spent_cents"`
	AvailableCents int64          `json:"available_cents"`
}

type budgetGroupResponse struct {
	RootTagID      *int64                 `json:"root_tag_id,omitempty"`
	RootName       string                 `json:"root_name"`
	RootColor      string                 `json:"root_color,omitempty"`
	Budgets        []budgetStatusResponse `json:"budgets"`
	BudgetedCents  int64                  `json:"budgeted_cents"`
	SpentCents     int64                  `json:"spent_cents"`
	AvailableCents int64                  `json:"available_cents"`
}

type budgetReportResponse struct {
	Groups              []budgetGroupResponse `json:"groups"`
	TotalBudgetedCents  int64                 `json:"total_budgeted_cents"`
	TotalSpentCents     int64                 `json:"total_spent_cents"`
	TotalAvailableCents int64                 `json:"total_available_cents"`
}

func budgetReportToResponse(r ledger.RollupReport) budgetReportResponse {
	out := budgetReportResponse{
		Groups:              make([]budgetGroupResponse, len(r.Groups)),
		TotalBudgetedCents:  r.TotalBudgeted.Cents,
		TotalSpentCents:     r.TotalSpent.Cents,
		TotalAvailableCents: r.TotalAvailable.Cents,
	}
	for i, g := range r.Groups {
		group := budgetGroupResponse{
			RootTagID:      g.RootTagID,
			RootName:       g.RootName,
			RootColor:      g.RootColor,
			Budgets:        make([]budgetStatusResponse, len(g.Budgets)),
			BudgetedCents:  g.Budgeted.Cents,
			SpentCents:     g.Spent.Cents,
			AvailableCents: g.Available.Cents,
		}
		for j, b := range g.Budgets {
			group.Budgets[j] = budgetStatusResponse{
				Budget:         budgetToResponse(b.Budget),
				TagName:        b.TagName,
				TagColor:       b.TagColor,
				Periods:        b.Periods,
				BudgetedCents:  b.Budgeted.Cents,
				SpentCents:     b.Spent.Cents,
				AvailableCents: b.Available.Cents,
			}
		}
		out.Groups[i] = group
	}
	return out
}
