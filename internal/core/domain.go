package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit_card"
	Investment AccountType = "investment"
	Cash       AccountType = "cash"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	ExpenseTag TagType = "expense"
	IncomeTag  TagType = "income"
	BothTag    TagType = "both"
)

const (
	Monthly BudgetPeriod = "monthly"
	Weekly  BudgetPeriod = "weekly"
	Yearly  BudgetPeriod = "yearly"
)

type (
	AccountType     string
	TransactionType string
	TagType         string
	BudgetPeriod    string

	// Account is a user-owned money container. InitialBalance is signed
	// and denominated in the account's own currency.
	Account struct {
		ID             int64
		Name           string
		Bank           string
		Type           AccountType
		Currency       string
		InitialBalance Money
		Active         bool
	}

	// Transaction amounts are unsigned and denominated in the currency
	// of the source account. DestinationID is set only for transfers.
	// CreatedAt breaks ties between transactions on the same day.
	Transaction struct {
		ID            int64
		Description   string
		Amount        Money
		Type          TransactionType
		AccountID     int64
		DestinationID *int64
		TagID         *int64
		Date          Date
		Notes         string
		CreatedAt     time.Time
	}

	// Tag is a category node. A nil ParentID marks a root. Tags form a
	// forest; the data model does not hard-limit depth.
	Tag struct {
		ID       int64
		Name     string
		ParentID *int64
		Color    string
		Icon     string
		Type     TagType
		Active   bool
	}

	// Budget tracks recurring spend against a tag (and its descendants).
	// Amount is the per-period amount; StartDate/EndDate bound the
	// recurrence, not the evaluation window.
	Budget struct {
		ID        int64
		Name      string
		Amount    Money
		TagID     int64
		Period    BudgetPeriod
		StartDate Date
		EndDate   Date
		Active    bool
	}

	// TransactionFilter selects transactions for listing and reports.
	TransactionFilter struct {
		AccountID *int64
		TagID     *int64
		From      *Date
		To        *Date
	}
)

var (
	// ErrNotFound marks a lookup for an entity that does not exist.
	// Repositories wrap it so callers can map it to a 404.
	ErrNotFound = errors.New("not found")

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidTxType      = errors.New("invalid transaction type")
	ErrInvalidTagType     = errors.New("invalid tag type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrMissingDestination = errors.New("transfer requires a destination account")
	ErrSameDestination    = errors.New("transfer destination must differ from source")
	ErrUnexpectedDest     = errors.New("destination account is only valid for transfers")
	ErrSelfParent         = errors.New("tag cannot be its own parent")
	ErrTagCycle           = errors.New("tag hierarchy contains a cycle")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrMissingAccount     = errors.New("missing source account")
	ErrMissingBudgetTag   = errors.New("missing budget tag")
	ErrInvalidDateRange   = errors.New("end date must not precede start date")
)

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, CreditCard, Investment, Cash:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (t TagType) Valid() bool {
	switch t {
	case ExpenseTag, IncomeTag, BothTag:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	switch p {
	case Monthly, Weekly, Yearly:
		return true
	}
	return false
}

// ValidCurrency reports whether s looks like an ISO 4217 code (three
// upper-case letters, e.g. BRL, USD, EUR).
func ValidCurrency(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if !ValidCurrency(a.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidTxType
	}
	if t.AccountID == 0 {
		return ErrMissingAccount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	switch t.Type {
	case Transfer:
		if t.DestinationID == nil {
			return ErrMissingDestination
		}
		if *t.DestinationID == t.AccountID {
			return ErrSameDestination
		}
	default:
		if t.DestinationID != nil {
			return ErrUnexpectedDest
		}
	}
	return nil
}

func (t Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Type.Valid() {
		return ErrInvalidTagType
	}
	if t.ParentID != nil && t.ID != 0 && *t.ParentID == t.ID {
		return ErrSelfParent
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if b.TagID == 0 {
		return ErrMissingBudgetTag
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if err := b.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := b.EndDate.Validate(); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if b.EndDate.Before(b.StartDate.Time) {
		return ErrInvalidDateRange
	}
	return nil
}

// Validate rejects inverted date ranges; open ends are allowed.
func (f TransactionFilter) Validate() error {
	if f.From != nil && f.To != nil && f.To.Before(f.From.Time) {
		return fmt.Errorf("filter: %w", ErrInvalidDateRange)
	}
	return nil
}
