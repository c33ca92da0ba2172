package ledger

import (
	"fmt"
	"sort"
	"time"

	"carteira/internal/core"
)

// BudgetStatus is one budget evaluated over a window, annotated with
// the display name and color of its own tag (not the group root).
type BudgetStatus struct {
	Budget    core.Budget
	TagName   string
	TagColor  string
	Periods   int
	Budgeted  core.Money // Amount x Periods
	Spent     core.Money
	Available core.Money
}

// BudgetGroup collects budgets under a common root tag. RootTagID is
// nil for the synthetic bucket of budgets whose tags cannot be
// resolved.
type BudgetGroup struct {
	RootTagID *int64
	RootName  string
	RootColor string
	Budgets   []BudgetStatus
	Budgeted  core.Money
	Spent     core.Money
	Available core.Money
}

// RollupReport is the full budget-vs-spend picture for a window.
// Totals sum across groups, so a budget with zero relevant
// transactions still counts toward budgeted, and nothing is counted
// twice.
type RollupReport struct {
	Groups         []BudgetGroup
	TotalBudgeted  core.Money
	TotalSpent     core.Money
	TotalAvailable core.Money
}

const ungroupedName = "Ungrouped"

// Rollup evaluates budgets against expense transactions over window,
// grouped by root tag. Spend for a budget covers its tag and every
// descendant. The computation is stateless and idempotent: inputs are
// never mutated and identical inputs yield identical output.
func Rollup(budgets []core.Budget, entries []Entry, tags []core.Tag, window Window) (RollupReport, error) {
	if err := window.Validate(); err != nil {
		return RollupReport{}, fmt.Errorf("budget rollup: %w", err)
	}

	idx := NewTagIndex(tags)

	// Expense totals per tag inside the window; computed once, then
	// summed over each budget's descendant set.
	spentByTag := make(map[int64]core.Money)
	for _, e := range entries {
		if e.Type != core.Expense || e.TagID == nil {
			continue
		}
		if !window.Contains(e.Date) {
			continue
		}
		spentByTag[*e.TagID] = spentByTag[*e.TagID].Add(e.Amount)
	}

	groups := make(map[int64]*BudgetGroup)
	var ungrouped *BudgetGroup
	var order []*BudgetGroup

	for _, b := range budgets {
		status := BudgetStatus{Budget: b}

		status.Periods = periodsFor(b, window)
		status.Budgeted = core.Money{Cents: b.Amount.Cents * int64(status.Periods)}

		tag, tagOK := idx.Get(b.TagID)
		if tagOK {
			status.TagName = tag.Name
			status.TagColor = tag.Color
			for _, id := range idx.Descendants(b.TagID) {
				status.Spent = status.Spent.Add(spentByTag[id])
			}
		}
		status.Available = status.Budgeted.Sub(status.Spent)

		var group *BudgetGroup
		if root, ok := idx.RootOf(b.TagID); ok {
			group = groups[root.ID]
			if group == nil {
				rootID := root.ID
				group = &BudgetGroup{RootTagID: &rootID, RootName: root.Name, RootColor: root.Color}
				groups[root.ID] = group
				order = append(order, group)
			}
		} else {
			// Missing or deleted tag: the budget lands in the synthetic
			// bucket instead of being silently dropped.
			if ungrouped == nil {
				ungrouped = &BudgetGroup{RootName: ungroupedName}
				order = append(order, ungrouped)
			}
			group = ungrouped
		}

		group.Budgets = append(group.Budgets, status)
		group.Budgeted = group.Budgeted.Add(status.Budgeted)
		group.Spent = group.Spent.Add(status.Spent)
		group.Available = group.Available.Add(status.Available)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Spent.Cents != order[j].Spent.Cents {
			return order[i].Spent.Cents > order[j].Spent.Cents
		}
		return order[i].Budgeted.Cents > order[j].Budgeted.Cents
	})

	report := RollupReport{Groups: make([]BudgetGroup, 0, len(order))}
	for _, g := range order {
		report.Groups = append(report.Groups, *g)
		report.TotalBudgeted = report.TotalBudgeted.Add(g.Budgeted)
		report.TotalSpent = report.TotalSpent.Add(g.Spent)
		report.TotalAvailable = report.TotalAvailable.Add(g.Available)
	}
	return report, nil
}

// periodsFor counts the recurrence periods of the budget that overlap
// the intersection of [StartDate, EndDate] and the evaluation window.
// Months and years count by calendar unit; weeks are 7-day slots
// anchored at the budget's start date.
func periodsFor(b core.Budget, window Window) int {
	start := b.StartDate
	end := b.EndDate
	if window.From != nil && window.From.AfterDay(start) {
		start = *window.From
	}
	if window.To != nil && window.To.BeforeDay(end) {
		end = *window.To
	}
	if end.BeforeDay(start) {
		return 0
	}

	switch b.Period {
	case core.Monthly:
		return end.MonthIndex() - start.MonthIndex() + 1
	case core.Yearly:
		return end.Year() - start.Year() + 1
	case core.Weekly:
		firstSlot := daysBetween(b.StartDate, start) / 7
		lastSlot := daysBetween(b.StartDate, end) / 7
		return lastSlot - firstSlot + 1
	}
	return 0
}

// daysBetween returns whole calendar days from a to b (b >= a).
// Noon-to-noon in UTC, so daylight-saving shifts cannot skew the count.
func daysBetween(a, b core.Date) int {
	an := time.Date(a.Year(), a.Time.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	bn := time.Date(b.Year(), b.Time.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(bn.Sub(an).Hours() / 24)
}
