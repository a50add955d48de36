package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pennywise/internal/amqp"
	"pennywise/internal/core"
	"pennywise/internal/log"
	"pennywise/internal/storage"
)

// SectionUtilization is one row of the utilization report.
type SectionUtilization struct {
	Section  string
	Spent    float64
	Budget   float64 // effective monthly budget, 0 when none is set
	Percent  float64
	Severity core.Severity
	Color    string
}

// UtilizationReport compares one month's spending against the configured
// budgets, overall and per section.
type UtilizationReport struct {
	Year     int
	Month    int
	Overall  SectionUtilization
	Sections []SectionUtilization
}

// BudgetService manages budgets, savings targets being elsewhere. Budget
// writes are normalized across cadences before they are stored, so readers
// always see a consistent daily/monthly/yearly triple.
type BudgetService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewBudgetService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BudgetService {
	return &BudgetService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// SetBudget applies an edit of one section's budget at one cadence. The other
// cadences are derived where absent; an edit that conflicts with an existing
// higher-cadence budget is rejected. Returns the normalized triple as stored.
func (s *BudgetService) SetBudget(ctx context.Context, userID int64, section string, period core.Period, amount float64) (core.BudgetAmounts, error) {
	if strings.TrimSpace(section) == "" {
		return core.BudgetAmounts{}, core.ErrEmptySection
	}
	if amount <= 0 {
		return core.BudgetAmounts{}, core.ErrInvalidAmount
	}
	if err := period.Validate(); err != nil {
		return core.BudgetAmounts{}, err
	}

	existing, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return core.BudgetAmounts{}, fmt.Errorf("list budgets: %w", err)
	}

	amounts := core.AmountsFromRows(existing, section)
	switch period {
	case core.Daily:
		amounts.Daily = amount
	case core.Monthly:
		amounts.Monthly = amount
	case core.Yearly:
		amounts.Yearly = amount
	}

	now := time.Now().UTC()
	daysInMonth := core.DaysInMonth(now.Year(), int(now.Month()))
	daysInYear := core.DaysInYear(now.Year())

	normalized, err := core.NormalizeBudget(amounts, period, daysInMonth, daysInYear)
	if err != nil {
		return core.BudgetAmounts{}, err
	}

	if err := s.replaceSection(ctx, userID, section, existing, normalized.Rows(userID, section)); err != nil {
		return core.BudgetAmounts{}, err
	}

	slog.InfoContext(ctx, "Budget saved",
		log.FieldUserID, userID,
		log.FieldSection, section,
		log.FieldPeriod, string(period),
		"daily", normalized.Daily,
		"monthly", normalized.Monthly,
		"yearly", normalized.Yearly)

	s.publishRecompute(ctx, userID, now)
	return normalized, nil
}

// DeleteBudget removes all of one section's budget rows.
func (s *BudgetService) DeleteBudget(ctx context.Context, userID int64, section string) error {
	existing, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}

	if err := s.replaceSection(ctx, userID, section, existing, nil); err != nil {
		return err
	}

	s.publishRecompute(ctx, userID, time.Now().UTC())
	return nil
}

// Budgets returns the user's budget triple per section, keyed by section name.
func (s *BudgetService) Budgets(ctx context.Context, userID int64) (map[string]core.BudgetAmounts, error) {
	rows, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	out := make(map[string]core.BudgetAmounts)
	for _, row := range rows {
		if _, ok := out[row.Section]; ok {
			continue
		}
		out[row.Section] = core.AmountsFromRows(rows, row.Section)
	}
	return out, nil
}

// UtilizationReport compares one month's spending against the configured
// monthly budgets. Sections without a budget report 0% utilization.
func (s *BudgetService) UtilizationReport(ctx context.Context, userID int64, year, month int) (UtilizationReport, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return UtilizationReport{}, fmt.Errorf("list budgets: %w", err)
	}

	start, end := monthRange(year, month)
	expenses, err := s.storage.ListExpensesBetween(ctx, userID, start, end)
	if err != nil {
		return UtilizationReport{}, fmt.Errorf("list month expenses: %w", err)
	}

	daysInMonth := core.DaysInMonth(year, month)
	daysInYear := core.DaysInYear(year)
	summary := core.AggregateSpend(expenses)

	spentBySection := make(map[string]float64, len(summary.Categories))
	for _, c := range summary.Categories {
		spentBySection[c.Name] = c.Total
	}

	report := UtilizationReport{
		Year:  year,
		Month: month,
		Overall: utilizationRow(core.TotalSection, summary.Total,
			core.AmountsFromRows(budgets, core.TotalSection).EffectiveMonthly(daysInMonth, daysInYear)),
	}

	seen := make(map[string]struct{})
	for _, row := range budgets {
		if row.Section == core.TotalSection {
			continue
		}
		if _, ok := seen[row.Section]; ok {
			continue
		}
		seen[row.Section] = struct{}{}

		budget := core.AmountsFromRows(budgets, row.Section).EffectiveMonthly(daysInMonth, daysInYear)
		report.Sections = append(report.Sections,
			utilizationRow(row.Section, spentBySection[row.Section], budget))
	}

	return report, nil
}

func utilizationRow(section string, spent, budget float64) SectionUtilization {
	pct := core.Utilization(spent, budget)
	severity := core.SeverityFor(pct)
	return SectionUtilization{
		Section:  section,
		Spent:    spent,
		Budget:   budget,
		Percent:  pct,
		Severity: severity,
		Color:    severity.Color(),
	}
}

// replaceSection swaps one section's budget rows inside the user's full set.
func (s *BudgetService) replaceSection(ctx context.Context, userID int64, section string, existing, replacement []core.Budget) error {
	next := make([]core.Budget, 0, len(existing)+len(replacement))
	for _, row := range existing {
		if row.Section != section {
			next = append(next, row)
		}
	}
	next = append(next, replacement...)

	if err := s.storage.ReplaceBudgets(ctx, userID, next); err != nil {
		return fmt.Errorf("replace budgets: %w", err)
	}
	return nil
}

// AddFixedCost records a recurring monthly cost.
func (s *BudgetService) AddFixedCost(ctx context.Context, f core.FixedCost) (core.FixedCost, error) {
	if err := f.Validate(); err != nil {
		return core.FixedCost{}, err
	}
	return s.storage.CreateFixedCost(ctx, f)
}

// UpdateFixedCost changes a fixed cost's name and amount.
func (s *BudgetService) UpdateFixedCost(ctx context.Context, userID, id int64, name string, amount float64) error {
	if err := (core.FixedCost{Name: name, Amount: amount}).Validate(); err != nil {
		return err
	}
	return s.storage.UpdateFixedCost(ctx, userID, id, name, amount)
}

// DeleteFixedCost removes a fixed cost.
func (s *BudgetService) DeleteFixedCost(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteFixedCost(ctx, userID, id)
}

// ListFixedCosts returns all of a user's fixed costs, newest first.
func (s *BudgetService) ListFixedCosts(ctx context.Context, userID int64) ([]core.FixedCost, error) {
	return s.storage.ListFixedCosts(ctx, userID)
}

// FixedCostTotal returns the user's total recurring monthly commitment.
func (s *BudgetService) FixedCostTotal(ctx context.Context, userID int64) (float64, error) {
	costs, err := s.storage.ListFixedCosts(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, c := range costs {
		total += c.Amount
	}
	return total, nil
}

func (s *BudgetService) publishRecompute(ctx context.Context, userID int64, at time.Time) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping recompute message")
		return
	}
	if err := s.amqpClient.PublishRecompute(ctx, userID, core.DateOf(at).Key()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recompute message",
			log.FieldUserID, userID, log.FieldError, err)
	}
}
