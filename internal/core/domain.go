package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Period = "daily"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// TotalSection is the reserved section name for the overall budget covering
// all spending regardless of category.
const TotalSection = "total"

type (
	Period string

	Date struct {
		time.Time
	}

	Expense struct {
		ID        int64
		UserID    int64
		Amount    float64
		Section   string // empty means uncategorized
		CreatedAt time.Time
	}

	Section struct {
		ID     int64
		UserID int64
		Name   string
	}

	Budget struct {
		UserID  int64
		Section string // TotalSection or a section name
		Amount  float64
		Period  Period
	}

	SavingsTarget struct {
		UserID int64
		Amount float64
		Period Period
	}

	DailySavings struct {
		ID          int64
		UserID      int64
		Date        Date
		Amount      float64
		DailyBudget float64
		ActualSpent float64
	}

	FixedCost struct {
		ID        int64
		UserID    int64
		Name      string
		Amount    float64
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrEmptySection  = errors.New("empty section name")
	ErrEmptyName     = errors.New("empty name")

	// Budget cadence conflicts. A lower-cadence edit may not exceed a budget
	// the user already set at a higher cadence.
	ErrDailyExceedsMonthly  = errors.New("daily budget exceeds monthly budget limit")
	ErrDailyExceedsYearly   = errors.New("daily budget exceeds yearly budget limit")
	ErrMonthlyExceedsYearly = errors.New("monthly budget exceeds yearly budget limit")

	ErrExpenseNotFound   = errors.New("expense not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrSectionExists     = errors.New("section already exists")
	ErrFixedCostNotFound = errors.New("fixed cost not found")
	ErrNoSavingsTarget   = errors.New("no savings target set")
)

func (p Period) Validate() error {
	switch p {
	case Daily, Monthly, Yearly:
		return nil
	}
	return ErrInvalidPeriod
}

// NewDate creates a Date for the given calendar day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Key returns the date in YYYY-MM-DD form, the canonical storage and
// uniqueness key for per-day records.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// Validate checks the amount only. An empty section is legal and means the
// expense is uncategorized.
func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Section) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptySection
	}
	if s.Name == TotalSection {
		return errors.New(`section name "total" is reserved`)
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(b.Section) == "" {
		return ErrEmptySection
	}
	return b.Period.Validate()
}

func (t SavingsTarget) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return t.Period.Validate()
}

func (f FixedCost) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
