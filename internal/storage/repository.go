package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pennywise/internal/core"
	"pennywise/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists all user-scoped budgeting rows. Every query
// filters by user id; rows owned by another user are reported as not found
// so callers cannot distinguish them from absent rows.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection avoids SQLITE_BUSY
	// under the worker's concurrent recompute pass.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense inserts an expense and returns it with its assigned id.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, section, created_at) VALUES (?, ?, ?, ?)`,
		e.UserID, e.Amount, e.Section, e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		log.FieldUserID, e.UserID,
		log.FieldAmount, e.Amount,
		log.FieldSection, e.Section)

	return e, nil
}

// GetExpense returns one expense owned by the user.
func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	var e core.Expense
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, section, created_at FROM expenses WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&e.ID, &e.UserID, &e.Amount, &e.Section, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrExpenseNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// UpdateExpense updates the amount and section of an expense owned by the user.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID, id int64, amount float64, section string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, section = ? WHERE id = ? AND user_id = ?`,
		amount, section, id, userID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrExpenseNotFound
	}
	return nil
}

// DeleteExpense removes an expense owned by the user.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrExpenseNotFound
	}
	return nil
}

// ListExpenses returns all of a user's expenses, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, amount, section, created_at FROM expenses
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListExpensesBetween returns a user's expenses created in [from, to], newest first.
func (r *SQLiteRepository) ListExpensesBetween(ctx context.Context, userID int64, from, to time.Time) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, amount, section, created_at FROM expenses
		 WHERE user_id = ? AND created_at >= ? AND created_at <= ? ORDER BY created_at DESC`,
		userID, from, to)
}

// ListExpensesBySection returns a user's expenses with the given section label, newest first.
func (r *SQLiteRepository) ListExpensesBySection(ctx context.Context, userID int64, section string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, user_id, amount, section, created_at FROM expenses
		 WHERE user_id = ? AND section = ? ORDER BY created_at DESC`, userID, section)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Section, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateSection adds a section for the user. Names are unique per user.
func (r *SQLiteRepository) CreateSection(ctx context.Context, s core.Section) (core.Section, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sections WHERE user_id = ? AND name = ?`, s.UserID, s.Name).Scan(&exists)
	if err != nil {
		return core.Section{}, fmt.Errorf("check section: %w", err)
	}
	if exists > 0 {
		return core.Section{}, core.ErrSectionExists
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sections (user_id, name) VALUES (?, ?)`, s.UserID, s.Name)
	if err != nil {
		return core.Section{}, fmt.Errorf("create section: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Section{}, fmt.Errorf("section insert id: %w", err)
	}
	s.ID = id
	return s, nil
}

// ListSections returns all of a user's sections in name order.
func (r *SQLiteRepository) ListSections(ctx context.Context, userID int64) ([]core.Section, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM sections WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var sections []core.Section
	for rows.Next() {
		var s core.Section
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// DeleteSection removes a section and relabels its expenses as uncategorized
// (empty section) in the same transaction. Expenses are never deleted with
// their section.
func (r *SQLiteRepository) DeleteSection(ctx context.Context, userID int64, name string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete section: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM sections WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrSectionNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE expenses SET section = '' WHERE user_id = ? AND section = ?`, userID, name); err != nil {
		return fmt.Errorf("relabel expenses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete section: %w", err)
	}

	slog.InfoContext(ctx, "Section deleted, expenses relabelled",
		log.FieldUserID, userID, log.FieldSection, name)
	return nil
}

// ListBudgets returns all of a user's budget rows.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, section, amount, period FROM budgets WHERE user_id = ? ORDER BY section, period`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.UserID, &b.Section, &b.Amount, &b.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// ReplaceBudgets makes the stored budget set equal to the submitted one in a
// single transaction: rows absent from the new set are deleted, the rest are
// upserted. There is no delete-all window; a failure leaves the previous set
// intact.
func (r *SQLiteRepository) ReplaceBudgets(ctx context.Context, userID int64, budgets []core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace budgets: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[string]struct{}, len(budgets))
	for _, b := range budgets {
		key := b.Section + "|" + string(b.Period)
		keep[key] = struct{}{}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (user_id, section, amount, period) VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id, section, period) DO UPDATE SET amount = excluded.amount`,
			userID, b.Section, b.Amount, b.Period); err != nil {
			return fmt.Errorf("upsert budget %s/%s: %w", b.Section, b.Period, err)
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT section, period FROM budgets WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("query existing budgets: %w", err)
	}
	type budgetKey struct {
		section string
		period  string
	}
	var stale []budgetKey
	for rows.Next() {
		var k budgetKey
		if err := rows.Scan(&k.section, &k.period); err != nil {
			rows.Close()
			return fmt.Errorf("scan budget key: %w", err)
		}
		if _, ok := keep[k.section+"|"+k.period]; !ok {
			stale = append(stale, k)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate budget keys: %w", err)
	}
	rows.Close()

	for _, k := range stale {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM budgets WHERE user_id = ? AND section = ? AND period = ?`,
			userID, k.section, k.period); err != nil {
			return fmt.Errorf("delete stale budget %s/%s: %w", k.section, k.period, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace budgets: %w", err)
	}

	slog.InfoContext(ctx, "Budgets replaced",
		log.FieldUserID, userID, "rows", len(budgets), "removed", len(stale))
	return nil
}

// GetSavingsTarget returns the user's savings target, if one is set.
func (r *SQLiteRepository) GetSavingsTarget(ctx context.Context, userID int64) (core.SavingsTarget, error) {
	var t core.SavingsTarget
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, amount, period FROM savings_targets WHERE user_id = ?`, userID).
		Scan(&t.UserID, &t.Amount, &t.Period)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsTarget{}, core.ErrNoSavingsTarget
	}
	if err != nil {
		return core.SavingsTarget{}, fmt.Errorf("get savings target: %w", err)
	}
	return t, nil
}

// UpsertSavingsTarget creates or replaces the user's single savings target.
func (r *SQLiteRepository) UpsertSavingsTarget(ctx context.Context, t core.SavingsTarget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_targets (user_id, amount, period) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET amount = excluded.amount, period = excluded.period`,
		t.UserID, t.Amount, t.Period)
	if err != nil {
		return fmt.Errorf("upsert savings target: %w", err)
	}
	return nil
}

// UpsertDailySavings writes the savings record for one user and day.
// Latest wins: recomputing a day overwrites all value fields.
func (r *SQLiteRepository) UpsertDailySavings(ctx context.Context, rec core.DailySavings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_savings (user_id, date, amount, daily_budget, actual_spent)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET
		   amount = excluded.amount,
		   daily_budget = excluded.daily_budget,
		   actual_spent = excluded.actual_spent`,
		rec.UserID, rec.Date.Key(), rec.Amount, rec.DailyBudget, rec.ActualSpent)
	if err != nil {
		return fmt.Errorf("upsert daily savings: %w", err)
	}

	slog.InfoContext(ctx, "Daily savings recorded",
		log.FieldUserID, rec.UserID,
		log.FieldDate, rec.Date.Key(),
		log.FieldAmount, rec.Amount,
		"daily_budget", rec.DailyBudget,
		"actual_spent", rec.ActualSpent)
	return nil
}

// ListDailySavingsBetween returns a user's savings records for [from, to] in
// date order.
func (r *SQLiteRepository) ListDailySavingsBetween(ctx context.Context, userID int64, from, to core.Date) ([]core.DailySavings, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, amount, daily_budget, actual_spent FROM daily_savings
		 WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date`,
		userID, from.Key(), to.Key())
	if err != nil {
		return nil, fmt.Errorf("query daily savings: %w", err)
	}
	defer rows.Close()

	var records []core.DailySavings
	for rows.Next() {
		var (
			rec     core.DailySavings
			dateKey string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &dateKey, &rec.Amount, &rec.DailyBudget, &rec.ActualSpent); err != nil {
			return nil, fmt.Errorf("scan daily savings: %w", err)
		}
		day, err := time.Parse("2006-01-02", dateKey)
		if err != nil {
			return nil, fmt.Errorf("parse savings date %q: %w", dateKey, err)
		}
		rec.Date = core.Date{Time: day}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CreateFixedCost inserts a fixed cost and returns it with its assigned id.
func (r *SQLiteRepository) CreateFixedCost(ctx context.Context, f core.FixedCost) (core.FixedCost, error) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO fixed_costs (user_id, name, amount, created_at) VALUES (?, ?, ?, ?)`,
		f.UserID, f.Name, f.Amount, f.CreatedAt)
	if err != nil {
		return core.FixedCost{}, fmt.Errorf("create fixed cost: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.FixedCost{}, fmt.Errorf("fixed cost insert id: %w", err)
	}
	f.ID = id
	return f, nil
}

// UpdateFixedCost updates the name and amount of a fixed cost owned by the user.
func (r *SQLiteRepository) UpdateFixedCost(ctx context.Context, userID, id int64, name string, amount float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fixed_costs SET name = ?, amount = ? WHERE id = ? AND user_id = ?`,
		name, amount, id, userID)
	if err != nil {
		return fmt.Errorf("update fixed cost: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrFixedCostNotFound
	}
	return nil
}

// DeleteFixedCost removes a fixed cost owned by the user.
func (r *SQLiteRepository) DeleteFixedCost(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM fixed_costs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete fixed cost: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrFixedCostNotFound
	}
	return nil
}

// ListFixedCosts returns all of a user's fixed costs, newest first.
func (r *SQLiteRepository) ListFixedCosts(ctx context.Context, userID int64) ([]core.FixedCost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, amount, created_at FROM fixed_costs
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query fixed costs: %w", err)
	}
	defer rows.Close()

	var costs []core.FixedCost
	for rows.Next() {
		var f core.FixedCost
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Amount, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan fixed cost: %w", err)
		}
		costs = append(costs, f)
	}
	return costs, rows.Err()
}

// ListUserIDs returns every user id with budgeting data, for the periodic
// savings recompute.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM budgets UNION SELECT user_id FROM expenses ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
