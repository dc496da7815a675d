package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budgetbuddy/internal/core"
)

const budgetColumns = `id, category, limit_amount, month_year`

func scanBudget(s rowScanner) (core.Budget, error) {
	var b core.Budget
	var month string
	err := s.Scan(&b.ID, &b.Category, &b.LimitAmount, &month)
	b.MonthYear = core.MonthYear(month)
	return b, err
}

func queryBudgets(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, query string, args ...any) ([]core.Budget, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string, month core.MonthYear) ([]core.Budget, error) {
	if month == "" {
		return queryBudgets(ctx, r.db, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY month_year DESC, created_at`, userID)
	}
	return queryBudgets(ctx, r.db, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? AND month_year = ? ORDER BY created_at`, userID, string(month))
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return core.Budget{}, notFound(err)
	}
	return b, nil
}

func insertBudget(ctx context.Context, tx *sql.Tx, userID string, b core.Budget) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, category, limit_amount, month_year) VALUES (?, ?, ?, ?, ?)`,
		b.ID, userID, b.Category, b.LimitAmount, string(b.MonthYear))
	if isUniqueViolation(err) {
		return core.Conflictf("budget for %s in %s already exists", b.Category, b.MonthYear)
	}
	return err
}

func (r *SQLiteRepository) CreateBudgets(ctx context.Context, userID string, budgets []core.Budget) ([]core.Budget, error) {
	out := make([]core.Budget, len(budgets))
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for i, b := range budgets {
			b.ID = newID()
			if err := insertBudget(ctx, tx, userID, b); err != nil {
				return err
			}
			out[i] = b
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) CopyBudgets(ctx context.Context, userID string, from, to core.MonthYear) ([]core.Budget, error) {
	var out []core.Budget
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id = ? AND month_year = ?`, userID, string(to)).Scan(&existing); err != nil {
			return fmt.Errorf("count target budgets: %w", err)
		}
		if existing > 0 {
			return core.Conflictf("budgets for %s already exist", to)
		}

		src, err := queryBudgets(ctx, tx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? AND month_year = ? ORDER BY created_at`, userID, string(from))
		if err != nil {
			return err
		}
		if len(src) == 0 {
			return core.Conflictf("no budgets for %s", from)
		}
		for _, b := range src {
			b.ID = newID()
			b.MonthYear = to
			if err := insertBudget(ctx, tx, userID, b); err != nil {
				return err
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateBudgetLimit(ctx context.Context, userID, id string, b core.Budget) (core.Budget, error) {
	err := affected(r.db.ExecContext(ctx, `UPDATE budgets SET limit_amount = ? WHERE id = ? AND user_id = ?`, b.LimitAmount, id, userID))
	if err != nil {
		return core.Budget{}, err
	}
	return r.GetBudget(ctx, userID, id)
}

func (r *SQLiteRepository) BudgetMonths(ctx context.Context, userID string) ([]core.MonthYear, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT month_year FROM budgets WHERE user_id = ? ORDER BY month_year DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budget months: %w", err)
	}
	defer rows.Close()

	out := []core.MonthYear{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, core.MonthYear(m))
	}
	return out, rows.Err()
}
