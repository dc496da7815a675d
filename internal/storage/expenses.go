package storage

import (
	"context"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

const expenseColumns = `id, description, amount, category, date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(s rowScanner) (core.Expense, error) {
	var e core.Expense
	var date string
	if err := s.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &date); err != nil {
		return e, err
	}
	t, err := parseTime(date)
	if err != nil {
		return e, fmt.Errorf("expense %s: bad date %q: %w", e.ID, date, err)
	}
	e.Date = t
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string, f records.ExpenseFilter) ([]core.Expense, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	where, args = rangeClause("date", f.Start, f.End, where, args)

	q := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, notFound(err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID string, e core.Expense) (core.Expense, error) {
	e.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, description, amount, category, date) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Description, e.Amount, e.Category, formatTime(e.Date))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID, id string, e core.Expense) (core.Expense, error) {
	err := affected(r.db.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, category = ?, date = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		e.Description, e.Amount, e.Category, formatTime(e.Date), id, userID))
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = id
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID))
}
