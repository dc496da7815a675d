package storage

import (
	"context"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/records"
)

const incomeColumns = `id, source, amount, date`

func scanIncome(s rowScanner) (core.Income, error) {
	var i core.Income
	var date string
	if err := s.Scan(&i.ID, &i.Source, &i.Amount, &date); err != nil {
		return i, err
	}
	t, err := parseTime(date)
	if err != nil {
		return i, fmt.Errorf("income %s: bad date %q: %w", i.ID, date, err)
	}
	i.Date = t
	return i, nil
}

func (r *SQLiteRepository) ListIncome(ctx context.Context, userID string, f records.IncomeFilter) ([]core.Income, error) {
	where, args := rangeClause("date", f.Start, f.End, []string{"user_id = ?"}, []any{userID})

	q := `SELECT ` + incomeColumns + ` FROM incomes WHERE ` + strings.Join(where, " AND ") + ` ORDER BY date DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	out := []core.Income{}
	for rows.Next() {
		i, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, userID, id string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ? AND user_id = ?`, id, userID)
	i, err := scanIncome(row)
	if err != nil {
		return core.Income{}, notFound(err)
	}
	return i, nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, userID string, i core.Income) (core.Income, error) {
	i.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, user_id, source, amount, date) VALUES (?, ?, ?, ?, ?)`,
		i.ID, userID, i.Source, i.Amount, formatTime(i.Date))
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	return i, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, userID, id string, i core.Income) (core.Income, error) {
	err := affected(r.db.ExecContext(ctx,
		`UPDATE incomes SET source = ?, amount = ?, date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		i.Source, i.Amount, formatTime(i.Date), id, userID))
	if err != nil {
		return core.Income{}, err
	}
	i.ID = id
	return i, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, userID, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ? AND user_id = ?`, id, userID))
}
