package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `e.id, e.description, e.amount, e.category, e.date, e.paid_by_user_id, e.group_id, e.created_by, e.created_at`

// CreateExpense persists a new expense and its splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, category, date, paid_by_user_id, group_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Description, expense.Amount, expense.Category, expense.Date,
		expense.PaidByUserID, nullable(expense.GroupID), expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, amount, paid, position) VALUES (?, ?, ?, ?, ?)",
			expense.ID, split.UserID, split.Amount, split.Paid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.id = ?`,
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return expenses[0], nil
}

// ListExpensesByGroup retrieves all expenses for a group.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		 WHERE e.group_id = ?
		 ORDER BY e.date DESC, e.created_at DESC, e.id`,
		groupID,
	)
}

// ListDirectExpensesForUser retrieves group-less expenses involving the user.
func (s *SQLiteStore) ListDirectExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		 WHERE e.group_id IS NULL
		   AND (e.paid_by_user_id = ?
		        OR EXISTS (SELECT 1 FROM expense_splits es WHERE es.expense_id = e.id AND es.user_id = ?))
		 ORDER BY e.date DESC, e.created_at DESC, e.id`,
		userID, userID,
	)
}

// ListExpensesSince retrieves expenses involving the user dated at or after since.
func (s *SQLiteStore) ListExpensesSince(ctx context.Context, userID string, since int64) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses e
		 WHERE e.date >= ?
		   AND (e.paid_by_user_id = ?
		        OR EXISTS (SELECT 1 FROM expense_splits es WHERE es.expense_id = e.id AND es.user_id = ?))
		 ORDER BY e.date ASC, e.id`,
		since, userID, userID,
	)
}

// DeleteExpense removes an expense by ID. Splits are removed via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// MarkSplitPaid flags one user's split of an expense as paid.
func (s *SQLiteStore) MarkSplitPaid(ctx context.Context, expenseID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expense_splits SET paid = 1 WHERE expense_id = ? AND user_id = ?",
		expenseID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark split paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("split of expense %s for user %s: %w", expenseID, userID, storage.ErrNotFound)
	}
	return nil
}

// queryExpenses runs an expense query and attaches splits to every row.
func (s *SQLiteStore) queryExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*models.Expense{}
	byID := make(map[string]*models.Expense)
	var ids []string
	for rows.Next() {
		e := &models.Expense{}
		var groupID sql.NullString
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &e.Date,
			&e.PaidByUserID, &groupID, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if groupID.Valid {
			e.GroupID = groupID.String
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if len(ids) == 0 {
		return expenses, nil
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, amount, paid FROM expense_splits
		 WHERE expense_id IN (`+placeholders(len(ids))+`)
		 ORDER BY expense_id, position`,
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID string
		var split models.Split
		if err := splitRows.Scan(&expenseID, &split.UserID, &split.Amount, &split.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	return expenses, nil
}
