// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no such user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to user.
	// Users that don't exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their memberships.
type GroupStore interface {
	// CreateGroup persists a new group and its members. group.ID and
	// group.CreatedAt are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns every group userID is a member of, oldest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes the group with its memberships and every expense
	// in it, atomically, and returns how many expenses were removed. Returns
	// ErrNotFound if the group does not exist.
	DeleteGroup(ctx context.Context, groupID string) (int, error)
}

// ExpenseStore persists expenses and their splits.
type ExpenseStore interface {
	// CreateExpense persists a new expense with its splits. expense.ID and
	// expense.CreatedAt are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup returns every expense of a group, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListDirectExpensesForUser returns group-less expenses userID paid or is
	// split into, newest first.
	ListDirectExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error)

	// ListExpensesSince returns expenses dated at or after since (Unix
	// milliseconds) that userID paid or is split into, in any group or none.
	ListExpensesSince(ctx context.Context, userID string, since int64) ([]*models.Expense, error)

	// DeleteExpense returns ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, expenseID string) error

	// MarkSplitPaid flags userID's split of the expense as paid. Returns
	// ErrNotFound if the expense has no split for userID.
	MarkSplitPaid(ctx context.Context, expenseID, userID string) error
}

// Store defines the full storage surface used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}
