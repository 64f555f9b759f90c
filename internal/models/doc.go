// Package models defines the core domain models for the ledger.
//
// # Models
//
//   - User: registered account; the identity behind every ledger participant
//   - Group: a set of members (each with a role) that owns expenses
//   - Expense: an amount paid by one user and split among several
//   - Split: one user's owed portion of an expense, markable as paid
//
// Balances and transfers are not models: they are derived on every query by
// package ledger and never persisted.
//
// # Relationships
//
// Relationships use ID strings rather than pointers. An expense with an empty
// GroupID is a direct expense between users outside any group. Deleting a
// group deletes its expenses; no expense may reference a deleted group.
package models
