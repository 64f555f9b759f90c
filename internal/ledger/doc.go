// Package ledger computes balances and settlements from a snapshot of expenses.
//
// Everything here is pure: functions receive fully materialised expenses and
// members, return freshly allocated results, and never touch storage. Callers
// are responsible for authorization and for fetching the snapshot.
//
// Money is accumulated with shopspring/decimal so that conservation of
// balances holds exactly and the settlement loop can test for zero without a
// tolerance. Results are reported as float64 to match the models.
package ledger
