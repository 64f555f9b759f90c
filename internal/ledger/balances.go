package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// UnknownUserName is the display name used for counterparties whose user
// record no longer exists.
const UnknownUserName = "Unknown"

// CounterpartyBalance is the net relationship between the subject and one
// other user. Amount is always positive; direction is given by which list
// the entry appears in.
type CounterpartyBalance struct {
	UserID    string
	Name      string
	AvatarURL string
	Amount    float64
}

// OweDetails splits counterparties by direction, largest amounts first.
type OweDetails struct {
	YouOwe       []CounterpartyBalance
	YouAreOwedBy []CounterpartyBalance
}

// UserBalances is the subject's view of what they owe and are owed.
type UserBalances struct {
	YouOwe       float64
	YouAreOwed   float64
	TotalBalance float64
	OweDetails   OweDetails
}

type accumulator struct {
	owed  decimal.Decimal // counterparty owes the subject
	owing decimal.Decimal // subject owes the counterparty
}

// Counterparties returns, sorted, the IDs of every user the subject has an
// unpaid relationship with in expenses. Callers use it to know which user
// records to fetch before calling ComputeUserBalances.
func Counterparties(subjectID string, expenses []*models.Expense) []string {
	accs := accumulate(subjectID, expenses, nil, nil)
	ids := make([]string, 0, len(accs))
	for id := range accs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ComputeUserBalances aggregates the subject's unpaid splits in expenses into
// totals and a per-counterparty breakdown.
//
// users resolves counterparty display names. A counterparty missing from
// users still appears with its amount and UnknownUserName.
func ComputeUserBalances(subjectID string, expenses []*models.Expense, users map[string]*models.User) UserBalances {
	var youOwe, youAreOwed decimal.Decimal
	accs := accumulate(subjectID, expenses, &youOwe, &youAreOwed)

	ids := make([]string, 0, len(accs))
	for id := range accs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	details := OweDetails{
		YouOwe:       []CounterpartyBalance{},
		YouAreOwedBy: []CounterpartyBalance{},
	}
	for _, id := range ids {
		acc := accs[id]
		net := acc.owed.Sub(acc.owing)
		if net.IsZero() {
			continue
		}
		entry := CounterpartyBalance{
			UserID: id,
			Name:   UnknownUserName,
			Amount: net.Abs().InexactFloat64(),
		}
		if u, ok := users[id]; ok && u != nil {
			entry.Name = u.DisplayName
			entry.AvatarURL = u.AvatarURL
		}
		if net.IsPositive() {
			details.YouAreOwedBy = append(details.YouAreOwedBy, entry)
		} else {
			details.YouOwe = append(details.YouOwe, entry)
		}
	}

	sortByAmountDesc(details.YouOwe)
	sortByAmountDesc(details.YouAreOwedBy)

	return UserBalances{
		YouOwe:       youOwe.InexactFloat64(),
		YouAreOwed:   youAreOwed.InexactFloat64(),
		TotalBalance: youAreOwed.Sub(youOwe).InexactFloat64(),
		OweDetails:   details,
	}
}

// GroupBalanceFor rolls the subject's unpaid relationships in a group's
// expenses into one scalar: positive when the subject is owed overall.
func GroupBalanceFor(subjectID string, expenses []*models.Expense) float64 {
	var youOwe, youAreOwed decimal.Decimal
	accumulate(subjectID, expenses, &youOwe, &youAreOwed)
	return youAreOwed.Sub(youOwe).InexactFloat64()
}

// accumulate walks expenses involving the subject and builds one accumulator
// per counterparty, inserted on first reference. When non-nil, youOwe and
// youAreOwed receive the running totals.
func accumulate(subjectID string, expenses []*models.Expense, youOwe, youAreOwed *decimal.Decimal) map[string]*accumulator {
	accs := make(map[string]*accumulator)
	get := func(id string) *accumulator {
		acc, ok := accs[id]
		if !ok {
			acc = &accumulator{}
			accs[id] = acc
		}
		return acc
	}

	for _, e := range expenses {
		if e == nil || !e.Involves(subjectID) {
			continue
		}

		if e.PaidByUserID == subjectID {
			for _, s := range e.Splits {
				if s.UserID == subjectID || s.Paid {
					continue
				}
				amt := decimal.NewFromFloat(s.Amount)
				acc := get(s.UserID)
				acc.owed = acc.owed.Add(amt)
				if youAreOwed != nil {
					*youAreOwed = youAreOwed.Add(amt)
				}
			}
			continue
		}

		mine, ok := e.SplitFor(subjectID)
		if !ok || mine.Paid {
			continue
		}
		amt := decimal.NewFromFloat(mine.Amount)
		acc := get(e.PaidByUserID)
		acc.owing = acc.owing.Add(amt)
		if youOwe != nil {
			*youOwe = youOwe.Add(amt)
		}
	}

	return accs
}

// sortByAmountDesc orders largest obligations first. Entries arrive sorted by
// user ID, so the stable sort keeps ties in ID order.
func sortByAmountDesc(list []CounterpartyBalance) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Amount > list[j].Amount
	})
}
