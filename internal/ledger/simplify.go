package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Owe is an outgoing payment a member must make.
type Owe struct {
	To     string
	Amount float64
}

// OwedBy is an incoming payment a member will receive.
type OwedBy struct {
	From   string
	Amount float64
}

// MemberSettlement is one member's net position and the transfers that
// settle it.
type MemberSettlement struct {
	UserID     string
	NetBalance float64 // Positive = is owed, negative = owes
	Owes       []Owe
	OwedBy     []OwedBy
}

// Transfer is one directed payment in the settlement graph.
type Transfer struct {
	From   string
	To     string
	Amount float64
}

// GroupSettlement holds one entry per member, in member-list order.
type GroupSettlement struct {
	Members []MemberSettlement
}

// Transfers flattens the settlement into a list of payments, ordered by
// debtor then creditor in member-list order.
func (s GroupSettlement) Transfers() []Transfer {
	var out []Transfer
	for _, m := range s.Members {
		for _, o := range m.Owes {
			out = append(out, Transfer{From: m.UserID, To: o.To, Amount: o.Amount})
		}
	}
	return out
}

// Member returns the settlement entry for userID.
func (s GroupSettlement) Member(userID string) (MemberSettlement, bool) {
	for _, m := range s.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return MemberSettlement{}, false
}

// party is a member with a nonzero net balance during settlement. amount is
// mutated in place as transfers are assigned.
type party struct {
	amount decimal.Decimal
	index  int
}

// grid is an n×n matrix of amounts indexed by member position. It lives for
// a single computation.
type grid [][]decimal.Decimal

func newGrid(n int) grid {
	g := make(grid, n)
	for i := range g {
		g[i] = make([]decimal.Decimal, n)
	}
	return g
}

// ComputeGroupSettlement nets every unpaid split across a group's expenses and
// reduces the result to a small set of transfers.
//
// Debts are first collected into txn[debtor][creditor], where the payer of an
// expense is the creditor of every unpaid split that is not their own. Each
// member's net balance is what they are owed minus what they owe. Members
// with a nonzero net are sorted ascending (largest debtor first, ties in
// member order) and settled greedily from both ends: the largest remaining
// debtor pays the largest remaining creditor the smaller of the two amounts,
// and whichever side reaches zero is retired. This emits at most k-1
// transfers for k members with a nonzero net.
//
// Splits and payers not in memberIDs are ignored. A duplicated ID counts
// once, at its first position.
func ComputeGroupSettlement(memberIDs []string, expenses []*models.Expense) GroupSettlement {
	ids := make([]string, 0, len(memberIDs))
	index := make(map[string]int, len(memberIDs))
	for _, id := range memberIDs {
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(ids)
		ids = append(ids, id)
	}
	n := len(ids)

	txn := newGrid(n)
	for _, e := range expenses {
		if e == nil {
			continue
		}
		payer, ok := index[e.PaidByUserID]
		if !ok {
			continue
		}
		for _, s := range e.Splits {
			if s.UserID == e.PaidByUserID || s.Paid {
				continue
			}
			debtor, ok := index[s.UserID]
			if !ok {
				continue
			}
			txn[debtor][payer] = txn[debtor][payer].Add(decimal.NewFromFloat(s.Amount))
		}
	}

	net := make([]decimal.Decimal, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			net[i] = net[i].Add(txn[j][i]).Sub(txn[i][j])
		}
	}

	optimized := settle(net)

	members := make([]MemberSettlement, n)
	for i, id := range ids {
		m := MemberSettlement{
			UserID:     id,
			NetBalance: net[i].InexactFloat64(),
			Owes:       []Owe{},
			OwedBy:     []OwedBy{},
		}
		for j := 0; j < n; j++ {
			if optimized[i][j].IsPositive() {
				m.Owes = append(m.Owes, Owe{To: ids[j], Amount: optimized[i][j].InexactFloat64()})
			}
			if optimized[j][i].IsPositive() {
				m.OwedBy = append(m.OwedBy, OwedBy{From: ids[j], Amount: optimized[j][i].InexactFloat64()})
			}
		}
		members[i] = m
	}

	return GroupSettlement{Members: members}
}

// settle runs the two-pointer matching over net and returns the transfer
// grid: optimized[debtor][creditor] = amount.
func settle(net []decimal.Decimal) grid {
	optimized := newGrid(len(net))

	parties := make([]party, 0, len(net))
	for idx, amt := range net {
		if !amt.IsZero() {
			parties = append(parties, party{amount: amt, index: idx})
		}
	}
	sort.SliceStable(parties, func(a, b int) bool {
		return parties[a].amount.LessThan(parties[b].amount)
	})

	i, j := 0, len(parties)-1
	for i < j {
		debtor, creditor := &parties[i], &parties[j]
		transfer := decimal.Min(debtor.amount.Neg(), creditor.amount)
		if !transfer.IsPositive() {
			// Only reachable if net did not sum to zero.
			break
		}

		optimized[debtor.index][creditor.index] = optimized[debtor.index][creditor.index].Add(transfer)
		debtor.amount = debtor.amount.Add(transfer)
		creditor.amount = creditor.amount.Sub(transfer)

		if debtor.amount.IsZero() {
			i++
		}
		if creditor.amount.IsZero() {
			j--
		}
	}

	return optimized
}
